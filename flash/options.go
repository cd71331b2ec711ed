package flash

// Default configuration values.
const (
	// DefaultInternalSize matches a 1 MB internal flash.
	DefaultInternalSize = 0x100000

	// DefaultPageSize is the internal flash page size.
	DefaultPageSize = 4096

	// DefaultSectorSize is the external flash erase granularity.
	DefaultSectorSize = 4096
)

// Config holds configuration for a Session.
type Config struct {
	// InternalRegion is the address range of the internal flash.
	InternalRegion Region

	// PageSize is the internal flash page size in bytes.
	PageSize uint32

	// SectorSize is the external flash erase granularity in bytes.
	SectorSize uint32

	// External is the external flash device, nil when absent.
	External ExternalFlash

	// ExternalRegion is the window external addresses are routed
	// through.
	ExternalRegion Region

	// Logger receives debug output. Optional.
	Logger Logger
}

func defaultConfig() Config {
	return Config{
		InternalRegion: Region{Base: 0, Size: DefaultInternalSize},
		PageSize:       DefaultPageSize,
		SectorSize:     DefaultSectorSize,
	}
}

// Option configures a Session.
type Option func(*Config)

// WithInternalRegion sets the address range of the internal flash.
//
// Example:
//
//	session := flash.NewSession(mem, flash.WithInternalRegion(0, 0x80000))
func WithInternalRegion(base, size uint32) Option {
	return func(c *Config) {
		c.InternalRegion = Region{Base: base, Size: size}
	}
}

// WithPageSize sets the internal flash page size. Values that are not a
// power of two are ignored.
func WithPageSize(size uint32) Option {
	return func(c *Config) {
		if size > 0 && size&(size-1) == 0 {
			c.PageSize = size
		}
	}
}

// WithSectorSize sets the external flash erase granularity. Values that
// are not a power of two are ignored.
func WithSectorSize(size uint32) Option {
	return func(c *Config) {
		if size > 0 && size&(size-1) == 0 {
			c.SectorSize = size
		}
	}
}

// WithExternal routes the window [base, base+size) to an external flash
// device. Addresses inside the window are translated to device offsets
// by subtracting base.
//
// Example:
//
//	session := flash.NewSession(mem,
//		flash.WithExternal(ctrl, 0x100000, ctrl.Size()),
//	)
func WithExternal(dev ExternalFlash, base, size uint32) Option {
	return func(c *Config) {
		c.External = dev
		c.ExternalRegion = Region{Base: base, Size: size}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
