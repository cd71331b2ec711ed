package image

// Chunk size bounds.
const (
	// DefaultChunkSize matches the serial flash page size, so external
	// writes map one chunk to one page program.
	DefaultChunkSize = 256

	// MaxChunkSize caps chunks at the internal flash page size.
	MaxChunkSize = 4096
)

// Config holds configuration for the Programmer.
type Config struct {
	// ChunkSize is the number of bytes written per target call.
	ChunkSize int

	// EraseBeforeWrite passes the erase hint to every write and the
	// final flush.
	EraseBeforeWrite bool

	// VerifyAfterWrite reads the image back after flushing and
	// compares it byte by byte.
	VerifyAfterWrite bool

	// ProgressCallback receives progress updates. Optional.
	ProgressCallback ProgressCallback

	// Logger receives debug and info output. Optional.
	Logger Logger
}

func defaultConfig() Config {
	return Config{
		ChunkSize:        DefaultChunkSize,
		EraseBeforeWrite: true,
		VerifyAfterWrite: true,
	}
}

// Option configures a Programmer.
type Option func(*Config)

// WithChunkSize sets the bytes written per target call. Values outside
// (0, MaxChunkSize] are ignored.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= MaxChunkSize {
			c.ChunkSize = size
		}
	}
}

// WithEraseBeforeWrite controls the erase hint passed to the target.
// Disable it when the destination is known to be erased already, for
// example right after a chip erase.
func WithEraseBeforeWrite(erase bool) Option {
	return func(c *Config) {
		c.EraseBeforeWrite = erase
	}
}

// WithVerify controls read-back verification after programming.
func WithVerify(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterWrite = verify
	}
}

// WithProgressCallback sets a callback for progress updates.
//
// Example:
//
//	prog := image.New(session, image.WithProgressCallback(func(p image.Progress) {
//		fmt.Printf("\r%s %.1f%%", p.Phase, p.Percentage)
//	}))
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for debug and info output.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
