package flash

import "fmt"

// RegionKind identifies which memory a routed address belongs to.
type RegionKind int

const (
	// RegionInternal is the memory-mapped internal flash.
	RegionInternal RegionKind = iota

	// RegionExternal is the external serial flash window.
	RegionExternal
)

func (k RegionKind) String() string {
	switch k {
	case RegionInternal:
		return "internal"
	case RegionExternal:
		return "external"
	default:
		return fmt.Sprintf("regionkind(%d)", int(k))
	}
}

// Region is a half-open address range [Base, Base+Size).
type Region struct {
	Base uint32
	Size uint32
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr uint32) bool {
	return addr >= r.Base && addr-r.Base < r.Size
}

// Overlaps reports whether the two regions share any address.
func (r Region) Overlaps(other Region) bool {
	if r.Size == 0 || other.Size == 0 {
		return false
	}
	return uint64(r.Base) < uint64(other.Base)+uint64(other.Size) &&
		uint64(other.Base) < uint64(r.Base)+uint64(r.Size)
}

func (r Region) String() string {
	return fmt.Sprintf("0x%08X..0x%08X", r.Base, uint64(r.Base)+uint64(r.Size)-1)
}

// Target is the destination of a routed address.
type Target struct {
	// Kind says which memory the address belongs to.
	Kind RegionKind

	// Offset is the device-relative offset for external targets. For
	// internal targets it is the unchanged absolute address, since the
	// internal flash is memory mapped.
	Offset uint32
}

// Router classifies absolute addresses into the internal flash region
// or an optional external flash window. The window represents an
// execute-in-place mapping: addresses inside it are translated to
// offsets on the external device by subtracting the window base.
type Router struct {
	internal    Region
	external    Region
	hasExternal bool
}

// NewRouter creates a Router with only the internal region configured.
func NewRouter(internal Region) *Router {
	return &Router{internal: internal}
}

// Internal returns the internal region.
func (r *Router) Internal() Region {
	return r.internal
}

// External returns the external window and whether one is configured.
func (r *Router) External() (Region, bool) {
	return r.external, r.hasExternal
}

// SetExternal configures the external window. The window must not be
// empty and must not overlap the internal region.
func (r *Router) SetExternal(external Region) error {
	if external.Size == 0 {
		return fmt.Errorf("external region must not be empty")
	}
	if external.Overlaps(r.internal) {
		return &RegionOverlapError{Internal: r.internal, External: external}
	}
	r.external = external
	r.hasExternal = true
	return nil
}

// SetExternalBase moves the external window to a new base address
// keeping its size. The window stays where it was when the move would
// collide with the internal region.
func (r *Router) SetExternalBase(base uint32) error {
	if !r.hasExternal {
		return ErrNoExternal
	}
	moved := Region{Base: base, Size: r.external.Size}
	if moved.Overlaps(r.internal) {
		return &RegionOverlapError{Internal: r.internal, External: moved}
	}
	r.external = moved
	return nil
}

// Classify routes an absolute address. Addresses in the external window
// come back with their device-relative offset; addresses in neither
// region are rejected.
func (r *Router) Classify(addr uint32) (Target, error) {
	if r.hasExternal && r.external.Contains(addr) {
		return Target{Kind: RegionExternal, Offset: addr - r.external.Base}, nil
	}
	if r.internal.Contains(addr) {
		return Target{Kind: RegionInternal, Offset: addr}, nil
	}
	return Target{}, &AddressError{Address: addr}
}
