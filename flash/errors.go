package flash

import (
	"errors"
	"fmt"
)

// ErrNoExternal is returned by operations that need an external flash
// window when none was configured.
var ErrNoExternal = errors.New("no external flash configured")

// AddressError indicates an address outside every configured region.
type AddressError struct {
	Address uint32
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address 0x%08X is outside every configured flash region", e.Address)
}

// SpanError indicates a write or read that starts in one region but
// does not end in it.
type SpanError struct {
	Address uint32
	Length  int
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("range of %d bytes at 0x%08X crosses a region boundary", e.Length, e.Address)
}

// RegionOverlapError indicates an external window that collides with
// the internal region.
type RegionOverlapError struct {
	Internal Region
	External Region
}

func (e *RegionOverlapError) Error() string {
	return fmt.Sprintf("external region %s overlaps internal region %s", e.External, e.Internal)
}
