package flash

// NoSector marks an empty erase cache.
const NoSector = 0xFFFFFFFF

// SectorEraser erases fixed-size sectors. A *qspi.Controller satisfies
// it.
type SectorEraser interface {
	EraseSector(offset uint32) error
}

// EraseCache memoizes the most recent successful sector erase so that a
// run of writes into one sector costs a single erase. Only the last
// sector is remembered; alternating between two sectors erases on every
// switch.
type EraseCache struct {
	eraser SectorEraser
	last   uint32
}

// NewEraseCache creates an EraseCache over eraser.
// Panics if eraser is nil.
func NewEraseCache(eraser SectorEraser) *EraseCache {
	if eraser == nil {
		panic("sector eraser cannot be nil")
	}
	return &EraseCache{eraser: eraser, last: NoSector}
}

// EnsureErased erases the sector at the sector-aligned offset unless it
// was the previous sector erased through this cache. The memo is only
// updated on success; a failed erase leaves it unchanged so the next
// call retries.
func (ec *EraseCache) EnsureErased(sector uint32) error {
	if sector == ec.last {
		return nil
	}
	if err := ec.eraser.EraseSector(sector); err != nil {
		return err
	}
	ec.last = sector
	return nil
}

// Reset forgets the memoized sector. The next EnsureErased call erases
// unconditionally. Call it at session boundaries: the memo reflects
// what this process erased, and device contents may have changed in
// ways it cannot see.
func (ec *EraseCache) Reset() {
	ec.last = NoSector
}
