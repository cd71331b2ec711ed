package flash

import (
	"bytes"
	"fmt"
)

// NoPage marks an empty page cache.
const NoPage = 0xFFFFFFFF

// MemoryDevice is page-organized memory the cache writes through to.
// Implementations cover memory-mapped internal flash as well as test
// doubles.
type MemoryDevice interface {
	// Read fills p with memory contents starting at addr.
	Read(p []byte, addr uint32) error

	// ErasePage erases the page at the page-aligned addr back to 0xFF.
	ErasePage(addr uint32) error

	// ProgramPage writes p, always exactly one page, at the
	// page-aligned addr.
	ProgramPage(p []byte, addr uint32) error
}

// PageCache staples writes together in a single page buffer so the
// device sees at most one erase and one program per page no matter how
// fragmented the incoming writes are.
//
// The cache holds one page at a time. Writing into a new page flushes
// the old one and loads the new page's current contents, so bytes the
// caller never touches keep their values.
type PageCache struct {
	mem      MemoryDevice
	pageSize uint32
	addr     uint32 // page currently staged, NoPage when empty
	buf      []byte
	scratch  []byte
}

// NewPageCache creates a PageCache over mem with the given page size.
// Panics if mem is nil or pageSize is not a power of two.
func NewPageCache(mem MemoryDevice, pageSize uint32) *PageCache {
	if mem == nil {
		panic("memory device cannot be nil")
	}
	if pageSize == 0 || pageSize&(pageSize-1) != 0 {
		panic("page size must be a power of two")
	}

	return &PageCache{
		mem:      mem,
		pageSize: pageSize,
		addr:     NoPage,
		buf:      make([]byte, pageSize),
		scratch:  make([]byte, pageSize),
	}
}

// Pending reports whether a page is staged and not yet flushed.
func (pc *PageCache) Pending() bool {
	return pc.addr != NoPage
}

// Write stages p at addr. Writes may start and end anywhere; the cache
// splits them along page boundaries. Leaving a page flushes it with the
// given needErase hint.
func (pc *PageCache) Write(p []byte, addr uint32, needErase bool) error {
	for len(p) > 0 {
		page := addr &^ (pc.pageSize - 1)
		if pc.addr != page {
			if err := pc.Flush(needErase); err != nil {
				return err
			}
			if err := pc.load(page); err != nil {
				return err
			}
		}
		n := copy(pc.buf[addr-page:], p)
		addr += uint32(n)
		p = p[n:]
	}
	return nil
}

// Flush writes the staged page back to the device and empties the
// cache. The device page is read first and an identical page is skipped
// outright, costing neither an erase nor a program. On failure the page
// stays staged, so a later Flush retries it.
func (pc *PageCache) Flush(needErase bool) error {
	if pc.addr == NoPage {
		return nil
	}

	if err := pc.mem.Read(pc.scratch, pc.addr); err != nil {
		return fmt.Errorf("compare page 0x%08X: %w", pc.addr, err)
	}
	if !bytes.Equal(pc.scratch, pc.buf) {
		if needErase {
			if err := pc.mem.ErasePage(pc.addr); err != nil {
				return fmt.Errorf("erase page 0x%08X: %w", pc.addr, err)
			}
		}
		if err := pc.mem.ProgramPage(pc.buf, pc.addr); err != nil {
			return fmt.Errorf("program page 0x%08X: %w", pc.addr, err)
		}
	}

	pc.addr = NoPage
	return nil
}

func (pc *PageCache) load(page uint32) error {
	if err := pc.mem.Read(pc.buf, page); err != nil {
		return fmt.Errorf("load page 0x%08X: %w", page, err)
	}
	pc.addr = page
	return nil
}
