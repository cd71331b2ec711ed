package flash

import (
	"fmt"
	"math"
)

// ExternalFlash is the serial flash device behind the external window.
// A *qspi.Controller satisfies it.
type ExternalFlash interface {
	// Program writes p at offset. The destination must already be
	// erased where p clears no bits.
	Program(p []byte, offset uint32) error

	// EraseSector erases the sector at the sector-aligned offset.
	EraseSector(offset uint32) error

	// Read fills p with device contents starting at offset.
	Read(p []byte, offset uint32) error
}

// Session is the write path of one firmware update. It routes incoming
// writes to the internal flash, staged through a PageCache, or to the
// external window, with sector erases collapsed by an EraseCache.
//
// Session is not safe for concurrent use.
type Session struct {
	mem      MemoryDevice
	pages    *PageCache
	router   *Router
	external ExternalFlash
	erased   *EraseCache
	config   Config
}

// NewSession creates a Session writing through mem.
// Panics if mem is nil or the configured regions overlap.
func NewSession(mem MemoryDevice, opts ...Option) *Session {
	if mem == nil {
		panic("memory device cannot be nil")
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	s := &Session{
		mem:    mem,
		pages:  NewPageCache(mem, config.PageSize),
		router: NewRouter(config.InternalRegion),
		config: config,
	}
	if config.External != nil {
		if err := s.router.SetExternal(config.ExternalRegion); err != nil {
			panic("invalid external region: " + err.Error())
		}
		s.external = config.External
		s.erased = NewEraseCache(config.External)
	}
	return s
}

// Begin starts a write session. Erase memoization from a previous
// session is dropped, so the first erasing write of the new session
// erases its sector even if an earlier session already did.
func (s *Session) Begin() {
	if s.erased != nil {
		s.erased.Reset()
	}
	s.logDebug("write session started")
}

// Write stages p at the absolute address addr. Internal addresses go
// through the page cache and may stay staged until Flush; external
// addresses are programmed immediately, preceded by sector erases when
// needErase is set.
func (s *Session) Write(p []byte, addr uint32, needErase bool) error {
	if len(p) == 0 {
		return nil
	}
	target, err := s.route(addr, len(p))
	if err != nil {
		return err
	}

	switch target.Kind {
	case RegionExternal:
		return s.writeExternal(p, target.Offset, needErase)
	default:
		return s.pages.Write(p, addr, needErase)
	}
}

// Flush pushes the staged internal page, if any, to the device.
// Flushing twice is free; the second call finds nothing staged.
func (s *Session) Flush(needErase bool) error {
	if err := s.pages.Flush(needErase); err != nil {
		return err
	}
	s.logDebug("flushed")
	return nil
}

// Read fills p with device contents at the absolute address addr. Data
// still staged in the page cache is not visible; read after the final
// Flush to verify what was written.
func (s *Session) Read(p []byte, addr uint32) error {
	if len(p) == 0 {
		return nil
	}
	target, err := s.route(addr, len(p))
	if err != nil {
		return err
	}

	switch target.Kind {
	case RegionExternal:
		if err := s.external.Read(p, target.Offset); err != nil {
			return fmt.Errorf("read external 0x%06X: %w", target.Offset, err)
		}
	default:
		if err := s.mem.Read(p, addr); err != nil {
			return fmt.Errorf("read internal 0x%08X: %w", addr, err)
		}
	}
	return nil
}

// SetExternalBase moves the external window to a new base address
// without changing its size. Subsequent writes route through the moved
// window; offsets already staged are unaffected.
func (s *Session) SetExternalBase(base uint32) error {
	if s.external == nil {
		return ErrNoExternal
	}
	if err := s.router.SetExternalBase(base); err != nil {
		return err
	}
	s.logDebug("external window moved", "base", fmt.Sprintf("0x%08X", base))
	return nil
}

// route classifies addr and checks that the whole range stays inside
// the region it starts in.
func (s *Session) route(addr uint32, length int) (Target, error) {
	target, err := s.router.Classify(addr)
	if err != nil {
		return Target{}, err
	}
	last := uint64(addr) + uint64(length) - 1
	if last > math.MaxUint32 {
		return Target{}, &SpanError{Address: addr, Length: length}
	}
	lastTarget, err := s.router.Classify(uint32(last))
	if err != nil || lastTarget.Kind != target.Kind {
		return Target{}, &SpanError{Address: addr, Length: length}
	}
	return target, nil
}

func (s *Session) writeExternal(p []byte, offset uint32, needErase bool) error {
	if needErase {
		mask := s.config.SectorSize - 1
		first := offset &^ mask
		last := (offset + uint32(len(p)) - 1) &^ mask
		for sector := first; ; sector += s.config.SectorSize {
			if err := s.erased.EnsureErased(sector); err != nil {
				return fmt.Errorf("erase external sector 0x%06X: %w", sector, err)
			}
			if sector == last {
				break
			}
		}
	}

	if err := s.external.Program(p, offset); err != nil {
		return fmt.Errorf("program external 0x%06X: %w", offset, err)
	}
	s.logDebug("external write", "offset", fmt.Sprintf("0x%06X", offset), "bytes", len(p))
	return nil
}

func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}
