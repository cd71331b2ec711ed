package image

import (
	"context"
	"fmt"
	"time"
)

// Target is the write path a Programmer drives. A *flash.Session
// satisfies it.
type Target interface {
	// Begin starts a write session.
	Begin()

	// Write stages p at the absolute address addr.
	Write(p []byte, addr uint32, needErase bool) error

	// Flush pushes staged data to the device.
	Flush(needErase bool) error

	// Read fills p with device contents at addr.
	Read(p []byte, addr uint32) error
}

// Programmer streams firmware images through a write target.
type Programmer struct {
	target Target
	config Config
}

// New creates a Programmer for the given target.
// Panics if target is nil.
func New(target Target, opts ...Option) *Programmer {
	if target == nil {
		panic("target cannot be nil")
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Programmer{
		target: target,
		config: config,
	}
}

// Program writes img through the target and verifies it by reading
// back. ctx is checked between chunks; the chunk in flight when ctx is
// canceled still completes, since flash operations cannot be abandoned
// once issued.
func (p *Programmer) Program(ctx context.Context, img *Image) error {
	if img == nil || len(img.Segments) == 0 {
		return fmt.Errorf("image cannot be empty")
	}

	startTime := time.Now()
	totalChunks := p.countChunks(img)

	p.logInfo("starting programming",
		"segments", len(img.Segments),
		"bytes", img.TotalBytes(),
		"chunks", totalChunks)

	p.target.Begin()
	p.reportProgress(Progress{
		Phase:       PhaseStarting,
		TotalChunks: totalChunks,
		ElapsedTime: time.Since(startTime),
	})

	written := 0
	chunk := 0
	for _, seg := range img.Segments {
		addr := seg.Address
		data := seg.Data
		for len(data) > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("programming canceled: %w", err)
			}

			n := p.config.ChunkSize
			if n > len(data) {
				n = len(data)
			}
			if err := p.target.Write(data[:n], addr, p.config.EraseBeforeWrite); err != nil {
				return fmt.Errorf("write 0x%08X: %w", addr, err)
			}

			chunk++
			written += n
			p.reportProgress(Progress{
				Phase:        PhaseWriting,
				CurrentChunk: chunk,
				TotalChunks:  totalChunks,
				Percentage:   2 + float64(chunk)/float64(totalChunks)*88,
				BytesWritten: written,
				ElapsedTime:  time.Since(startTime),
			})

			addr += uint32(n)
			data = data[n:]
		}
	}

	p.reportProgress(Progress{
		Phase:        PhaseFlushing,
		CurrentChunk: chunk,
		TotalChunks:  totalChunks,
		Percentage:   90,
		BytesWritten: written,
		ElapsedTime:  time.Since(startTime),
	})
	if err := p.target.Flush(p.config.EraseBeforeWrite); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if p.config.VerifyAfterWrite {
		p.reportProgress(Progress{
			Phase:        PhaseVerifying,
			CurrentChunk: chunk,
			TotalChunks:  totalChunks,
			Percentage:   92,
			BytesWritten: written,
			ElapsedTime:  time.Since(startTime),
		})
		if err := p.verify(ctx, img); err != nil {
			return err
		}
	}

	p.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentChunk: chunk,
		TotalChunks:  totalChunks,
		Percentage:   100,
		BytesWritten: written,
		ElapsedTime:  time.Since(startTime),
	})
	p.logInfo("programming complete",
		"bytes", written,
		"elapsed", time.Since(startTime).String())
	return nil
}

// verify reads the image back through the target and compares it
// byte by byte. Must run after the final flush so staged data has
// reached the device.
func (p *Programmer) verify(ctx context.Context, img *Image) error {
	buf := make([]byte, p.config.ChunkSize)
	for _, seg := range img.Segments {
		addr := seg.Address
		data := seg.Data
		for len(data) > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("verification canceled: %w", err)
			}

			n := p.config.ChunkSize
			if n > len(data) {
				n = len(data)
			}
			if err := p.target.Read(buf[:n], addr); err != nil {
				return fmt.Errorf("verify read 0x%08X: %w", addr, err)
			}
			for i := 0; i < n; i++ {
				if buf[i] != data[i] {
					return &VerifyError{
						Address:  addr + uint32(i),
						Expected: data[i],
						Actual:   buf[i],
					}
				}
			}

			addr += uint32(n)
			data = data[n:]
		}
	}

	p.logDebug("verification passed", "bytes", img.TotalBytes())
	return nil
}

func (p *Programmer) countChunks(img *Image) int {
	total := 0
	for _, seg := range img.Segments {
		total += (len(seg.Data) + p.config.ChunkSize - 1) / p.config.ChunkSize
	}
	return total
}

func (p *Programmer) reportProgress(progress Progress) {
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(progress)
	}
}

func (p *Programmer) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (p *Programmer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}
