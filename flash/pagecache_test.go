package flash

import (
	"bytes"
	"errors"
	"testing"
)

var errDeviceFailure = errors.New("injected device failure")

// memDevice is an in-memory MemoryDevice with real flash semantics:
// erasing sets a page to 0xFF and programming only clears bits.
type memDevice struct {
	data     []byte
	pageSize uint32

	reads    int
	erases   []uint32
	programs []uint32

	readErr    error
	eraseErr   error
	programErr error
}

func newMemDevice(size, pageSize uint32) *memDevice {
	d := &memDevice{
		data:     make([]byte, size),
		pageSize: pageSize,
	}
	for i := range d.data {
		d.data[i] = 0xFF
	}
	return d
}

func (d *memDevice) Read(p []byte, addr uint32) error {
	d.reads++
	if d.readErr != nil {
		return d.readErr
	}
	copy(p, d.data[addr:])
	return nil
}

func (d *memDevice) ErasePage(addr uint32) error {
	if d.eraseErr != nil {
		return d.eraseErr
	}
	d.erases = append(d.erases, addr)
	for i := uint32(0); i < d.pageSize; i++ {
		d.data[addr+i] = 0xFF
	}
	return nil
}

func (d *memDevice) ProgramPage(p []byte, addr uint32) error {
	if d.programErr != nil {
		return d.programErr
	}
	d.programs = append(d.programs, addr)
	for i, b := range p {
		d.data[addr+uint32(i)] &= b
	}
	return nil
}

func TestNewPageCachePanics(t *testing.T) {
	tests := []struct {
		name     string
		mem      MemoryDevice
		pageSize uint32
	}{
		{name: "nil device", mem: nil, pageSize: 4096},
		{name: "zero page size", mem: newMemDevice(4096, 4096), pageSize: 0},
		{name: "page size not power of two", mem: newMemDevice(4096, 4096), pageSize: 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic")
				}
			}()
			NewPageCache(tt.mem, tt.pageSize)
		})
	}
}

func TestWriteThenFlush(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	data := []byte{0x01, 0x02, 0x03, 0x04}
	if err := pc.Write(data, 0x100, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dev.programs) != 0 {
		t.Error("write reached the device before Flush")
	}
	if !pc.Pending() {
		t.Error("Pending() = false with staged data")
	}

	if err := pc.Flush(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.Pending() {
		t.Error("Pending() = true after Flush")
	}
	if !bytes.Equal(dev.data[0x100:0x104], data) {
		t.Errorf("device = % X, want % X", dev.data[0x100:0x104], data)
	}
	if len(dev.erases) != 1 || dev.erases[0] != 0 {
		t.Errorf("erases = %v, want [0]", dev.erases)
	}
	if len(dev.programs) != 1 || dev.programs[0] != 0 {
		t.Errorf("programs = %v, want [0]", dev.programs)
	}
}

func TestFlushEmptyCache(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	if err := pc.Flush(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev.reads != 0 || len(dev.programs) != 0 {
		t.Error("empty flush touched the device")
	}
}

func TestFlushIdempotent(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	if err := pc.Write([]byte{0xAA}, 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pc.Flush(true); err != nil {
		t.Fatalf("first flush: %v", err)
	}
	reads := dev.reads

	if err := pc.Flush(true); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if len(dev.programs) != 1 {
		t.Errorf("programs = %v, want exactly one", dev.programs)
	}
	if dev.reads != reads {
		t.Error("idempotent flush touched the device")
	}
}

func TestRewriteOfIdenticalContentSkipped(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := pc.Write(data, 0x40, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pc.Flush(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Staging the same bytes again must cost no erase and no program.
	if err := pc.Write(data, 0x40, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pc.Flush(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dev.erases) != 1 {
		t.Errorf("erases = %v, want exactly one", dev.erases)
	}
	if len(dev.programs) != 1 {
		t.Errorf("programs = %v, want exactly one", dev.programs)
	}
	if pc.Pending() {
		t.Error("Pending() = true after skipped flush")
	}
}

func TestFragmentsCoalesceIntoOneProgram(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	// Many small writes scattered over one page.
	for i := uint32(0); i < 16; i++ {
		if err := pc.Write([]byte{byte(i)}, i*100, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := pc.Flush(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dev.programs) != 1 {
		t.Errorf("programs = %v, want one for the whole page", dev.programs)
	}
	for i := uint32(0); i < 16; i++ {
		if dev.data[i*100] != byte(i) {
			t.Errorf("device[%d] = 0x%02X, want 0x%02X", i*100, dev.data[i*100], byte(i))
		}
	}
}

func TestUntouchedBytesSurvive(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	for i := 0; i < 4096; i++ {
		dev.data[i] = byte(i)
	}
	pc := NewPageCache(dev, 4096)

	if err := pc.Write([]byte{0xAA, 0xBB}, 0x10, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pc.Flush(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dev.data[0x10] != 0xAA || dev.data[0x11] != 0xBB {
		t.Errorf("written bytes = % X, want AA BB", dev.data[0x10:0x12])
	}
	if dev.data[0x0F] != 0x0F || dev.data[0x12] != 0x12 {
		t.Error("bytes around the write did not survive the rewrite")
	}
}

func TestWriteCrossingPageBoundary(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i + 1)
	}
	if err := pc.Write(data, 4090, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pc.Flush(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(dev.data[4090:4190], data) {
		t.Error("data crossing the boundary did not land intact")
	}
	if len(dev.programs) != 2 {
		t.Fatalf("programs = %v, want the two touched pages", dev.programs)
	}
	if dev.programs[0] != 0 || dev.programs[1] != 4096 {
		t.Errorf("programs = %v, want [0 4096]", dev.programs)
	}
}

func TestTwoDistantWritesProgramEachPageOnce(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	first := bytes.Repeat([]byte{0x11}, 10)
	second := bytes.Repeat([]byte{0x22}, 10)

	if err := pc.Write(first, 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pc.Write(second, 4100, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pc.Flush(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dev.programs) != 2 {
		t.Fatalf("programs = %v, want exactly two", dev.programs)
	}
	if dev.programs[0] != 0 || dev.programs[1] != 4096 {
		t.Errorf("programs = %v, want [0 4096]", dev.programs)
	}
	if len(dev.erases) != 2 {
		t.Errorf("erases = %v, want exactly two", dev.erases)
	}
	if !bytes.Equal(dev.data[0:10], first) || !bytes.Equal(dev.data[4100:4110], second) {
		t.Error("write contents did not land intact")
	}
}

func TestFlushWithoutErase(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	if err := pc.Write([]byte{0x7F}, 0, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pc.Flush(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dev.erases) != 0 {
		t.Errorf("erases = %v, want none", dev.erases)
	}
	if dev.data[0] != 0x7F {
		t.Errorf("device[0] = 0x%02X, want 0x7F", dev.data[0])
	}
}

func TestFlushFailureKeepsPageStaged(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	if err := pc.Write([]byte{0x55}, 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dev.programErr = errDeviceFailure
	if err := pc.Flush(true); err == nil {
		t.Fatal("expected error, got nil")
	}
	if !pc.Pending() {
		t.Fatal("failed flush dropped the staged page")
	}

	// The page survives for a retry.
	dev.programErr = nil
	if err := pc.Flush(true); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if dev.data[0] != 0x55 {
		t.Errorf("device[0] = 0x%02X, want 0x55", dev.data[0])
	}
	if pc.Pending() {
		t.Error("Pending() = true after successful retry")
	}
}

func TestCompareReadFailureKeepsPageStaged(t *testing.T) {
	dev := newMemDevice(16*1024, 4096)
	pc := NewPageCache(dev, 4096)

	if err := pc.Write([]byte{0x55}, 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dev.readErr = errDeviceFailure
	if err := pc.Flush(true); err == nil {
		t.Fatal("expected error, got nil")
	}
	if !pc.Pending() {
		t.Error("failed compare read dropped the staged page")
	}
}

func BenchmarkPageCacheWrite(b *testing.B) {
	dev := newMemDevice(64*1024, 4096)
	pc := NewPageCache(dev, 4096)
	chunk := bytes.Repeat([]byte{0xA5}, 16)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		addr := uint32(i*16) % (60 * 1024)
		if err := pc.Write(chunk, addr, true); err != nil {
			b.Fatal(err)
		}
	}
}
