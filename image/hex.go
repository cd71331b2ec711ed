package image

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

// ParseHex reads firmware in Intel HEX format.
func ParseHex(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("parse intel hex: %w", err)
	}

	img := &Image{}
	for _, seg := range mem.GetDataSegments() {
		img.Add(seg.Address, seg.Data)
	}
	if len(img.Segments) == 0 {
		return nil, fmt.Errorf("intel hex file has no data")
	}
	if err := img.Normalize(); err != nil {
		return nil, err
	}
	return img, nil
}

// DumpHex writes the image in Intel HEX format with 16-byte records.
func DumpHex(w io.Writer, img *Image) error {
	mem := gohex.NewMemory()
	for _, seg := range img.Segments {
		if err := mem.AddBinary(seg.Address, seg.Data); err != nil {
			return fmt.Errorf("add segment 0x%08X: %w", seg.Address, err)
		}
	}
	return mem.DumpIntelHex(w, 16)
}

// Load reads firmware from path, picking the format by extension: .uf2
// and .hex files parse their containers, anything else is treated as a
// raw binary placed at binBase.
func Load(path string, binBase uint32) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open firmware: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".uf2":
		return ParseUF2(f)
	case ".hex", ".ihex":
		return ParseHex(f)
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read firmware: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("firmware file is empty")
		}
		img := &Image{}
		img.Add(binBase, data)
		return img, nil
	}
}
