package image

import (
	"encoding/binary"
	"fmt"
	"io"
)

// UF2 container constants.
const (
	// UF2BlockSize is the fixed on-disk size of every block.
	UF2BlockSize = 512

	// UF2PayloadSize is the payload carried per block when writing.
	// Readers accept any payload up to the field size.
	UF2PayloadSize = 256

	// UF2FlagNotMainFlash marks a block that must not be written to
	// flash.
	UF2FlagNotMainFlash = 0x00000001

	// UF2FlagFileContainer marks a block carrying a file instead of
	// flash data.
	UF2FlagFileContainer = 0x00001000

	// UF2FlagFamilyIDPresent marks the family field as meaningful.
	UF2FlagFamilyIDPresent = 0x00002000

	// UF2FlagMD5Present marks a trailing MD5 checksum in the payload.
	UF2FlagMD5Present = 0x00004000

	// UF2FlagExtensionTags marks extension tags after the payload.
	UF2FlagExtensionTags = 0x00008000
)

const (
	uf2MagicStart0 = 0x0A324655 // "UF2\n"
	uf2MagicStart1 = 0x9E5D5157
	uf2MagicEnd    = 0x0AB16F30
	uf2MaxPayload  = 476
)

// Families maps well-known board family names to UF2 family
// identifiers.
var Families = map[string]uint32{
	"nrf52":    0x1B57745F,
	"nrf52840": 0xADA52840,
	"samd21":   0x68ED2B88,
	"samd51":   0x55114460,
	"stm32f4":  0x57755A57,
	"rp2040":   0xE48BFF56,
}

// FamilyName returns the well-known name for a family identifier.
func FamilyName(id uint32) (string, bool) {
	for name, family := range Families {
		if family == id {
			return name, true
		}
	}
	return "", false
}

// uf2Block is the on-disk layout of one block, 512 bytes with
// little-endian fields.
type uf2Block struct {
	Magic0   uint32
	Magic1   uint32
	Flags    uint32
	Addr     uint32
	Len      uint32
	Seq      uint32
	Total    uint32
	Family   uint32
	Data     [uf2MaxPayload]byte
	MagicEnd uint32
}

// ParseUF2 reads a UF2 container. Blocks flagged as not-main-flash or
// file containers are skipped. All flash blocks must agree on the
// family identifier when they carry one.
func ParseUF2(r io.Reader) (*Image, error) {
	img := &Image{}
	familySeen := false

	for index := 0; ; index++ {
		var block uf2Block
		err := binary.Read(r, binary.LittleEndian, &block)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, &FormatError{Block: index, Reason: "truncated block"}
		}
		if err != nil {
			return nil, fmt.Errorf("read block %d: %w", index, err)
		}

		if block.Magic0 != uf2MagicStart0 || block.Magic1 != uf2MagicStart1 {
			return nil, &FormatError{Block: index, Reason: "bad start magic"}
		}
		if block.MagicEnd != uf2MagicEnd {
			return nil, &FormatError{Block: index, Reason: "bad end magic"}
		}
		if block.Flags&(UF2FlagNotMainFlash|UF2FlagFileContainer) != 0 {
			continue
		}
		if block.Len == 0 || block.Len > uf2MaxPayload {
			return nil, &FormatError{
				Block:  index,
				Reason: fmt.Sprintf("payload length %d out of range", block.Len),
			}
		}

		if block.Flags&UF2FlagFamilyIDPresent != 0 {
			if familySeen && img.Family != block.Family {
				return nil, &FormatError{
					Block:  index,
					Reason: fmt.Sprintf("family 0x%08X conflicts with 0x%08X", block.Family, img.Family),
				}
			}
			img.Family = block.Family
			familySeen = true
		}

		img.Add(block.Addr, block.Data[:block.Len])
	}

	if len(img.Segments) == 0 {
		return nil, &FormatError{Block: 0, Reason: "no flash data blocks"}
	}
	if err := img.Normalize(); err != nil {
		return nil, err
	}
	return img, nil
}

// WriteUF2 writes the image as a UF2 container with 256-byte payloads.
// The family identifier is included when the image carries one.
func WriteUF2(w io.Writer, img *Image) error {
	total := 0
	for _, seg := range img.Segments {
		total += (len(seg.Data) + UF2PayloadSize - 1) / UF2PayloadSize
	}
	if total == 0 {
		return fmt.Errorf("image has no data")
	}

	var flags uint32
	if img.Family != 0 {
		flags |= UF2FlagFamilyIDPresent
	}

	seq := 0
	for _, seg := range img.Segments {
		addr := seg.Address
		data := seg.Data
		for len(data) > 0 {
			n := UF2PayloadSize
			if n > len(data) {
				n = len(data)
			}

			block := uf2Block{
				Magic0:   uf2MagicStart0,
				Magic1:   uf2MagicStart1,
				Flags:    flags,
				Addr:     addr,
				Len:      uint32(n),
				Seq:      uint32(seq),
				Total:    uint32(total),
				Family:   img.Family,
				MagicEnd: uf2MagicEnd,
			}
			copy(block.Data[:], data[:n])

			if err := binary.Write(w, binary.LittleEndian, &block); err != nil {
				return fmt.Errorf("write block %d: %w", seq, err)
			}
			addr += uint32(n)
			data = data[n:]
			seq++
		}
	}
	return nil
}
