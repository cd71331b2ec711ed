package qspi

import (
	"fmt"

	"github.com/moffa90/go-norflash/protocol"
)

// EraseKind selects the granularity of a single erase command.
type EraseKind int

const (
	// EraseSector erases a 4 KB sector.
	EraseSector EraseKind = iota

	// EraseBlock32K erases a 32 KB block.
	EraseBlock32K

	// EraseBlock64K erases a 64 KB block.
	EraseBlock64K

	// EraseChip erases the whole device. The offset is ignored.
	EraseChip
)

// Size returns the number of bytes the erase covers, or 0 for EraseChip.
func (k EraseKind) Size() uint32 {
	switch k {
	case EraseSector:
		return protocol.SectorSize
	case EraseBlock32K:
		return protocol.Block32KSize
	case EraseBlock64K:
		return protocol.Block64KSize
	default:
		return 0
	}
}

// Opcode returns the wire opcode for the erase.
func (k EraseKind) Opcode() byte {
	switch k {
	case EraseSector:
		return protocol.CmdSectorErase
	case EraseBlock32K:
		return protocol.CmdBlockErase32K
	case EraseBlock64K:
		return protocol.CmdBlockErase64K
	default:
		return protocol.CmdChipErase
	}
}

func (k EraseKind) String() string {
	switch k {
	case EraseSector:
		return "sector"
	case EraseBlock32K:
		return "block32k"
	case EraseBlock64K:
		return "block64k"
	case EraseChip:
		return "chip"
	default:
		return fmt.Sprintf("erasekind(%d)", int(k))
	}
}

// Bus is the transport a Controller drives. Implementations move frames
// to and from the device but never sequence commands; write enabling and
// busy polling belong to the Controller.
//
// The spibus package provides an implementation for SPI ports, and tests
// provide in-memory ones.
type Bus interface {
	// Exchange issues a single command. tx is clocked out after the
	// opcode and rx is filled with the bytes clocked in afterwards.
	// Either may be nil.
	Exchange(opcode byte, tx, rx []byte) error

	// Read fills p with device contents starting at offset.
	Read(p []byte, offset uint32) error

	// Program writes p at offset. p never crosses a page boundary.
	Program(p []byte, offset uint32) error

	// Erase issues a single erase command of the given kind at offset.
	Erase(kind EraseKind, offset uint32) error
}
