package protocol

import "time"

// Command opcodes for W25Q series serial NOR flash.
// Each opcode is the first byte clocked out on the wire.
const (
	// CmdWriteEnable sets the write enable latch. Required before any
	// program, erase or write status command.
	CmdWriteEnable byte = 0x06

	// CmdWriteDisable clears the write enable latch.
	CmdWriteDisable byte = 0x04

	// CmdReadStatus1 reads status register 1 (busy and write enable bits).
	CmdReadStatus1 byte = 0x05

	// CmdReadStatus2 reads status register 2 (quad enable bit).
	CmdReadStatus2 byte = 0x35

	// CmdWriteStatus writes status registers 1 and 2 in a single command.
	CmdWriteStatus byte = 0x01

	// CmdPageProgram programs up to one page (256 bytes) over a single
	// data lane.
	CmdPageProgram byte = 0x02

	// CmdQuadPageProgram programs up to one page over four data lanes.
	// Requires the quad enable bit to be set.
	CmdQuadPageProgram byte = 0x32

	// CmdSectorErase erases one 4 KB sector.
	CmdSectorErase byte = 0x20

	// CmdBlockErase32K erases one 32 KB block.
	CmdBlockErase32K byte = 0x52

	// CmdBlockErase64K erases one 64 KB block.
	CmdBlockErase64K byte = 0xD8

	// CmdChipErase erases the entire device.
	CmdChipErase byte = 0xC7

	// CmdReadData reads at the normal clock rate with no dummy byte.
	CmdReadData byte = 0x03

	// CmdFastRead reads at a higher clock rate; one dummy byte follows
	// the address.
	CmdFastRead byte = 0x0B

	// CmdReadJEDECID reads the 3-byte JEDEC identifier
	// (manufacturer, memory type, capacity).
	CmdReadJEDECID byte = 0x9F

	// CmdReleasePowerDown wakes the device from deep power-down.
	CmdReleasePowerDown byte = 0xAB

	// CmdPowerDown puts the device into deep power-down.
	CmdPowerDown byte = 0xB9
)

// Device geometry.
const (
	// PageSize is the largest unit a single page program command can
	// cover. Programs must not cross a page boundary.
	PageSize = 256

	// SectorSize is the smallest erasable unit.
	SectorSize = 4 * 1024

	// Block32KSize is the granularity of the 32 KB block erase command.
	Block32KSize = 32 * 1024

	// Block64KSize is the granularity of the 64 KB block erase command.
	Block64KSize = 64 * 1024

	// AddressBytes is the width of the address field in addressed
	// commands.
	AddressBytes = 3

	// MaxAddress is the highest address reachable with 3-byte addressing.
	MaxAddress = 1<<(8*AddressBytes) - 1
)

// Worst-case completion budgets. A device that stays busy past the budget
// for its command class is treated as failed. Values are rounded up from
// the W25Q16JV datasheet maxima to leave headroom for slow parts.
const (
	// ReadyBudget bounds the wait for a previous command to finish
	// before a new one is issued.
	ReadyBudget = 1 * time.Second

	// ProgramBudget bounds a single page program.
	ProgramBudget = 5 * time.Second

	// SectorEraseBudget bounds a 4 KB sector erase.
	SectorEraseBudget = 5 * time.Second

	// Block32KEraseBudget bounds a 32 KB block erase.
	Block32KEraseBudget = 5 * time.Second

	// Block64KEraseBudget bounds a 64 KB block erase.
	Block64KEraseBudget = 10 * time.Second

	// ChipEraseBudget bounds a full chip erase.
	ChipEraseBudget = 60 * time.Second
)
