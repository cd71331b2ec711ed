package protocol

import "fmt"

// putAddr writes a 24-bit big-endian address into dst.
func putAddr(dst []byte, addr uint32) {
	dst[0] = byte(addr >> 16)
	dst[1] = byte(addr >> 8)
	dst[2] = byte(addr)
}

// BuildCommandFrame creates a generic command frame with optional write
// data and room for a response. The response occupies the trailing respLen
// bytes of the frame after a full-duplex exchange.
//
// Frame structure:
//
//	[OPCODE][DATA...][RESP...]
func BuildCommandFrame(opcode byte, data []byte, respLen int) ([]byte, error) {
	if respLen < 0 {
		return nil, fmt.Errorf("response length must not be negative, got %d", respLen)
	}
	frame := make([]byte, 1+len(data)+respLen)
	frame[0] = opcode
	copy(frame[1:], data)
	return frame, nil
}

// BuildPageProgramCmd creates a Page Program command frame. The data must
// fit within the page containing addr; a program that would wrap past the
// page boundary is rejected.
//
// Frame structure:
//
//	[0x02][ADDR_H][ADDR_M][ADDR_L][DATA...]
func BuildPageProgramCmd(addr uint32, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("program data must not be empty")
	}
	if addr > MaxAddress {
		return nil, fmt.Errorf("address 0x%X exceeds 3-byte range", addr)
	}
	if int(addr%PageSize)+len(data) > PageSize {
		return nil, fmt.Errorf("program of %d bytes at 0x%06X crosses a page boundary", len(data), addr)
	}

	frame := make([]byte, 1+AddressBytes+len(data))
	frame[0] = CmdPageProgram
	putAddr(frame[1:], addr)
	copy(frame[1+AddressBytes:], data)
	return frame, nil
}

// BuildReadCmd creates a Read Data command frame. After a full-duplex
// exchange the device data occupies the trailing length bytes; use
// ReadResponse to extract them.
//
// Frame structure:
//
//	[0x03][ADDR_H][ADDR_M][ADDR_L][DUMMY...]
func BuildReadCmd(addr uint32, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("read length must be positive, got %d", length)
	}
	if uint64(addr)+uint64(length)-1 > MaxAddress {
		return nil, fmt.Errorf("read of %d bytes at 0x%06X exceeds 3-byte range", length, addr)
	}

	frame := make([]byte, 1+AddressBytes+length)
	frame[0] = CmdReadData
	putAddr(frame[1:], addr)
	return frame, nil
}

// BuildFastReadCmd creates a Fast Read command frame. One dummy byte
// follows the address, so the device data occupies the trailing length
// bytes; use FastReadResponse to extract them.
//
// Frame structure:
//
//	[0x0B][ADDR_H][ADDR_M][ADDR_L][DUMMY][DUMMY...]
func BuildFastReadCmd(addr uint32, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("read length must be positive, got %d", length)
	}
	if uint64(addr)+uint64(length)-1 > MaxAddress {
		return nil, fmt.Errorf("read of %d bytes at 0x%06X exceeds 3-byte range", length, addr)
	}

	frame := make([]byte, 1+AddressBytes+1+length)
	frame[0] = CmdFastRead
	putAddr(frame[1:], addr)
	return frame, nil
}

// BuildEraseCmd creates an addressed erase command frame for one of the
// sector or block erase opcodes. Address alignment is the caller's
// responsibility; the device ignores address bits below the erase
// granularity.
//
// Frame structure:
//
//	[OPCODE][ADDR_H][ADDR_M][ADDR_L]
func BuildEraseCmd(opcode byte, addr uint32) ([]byte, error) {
	switch opcode {
	case CmdSectorErase, CmdBlockErase32K, CmdBlockErase64K:
	default:
		return nil, fmt.Errorf("opcode 0x%02X is not an addressed erase command", opcode)
	}
	if addr > MaxAddress {
		return nil, fmt.Errorf("address 0x%X exceeds 3-byte range", addr)
	}

	frame := make([]byte, 1+AddressBytes)
	frame[0] = opcode
	putAddr(frame[1:], addr)
	return frame, nil
}

// BuildChipEraseCmd creates a Chip Erase command frame.
//
// Frame structure:
//
//	[0xC7]
func BuildChipEraseCmd() []byte {
	return []byte{CmdChipErase}
}

// ReadResponse extracts the device data from an exchanged Read Data frame.
func ReadResponse(frame []byte) []byte {
	return frame[1+AddressBytes:]
}

// FastReadResponse extracts the device data from an exchanged Fast Read
// frame, skipping the dummy byte.
func FastReadResponse(frame []byte) []byte {
	return frame[1+AddressBytes+1:]
}
