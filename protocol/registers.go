package protocol

import "strings"

// StatusRegister1 bit masks.
const (
	StatusBusy          byte = 1 << 0 // write/erase in progress
	StatusWriteEnabled  byte = 1 << 1 // write enable latch
	StatusBlockProtect0 byte = 1 << 2
	StatusBlockProtect1 byte = 1 << 3
	StatusBlockProtect2 byte = 1 << 4
	StatusTopBottom     byte = 1 << 5
	StatusSectorProtect byte = 1 << 6
	StatusRegProtect0   byte = 1 << 7
)

// StatusRegister2 bit masks.
const (
	StatusRegLock       byte = 1 << 0
	StatusQuadEnable    byte = 1 << 1 // enables IO2/IO3 as data lanes
	StatusSecurityLock1 byte = 1 << 3
	StatusSecurityLock2 byte = 1 << 4
	StatusSecurityLock3 byte = 1 << 5
	StatusComplement    byte = 1 << 6
	StatusSuspend       byte = 1 << 7
)

// StatusRegister1 is the first device status register. It reports the
// busy and write enable state along with the block protection
// configuration.
type StatusRegister1 byte

// Busy reports whether a program, erase or write status operation is in
// progress. All commands except read status are ignored while busy.
func (sr StatusRegister1) Busy() bool { return byte(sr)&StatusBusy != 0 }

// WriteEnabled reports whether the write enable latch is set.
func (sr StatusRegister1) WriteEnabled() bool { return byte(sr)&StatusWriteEnabled != 0 }

// Protected reports whether any block protection bits are set.
func (sr StatusRegister1) Protected() bool {
	return byte(sr)&(StatusBlockProtect0|StatusBlockProtect1|StatusBlockProtect2) != 0
}

func (sr StatusRegister1) String() string {
	if sr == 0 {
		return "ready"
	}
	var bits []string
	for _, b := range []struct {
		mask byte
		name string
	}{
		{StatusBusy, "BUSY"},
		{StatusWriteEnabled, "WEL"},
		{StatusBlockProtect0, "BP0"},
		{StatusBlockProtect1, "BP1"},
		{StatusBlockProtect2, "BP2"},
		{StatusTopBottom, "TB"},
		{StatusSectorProtect, "SEC"},
		{StatusRegProtect0, "SRP0"},
	} {
		if byte(sr)&b.mask != 0 {
			bits = append(bits, b.name)
		}
	}
	return strings.Join(bits, "|")
}

// StatusRegister2 is the second device status register. Its quad enable
// bit controls whether the IO2 and IO3 pins carry data instead of acting
// as write protect and hold.
type StatusRegister2 byte

// QuadEnabled reports whether the quad enable bit is set.
func (sr StatusRegister2) QuadEnabled() bool { return byte(sr)&StatusQuadEnable != 0 }

// WithQuadEnabled returns a copy of the register with the quad enable
// bit set. The quad enable bit is non-volatile; writing it back with
// CmdWriteStatus persists across power cycles.
func (sr StatusRegister2) WithQuadEnabled() StatusRegister2 {
	return sr | StatusRegister2(StatusQuadEnable)
}

// Suspended reports whether an erase or program operation is suspended.
func (sr StatusRegister2) Suspended() bool { return byte(sr)&StatusSuspend != 0 }

func (sr StatusRegister2) String() string {
	if sr == 0 {
		return "clear"
	}
	var bits []string
	for _, b := range []struct {
		mask byte
		name string
	}{
		{StatusRegLock, "SRL"},
		{StatusQuadEnable, "QE"},
		{StatusSecurityLock1, "LB1"},
		{StatusSecurityLock2, "LB2"},
		{StatusSecurityLock3, "LB3"},
		{StatusComplement, "CMP"},
		{StatusSuspend, "SUS"},
	} {
		if byte(sr)&b.mask != 0 {
			bits = append(bits, b.name)
		}
	}
	return strings.Join(bits, "|")
}
