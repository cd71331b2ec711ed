// Package protocol implements the command vocabulary of Winbond W25Q series
// serial NOR flash devices.
//
// This package provides the building blocks of the wire protocol:
//   - Command opcodes and device geometry constants
//   - Frame builders for addressed commands (page program, read, erase)
//   - Status register types with bit-level accessors
//   - JEDEC identification parsing with a table of known parts
//   - The operation result taxonomy shared by higher layers
//
// All addressed commands use 3-byte big-endian addressing, which covers
// devices up to 16 MB. Frames are laid out exactly as they travel on the
// wire, so a transport can clock a built frame out unchanged.
//
// The package performs validation only; it does not talk to hardware.
// See the qspi package for command sequencing and the spibus package for
// a physical transport.
package protocol
