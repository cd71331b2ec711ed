package image

import "fmt"

// FormatError indicates a malformed firmware container.
type FormatError struct {
	// Block is the index of the offending block or record.
	Block int

	// Reason describes the defect.
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Block, e.Reason)
}

// OverlapError indicates two segments claim the same address. An image
// that writes one address twice is corrupt and is never merged.
type OverlapError struct {
	// Address is the first address claimed by both segments.
	Address uint32
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("segments overlap at 0x%08X", e.Address)
}

// VerifyError indicates a mismatch between written and read-back data.
type VerifyError struct {
	Address  uint32
	Expected byte
	Actual   byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verification failed at 0x%08X: wrote 0x%02X, read 0x%02X",
		e.Address, e.Expected, e.Actual)
}
