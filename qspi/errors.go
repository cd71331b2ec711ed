package qspi

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-norflash/protocol"
)

// OpError reports a failed device operation along with its outcome
// classification.
type OpError struct {
	// Op names the operation, for example "program" or "wait ready".
	Op string

	// Result classifies the outcome.
	Result protocol.Result

	// Err is the underlying transport error, if any.
	Err error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Result, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Result)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// RangeError indicates an operation that falls outside the device.
type RangeError struct {
	Offset uint32
	Length int
	Size   uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range 0x%06X..0x%06X exceeds device size 0x%06X",
		e.Offset, uint64(e.Offset)+uint64(e.Length)-1, e.Size)
}

// AlignmentError indicates an erase offset that is not aligned to the
// erase granularity.
type AlignmentError struct {
	Offset uint32
	Align  uint32
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("offset 0x%06X is not aligned to 0x%X", e.Offset, e.Align)
}

// ResultOf classifies an error returned by a Controller. A nil error is
// ResultSuccess; errors without an OpError in their chain are
// ResultError.
func ResultOf(err error) protocol.Result {
	if err == nil {
		return protocol.ResultSuccess
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Result
	}
	return protocol.ResultError
}
