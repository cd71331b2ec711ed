package protocol

import "fmt"

// Result classifies the outcome of a flash operation.
type Result int

const (
	// ResultSuccess means the operation completed.
	ResultSuccess Result = iota

	// ResultBusy means the device reported an operation in progress and
	// the command was not issued.
	ResultBusy

	// ResultError means the operation or its transport failed.
	ResultError

	// ResultTimeout means the device stayed busy past the completion
	// budget for the command class.
	ResultTimeout
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultBusy:
		return "busy"
	case ResultError:
		return "error"
	case ResultTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}
