package image

import (
	"time"

	"github.com/moffa90/go-norflash/qspi"
)

// Logger is the logging interface shared by this module. See
// qspi.Logger for the contract.
type Logger = qspi.Logger

// Progress reports the state of an ongoing programming run.
type Progress struct {
	// Phase is one of the Phase constants.
	Phase string

	// CurrentChunk counts written chunks, starting at 1.
	CurrentChunk int

	// TotalChunks is the number of chunks the image splits into.
	TotalChunks int

	// Percentage estimates overall completion, 0 to 100.
	Percentage float64

	// BytesWritten counts payload bytes handed to the target so far.
	BytesWritten int

	// ElapsedTime is the time since Program started.
	ElapsedTime time.Duration
}

// ProgressCallback receives progress updates during programming.
// Callbacks run on the programming goroutine and should return
// quickly.
type ProgressCallback func(Progress)

// Phases reported through Progress.
const (
	PhaseStarting  = "starting"
	PhaseWriting   = "writing"
	PhaseFlushing  = "flushing"
	PhaseVerifying = "verifying"
	PhaseComplete  = "complete"
)
