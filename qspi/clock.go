package qspi

import "time"

// Clock supplies time to the busy-wait loop. The default implementation
// uses the system clock; tests substitute a fake to step through budgets
// without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }
