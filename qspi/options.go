package qspi

import (
	"time"

	"github.com/moffa90/go-norflash/protocol"
)

// Default configuration values.
const (
	// DefaultSize is the capacity assumed when none is given. It matches
	// the W25Q16, a 2 MB part.
	DefaultSize = 2 * 1024 * 1024

	// DefaultPollInterval is the delay between busy polls.
	DefaultPollInterval = 500 * time.Microsecond
)

// Budgets holds the worst-case completion budget for each command class.
// A zero field keeps the default for that class.
type Budgets struct {
	// Ready bounds the wait for a previous command before issuing a
	// new one.
	Ready time.Duration

	// Program bounds a single page program.
	Program time.Duration

	// SectorErase bounds a 4 KB sector erase.
	SectorErase time.Duration

	// Block32KErase bounds a 32 KB block erase.
	Block32KErase time.Duration

	// Block64KErase bounds a 64 KB block erase.
	Block64KErase time.Duration

	// ChipErase bounds a full chip erase.
	ChipErase time.Duration
}

func defaultBudgets() Budgets {
	return Budgets{
		Ready:         protocol.ReadyBudget,
		Program:       protocol.ProgramBudget,
		SectorErase:   protocol.SectorEraseBudget,
		Block32KErase: protocol.Block32KEraseBudget,
		Block64KErase: protocol.Block64KEraseBudget,
		ChipErase:     protocol.ChipEraseBudget,
	}
}

// Config holds configuration for the Controller.
type Config struct {
	// Size is the device capacity in bytes. Reads and programs are
	// bounds-checked against it.
	Size uint32

	// PollInterval is the delay between busy polls.
	PollInterval time.Duration

	// Budgets are the per-class completion budgets.
	Budgets Budgets

	// Logger receives debug and error output. Optional.
	Logger Logger

	// Clock supplies time to the busy-wait loop.
	Clock Clock
}

func defaultConfig() Config {
	return Config{
		Size:         DefaultSize,
		PollInterval: DefaultPollInterval,
		Budgets:      defaultBudgets(),
		Clock:        systemClock{},
	}
}

// Option configures a Controller.
type Option func(*Config)

// WithSize sets the device capacity in bytes. Zero is ignored.
//
// Example:
//
//	ctrl := qspi.New(bus, qspi.WithSize(16*1024*1024))
func WithSize(size uint32) Option {
	return func(c *Config) {
		if size > 0 {
			c.Size = size
		}
	}
}

// WithPollInterval sets the delay between busy polls. Values that are
// zero or negative are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

// WithBudgets overrides completion budgets. Zero fields keep their
// defaults.
//
// Example:
//
//	ctrl := qspi.New(bus, qspi.WithBudgets(qspi.Budgets{
//		ChipErase: 2 * time.Minute,
//	}))
func WithBudgets(b Budgets) Option {
	return func(c *Config) {
		if b.Ready > 0 {
			c.Budgets.Ready = b.Ready
		}
		if b.Program > 0 {
			c.Budgets.Program = b.Program
		}
		if b.SectorErase > 0 {
			c.Budgets.SectorErase = b.SectorErase
		}
		if b.Block32KErase > 0 {
			c.Budgets.Block32KErase = b.Block32KErase
		}
		if b.Block64KErase > 0 {
			c.Budgets.Block64KErase = b.Block64KErase
		}
		if b.ChipErase > 0 {
			c.Budgets.ChipErase = b.ChipErase
		}
	}
}

// WithLogger sets a logger for debug and error output.
//
// Example:
//
//	ctrl := qspi.New(bus, qspi.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithClock substitutes the time source used by the busy-wait loop.
// Nil is ignored. Intended for tests.
func WithClock(clock Clock) Option {
	return func(c *Config) {
		if clock != nil {
			c.Clock = clock
		}
	}
}
