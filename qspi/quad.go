package qspi

import (
	"fmt"

	"github.com/moffa90/go-norflash/protocol"
)

// EnableQuadMode makes sure the quad enable bit of status register 2 is
// set, turning the IO2 and IO3 pins into data lanes. The bit is
// non-volatile and the register has a finite write endurance, so a
// device that already has it set is left untouched.
//
// Both status registers are written back in a single command with
// register 1 unchanged, which also covers parts that only accept the
// two-register form of Write Status.
func (c *Controller) EnableQuadMode() error {
	sr1, sr2, err := c.Status()
	if err != nil {
		return fmt.Errorf("enable quad mode: %w", err)
	}
	if sr2.QuadEnabled() {
		c.logDebug("quad enable bit already set")
		c.quad = true
		return nil
	}

	if err := c.writeEnable(); err != nil {
		return fmt.Errorf("enable quad mode: %w", err)
	}
	tx := []byte{byte(sr1), byte(sr2.WithQuadEnabled())}
	if err := c.bus.Exchange(protocol.CmdWriteStatus, tx, nil); err != nil {
		return fmt.Errorf("enable quad mode: %w",
			&OpError{Op: "write status", Result: protocol.ResultError, Err: err})
	}
	if err := c.waitReady(c.config.Budgets.Ready); err != nil {
		return fmt.Errorf("enable quad mode: %w", err)
	}

	c.quad = true
	c.logDebug("quad enable bit set")
	return nil
}
