package qspi

import (
	"fmt"
	"time"

	"github.com/moffa90/go-norflash/protocol"
)

// Controller sequences commands to a serial NOR flash device over a Bus.
//
// Controller is not safe for concurrent use.
type Controller struct {
	bus    Bus
	config Config
	quad   bool
}

// New creates a Controller for the given bus.
// Panics if bus is nil.
func New(bus Bus, opts ...Option) *Controller {
	if bus == nil {
		panic("bus cannot be nil")
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Controller{
		bus:    bus,
		config: config,
	}
}

// Size returns the configured device capacity in bytes.
func (c *Controller) Size() uint32 {
	return c.config.Size
}

// QuadEnabled reports whether quad mode negotiation has succeeded.
func (c *Controller) QuadEnabled() bool {
	return c.quad
}

// Init brings the device up: it releases a possible deep power-down,
// waits for the device to become ready and negotiates quad mode. A
// failed negotiation leaves the controller in single-lane mode and is
// not an error; only a device that never becomes ready fails Init.
func (c *Controller) Init() error {
	if err := c.Wake(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	// Give the device its wake-up time before the first poll.
	c.config.Clock.Sleep(c.config.PollInterval)

	if err := c.waitReady(c.config.Budgets.Ready); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	if err := c.EnableQuadMode(); err != nil {
		c.logError("quad mode negotiation failed, staying single-lane", "error", err)
	}
	c.logInfo("device ready", "quad", c.quad)
	return nil
}

// Ready checks without waiting whether the device will accept a new
// command. It returns nil when the device is idle and an OpError
// classified as busy while an operation is still in progress. The
// sequenced entry points fold busyness into their own ready wait; Ready
// is for callers that must not block.
func (c *Controller) Ready() error {
	sr, err := c.readStatus1()
	if err != nil {
		return err
	}
	if sr.Busy() {
		return &OpError{Op: "ready check", Result: protocol.ResultBusy}
	}
	return nil
}

// Status reads both status registers.
func (c *Controller) Status() (protocol.StatusRegister1, protocol.StatusRegister2, error) {
	sr1, err := c.readStatus1()
	if err != nil {
		return 0, 0, err
	}
	var buf [1]byte
	if err := c.bus.Exchange(protocol.CmdReadStatus2, nil, buf[:]); err != nil {
		return 0, 0, &OpError{Op: "read status", Result: protocol.ResultError, Err: err}
	}
	return sr1, protocol.StatusRegister2(buf[0]), nil
}

// JEDECID reads and parses the device identifier.
func (c *Controller) JEDECID() (protocol.DeviceID, error) {
	raw := make([]byte, 3)
	if err := c.bus.Exchange(protocol.CmdReadJEDECID, nil, raw); err != nil {
		return protocol.DeviceID{}, &OpError{Op: "read jedec id", Result: protocol.ResultError, Err: err}
	}
	id, err := protocol.ParseJEDECID(raw)
	if err != nil {
		return protocol.DeviceID{}, fmt.Errorf("read jedec id: %w", err)
	}
	c.logDebug("identified device", "id", id.String())
	return id, nil
}

// Wake releases the device from deep power-down. A device that is not
// powered down ignores the command.
func (c *Controller) Wake() error {
	if err := c.bus.Exchange(protocol.CmdReleasePowerDown, nil, nil); err != nil {
		return &OpError{Op: "release power-down", Result: protocol.ResultError, Err: err}
	}
	return nil
}

// PowerDown puts the device into deep power-down once it is ready. All
// commands except Wake are ignored until the device is woken again.
func (c *Controller) PowerDown() error {
	if err := c.waitReady(c.config.Budgets.Ready); err != nil {
		return fmt.Errorf("power down: %w", err)
	}
	if err := c.bus.Exchange(protocol.CmdPowerDown, nil, nil); err != nil {
		return &OpError{Op: "power down", Result: protocol.ResultError, Err: err}
	}
	return nil
}

// Read fills p with device contents starting at offset. A read issued
// while a program or erase is still in flight waits it out first.
func (c *Controller) Read(p []byte, offset uint32) error {
	if len(p) == 0 {
		return nil
	}
	if err := c.checkRange(offset, len(p)); err != nil {
		return err
	}

	if err := c.waitReady(c.config.Budgets.Ready); err != nil {
		return fmt.Errorf("read 0x%06X: %w", offset, err)
	}
	if err := c.bus.Read(p, offset); err != nil {
		return fmt.Errorf("read 0x%06X: %w", offset,
			&OpError{Op: "read", Result: protocol.ResultError, Err: err})
	}

	c.logDebug("read", "offset", fmt.Sprintf("0x%06X", offset), "bytes", len(p))
	return nil
}

// Program writes p starting at offset, splitting it into page-confined
// chunks. Each page runs through its own command sequence, so a failure
// names the page it happened on. Programming only clears bits; callers
// that need a 0xFF background must erase first.
func (c *Controller) Program(p []byte, offset uint32) error {
	if len(p) == 0 {
		return nil
	}
	if err := c.checkRange(offset, len(p)); err != nil {
		return err
	}

	start := offset
	total := len(p)
	for len(p) > 0 {
		n := protocol.PageSize - int(offset%protocol.PageSize)
		if n > len(p) {
			n = len(p)
		}
		chunk := p[:n]
		err := c.sequence("program", c.config.Budgets.Program, func() error {
			return c.bus.Program(chunk, offset)
		})
		if err != nil {
			return fmt.Errorf("program 0x%06X: %w", offset, err)
		}
		offset += uint32(n)
		p = p[n:]
	}

	c.logDebug("programmed", "offset", fmt.Sprintf("0x%06X", start), "bytes", total)
	return nil
}

// EraseSector erases the 4 KB sector at offset, which must be sector
// aligned.
func (c *Controller) EraseSector(offset uint32) error {
	return c.erase(EraseSector, offset, c.config.Budgets.SectorErase)
}

// EraseBlock32K erases the 32 KB block at offset, which must be block
// aligned.
func (c *Controller) EraseBlock32K(offset uint32) error {
	return c.erase(EraseBlock32K, offset, c.config.Budgets.Block32KErase)
}

// EraseBlock64K erases the 64 KB block at offset, which must be block
// aligned.
func (c *Controller) EraseBlock64K(offset uint32) error {
	return c.erase(EraseBlock64K, offset, c.config.Budgets.Block64KErase)
}

// EraseBlocks erases count consecutive 64 KB blocks starting at offset.
// Each block runs through its own command sequence with its own budget,
// so the allowed wait scales with the span while a single stuck block
// still times out on its own.
func (c *Controller) EraseBlocks(offset uint32, count int) error {
	if count <= 0 {
		return fmt.Errorf("erase blocks: count must be positive, got %d", count)
	}
	for i := 0; i < count; i++ {
		if err := c.EraseBlock64K(offset); err != nil {
			return err
		}
		offset += protocol.Block64KSize
	}
	return nil
}

// EraseChip erases the entire device.
func (c *Controller) EraseChip() error {
	err := c.sequence("erase chip", c.config.Budgets.ChipErase, func() error {
		return c.bus.Erase(EraseChip, 0)
	})
	if err != nil {
		return fmt.Errorf("erase chip: %w", err)
	}
	c.logDebug("erased", "kind", "chip")
	return nil
}

func (c *Controller) erase(kind EraseKind, offset uint32, budget time.Duration) error {
	size := kind.Size()
	if offset%size != 0 {
		return &AlignmentError{Offset: offset, Align: size}
	}
	if err := c.checkRange(offset, int(size)); err != nil {
		return err
	}

	err := c.sequence("erase "+kind.String(), budget, func() error {
		return c.bus.Erase(kind, offset)
	})
	if err != nil {
		return fmt.Errorf("erase %s 0x%06X: %w", kind, offset, err)
	}

	c.logDebug("erased", "kind", kind.String(), "offset", fmt.Sprintf("0x%06X", offset))
	return nil
}

// sequence runs one mutating command through the full protocol dance:
// ready wait, write enable, the command itself, then a completion wait
// bounded by budget. The device clears the write enable latch after
// every completed program, erase or write status command, so each
// mutation needs its own Write Enable.
func (c *Controller) sequence(op string, budget time.Duration, issue func() error) error {
	if err := c.waitReady(c.config.Budgets.Ready); err != nil {
		return err
	}
	if err := c.writeEnable(); err != nil {
		return err
	}
	if err := issue(); err != nil {
		return &OpError{Op: op, Result: protocol.ResultError, Err: err}
	}
	return c.waitReady(budget)
}

// waitReady polls status register 1 until the busy bit clears or the
// budget runs out.
func (c *Controller) waitReady(budget time.Duration) error {
	deadline := c.config.Clock.Now().Add(budget)
	for {
		sr, err := c.readStatus1()
		if err != nil {
			return err
		}
		if !sr.Busy() {
			return nil
		}
		if !c.config.Clock.Now().Before(deadline) {
			return &OpError{Op: "wait ready", Result: protocol.ResultTimeout}
		}
		c.config.Clock.Sleep(c.config.PollInterval)
	}
}

func (c *Controller) readStatus1() (protocol.StatusRegister1, error) {
	var buf [1]byte
	if err := c.bus.Exchange(protocol.CmdReadStatus1, nil, buf[:]); err != nil {
		return 0, &OpError{Op: "read status", Result: protocol.ResultError, Err: err}
	}
	return protocol.StatusRegister1(buf[0]), nil
}

func (c *Controller) writeEnable() error {
	if err := c.bus.Exchange(protocol.CmdWriteEnable, nil, nil); err != nil {
		return &OpError{Op: "write enable", Result: protocol.ResultError, Err: err}
	}
	return nil
}

func (c *Controller) checkRange(offset uint32, length int) error {
	if uint64(offset)+uint64(length) > uint64(c.config.Size) {
		return &RangeError{Offset: offset, Length: length, Size: c.config.Size}
	}
	return nil
}

func (c *Controller) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (c *Controller) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

func (c *Controller) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
