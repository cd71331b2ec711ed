package spibus

import (
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/moffa90/go-norflash/protocol"
	"github.com/moffa90/go-norflash/qspi"
)

// Defaults for Open and New.
const (
	// DefaultFrequency is a conservative clock every W25Q part and
	// host adapter handles.
	DefaultFrequency = 8 * physic.MegaHertz

	// DefaultMaxTransfer bounds a single SPI transaction, matching the
	// common Linux spidev buffer size. Larger reads are split.
	DefaultMaxTransfer = 4096
)

// Command header sizes on the wire.
const (
	readHeader     = 1 + protocol.AddressBytes
	fastReadHeader = readHeader + 1
)

// Config holds configuration for the Bus.
type Config struct {
	// Frequency is the SPI clock.
	Frequency physic.Frequency

	// Mode is the SPI mode. The W25Q series supports Mode0 and Mode3.
	Mode spi.Mode

	// CS, when set, is toggled low around every transaction. Leave nil
	// for ports that drive chip select themselves; set it for wirings
	// where a spare GPIO drives the flash select line.
	CS gpio.PinIO

	// FastRead selects the Fast Read opcode with its dummy byte
	// instead of Read Data, needed for clocks above roughly 50 MHz.
	FastRead bool

	// MaxTransfer bounds the byte length of one SPI transaction.
	MaxTransfer int
}

func defaultConfig() Config {
	return Config{
		Frequency:   DefaultFrequency,
		Mode:        spi.Mode0,
		MaxTransfer: DefaultMaxTransfer,
	}
}

// Option configures a Bus.
type Option func(*Config)

// WithFrequency sets the SPI clock for Open. Values that are not
// positive are ignored. Has no effect on New, which wraps an already
// connected conn.
func WithFrequency(f physic.Frequency) Option {
	return func(c *Config) {
		if f > 0 {
			c.Frequency = f
		}
	}
}

// WithMode sets the SPI mode for Open.
func WithMode(mode spi.Mode) Option {
	return func(c *Config) {
		c.Mode = mode
	}
}

// WithCS sets an explicit chip select pin toggled around every
// transaction.
func WithCS(pin gpio.PinIO) Option {
	return func(c *Config) {
		c.CS = pin
	}
}

// WithFastRead selects the Fast Read opcode for read transfers.
func WithFastRead(enabled bool) Option {
	return func(c *Config) {
		c.FastRead = enabled
	}
}

// WithMaxTransfer bounds the byte length of one SPI transaction.
// Values too small to fit a command header are ignored.
func WithMaxTransfer(size int) Option {
	return func(c *Config) {
		if size > fastReadHeader {
			c.MaxTransfer = size
		}
	}
}

// Bus moves command frames over a periph.io SPI connection. It
// implements qspi.Bus; sequencing (write enable, busy polling) stays
// with the qspi.Controller.
type Bus struct {
	conn   spi.Conn
	port   spi.PortCloser
	config Config
}

var _ qspi.Bus = (*Bus)(nil)

var hostInitialized atomic.Bool

// New wraps an already connected SPI conn.
// Panics if conn is nil.
func New(conn spi.Conn, opts ...Option) *Bus {
	if conn == nil {
		panic("conn cannot be nil")
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Bus{
		conn:   conn,
		config: config,
	}
}

// Open opens the named SPI port and connects at the configured clock
// and mode. An empty name selects the first available port. The caller
// owns the returned Bus and must Close it.
func Open(portName string, opts ...Option) (*Bus, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("host init: %w", err)
		}
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", portName, err)
	}

	conn, err := port.Connect(config.Frequency, config.Mode, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect %q: %w", portName, err)
	}

	return &Bus{
		conn:   conn,
		port:   port,
		config: config,
	}, nil
}

// Close releases the underlying port. Buses created with New do not
// own a port and Close is a no-op.
func (b *Bus) Close() error {
	if b.port == nil {
		return nil
	}
	return b.port.Close()
}

// Exchange implements qspi.Bus.
func (b *Bus) Exchange(opcode byte, tx, rx []byte) error {
	frame, err := protocol.BuildCommandFrame(opcode, tx, len(rx))
	if err != nil {
		return err
	}
	if err := b.tx(frame); err != nil {
		return err
	}
	copy(rx, frame[1+len(tx):])
	return nil
}

// Read implements qspi.Bus. Transfers larger than the transaction
// limit are split into consecutive addressed reads.
func (b *Bus) Read(p []byte, offset uint32) error {
	header := readHeader
	if b.config.FastRead {
		header = fastReadHeader
	}
	maxData := b.config.MaxTransfer - header

	for len(p) > 0 {
		n := len(p)
		if n > maxData {
			n = maxData
		}

		var frame []byte
		var err error
		if b.config.FastRead {
			frame, err = protocol.BuildFastReadCmd(offset, n)
		} else {
			frame, err = protocol.BuildReadCmd(offset, n)
		}
		if err != nil {
			return err
		}
		if err := b.tx(frame); err != nil {
			return err
		}
		if b.config.FastRead {
			copy(p, protocol.FastReadResponse(frame))
		} else {
			copy(p, protocol.ReadResponse(frame))
		}

		offset += uint32(n)
		p = p[n:]
	}
	return nil
}

// Program implements qspi.Bus. p must stay within one page.
func (b *Bus) Program(p []byte, offset uint32) error {
	frame, err := protocol.BuildPageProgramCmd(offset, p)
	if err != nil {
		return err
	}
	return b.tx(frame)
}

// Erase implements qspi.Bus.
func (b *Bus) Erase(kind qspi.EraseKind, offset uint32) error {
	var frame []byte
	if kind == qspi.EraseChip {
		frame = protocol.BuildChipEraseCmd()
	} else {
		var err error
		frame, err = protocol.BuildEraseCmd(kind.Opcode(), offset)
		if err != nil {
			return err
		}
	}
	return b.tx(frame)
}

// tx clocks buf out and in on a single full-duplex transaction,
// asserting the explicit chip select around it when one is configured.
func (b *Bus) tx(buf []byte) (err error) {
	if b.config.CS != nil {
		if err = b.config.CS.Out(gpio.Low); err != nil {
			return fmt.Errorf("chip select: %w", err)
		}
		defer func() {
			if csErr := b.config.CS.Out(gpio.High); csErr != nil && err == nil {
				err = fmt.Errorf("chip select: %w", csErr)
			}
		}()
	}
	err = b.conn.Tx(buf, buf)
	return
}
