package main

import (
	goflag "flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/moffa90/go-norflash/qspi"
	"github.com/moffa90/go-norflash/spibus"
)

var (
	spiPort   string
	frequency string
	chipSize  uint32
	fastRead  bool
)

var rootCmd = &cobra.Command{
	Use:   "norflash",
	Short: "Program and inspect W25Q serial NOR flash over SPI",
	Long: `norflash drives W25Q series serial NOR flash chips through a host SPI
port: probe the JEDEC ID, read memory, erase, and write firmware images
in UF2, Intel HEX or raw binary format.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&spiPort, "spi", "", "SPI port name; empty selects the first available port")
	rootCmd.PersistentFlags().StringVar(&frequency, "freq", "8MHz", "SPI clock, e.g. 8MHz or 500kHz")
	rootCmd.PersistentFlags().Uint32Var(&chipSize, "size", 0, "flash capacity in bytes; 0 probes the JEDEC ID")
	rootCmd.PersistentFlags().BoolVar(&fastRead, "fast-read", false, "read with the Fast Read opcode")

	// glog registers -v, -logtostderr and friends on the standard flag
	// set; surface them on every subcommand.
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)
}

// glogLogger bridges glog to the library Logger interface.
type glogLogger struct{}

func (glogLogger) Debug(msg string, keysAndValues ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, formatKV(msg, keysAndValues))
	}
}

func (glogLogger) Info(msg string, keysAndValues ...interface{}) {
	glog.InfoDepth(1, formatKV(msg, keysAndValues))
}

func (glogLogger) Error(msg string, keysAndValues ...interface{}) {
	glog.ErrorDepth(1, formatKV(msg, keysAndValues))
}

func formatKV(msg string, keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return b.String()
}

// parseAddr accepts decimal and 0x-prefixed hexadecimal addresses.
func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}

func openBus() (*spibus.Bus, error) {
	var freq physic.Frequency
	if err := freq.Set(frequency); err != nil {
		return nil, fmt.Errorf("invalid --freq %q: %w", frequency, err)
	}
	return spibus.Open(spiPort,
		spibus.WithFrequency(freq),
		spibus.WithFastRead(fastRead),
	)
}

// openController opens the SPI port and brings the device up. When no
// --size is given the capacity is taken from the JEDEC ID.
func openController() (*qspi.Controller, *spibus.Bus, error) {
	bus, err := openBus()
	if err != nil {
		return nil, nil, err
	}

	size := chipSize
	if size == 0 {
		if size, err = probeSize(bus); err != nil {
			bus.Close()
			return nil, nil, err
		}
	}

	ctrl := qspi.New(bus, qspi.WithSize(size), qspi.WithLogger(glogLogger{}))
	if err := ctrl.Init(); err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("device init: %w", err)
	}
	return ctrl, bus, nil
}

// probeSize wakes the device and derives the capacity from its JEDEC
// ID.
func probeSize(bus qspi.Bus) (uint32, error) {
	probe := qspi.New(bus, qspi.WithLogger(glogLogger{}))
	if err := probe.Init(); err != nil {
		return 0, fmt.Errorf("device init: %w", err)
	}

	id, err := probe.JEDECID()
	if err != nil {
		return 0, fmt.Errorf("jedec probe: %w", err)
	}
	if id.Size() == 0 {
		return 0, fmt.Errorf("unknown capacity for device %s, pass --size", id)
	}

	glog.V(1).Infof("probed %s, %d bytes", id, id.Size())
	return id.Size(), nil
}
