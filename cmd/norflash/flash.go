package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-norflash/flash"
	"github.com/moffa90/go-norflash/image"
	"github.com/moffa90/go-norflash/protocol"
	"github.com/moffa90/go-norflash/qspi"
)

var (
	flashAddr     string
	flashBase     string
	flashNoVerify bool
)

var flashCmd = &cobra.Command{
	Use:   "flash <image.{uf2,hex,bin}>",
	Short: "Write a firmware image to the chip",
	Long: `Write a firmware image to the chip. UF2 and Intel HEX images carry
their own addresses; raw binaries are placed at --addr. Images built
for a memory-mapped window (an RP2040 UF2 starts at 0x10000000, say)
are rebased with --base so that window address lands at chip offset 0.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		binAddr, err := parseAddr(flashAddr)
		if err != nil {
			return err
		}
		base, err := parseAddr(flashBase)
		if err != nil {
			return err
		}

		img, err := image.Load(args[0], binAddr)
		if err != nil {
			return err
		}
		if err := img.Normalize(); err != nil {
			return err
		}
		if name, ok := image.FamilyName(img.Family); ok {
			fmt.Printf("image: %d bytes, family %s\n", img.TotalBytes(), name)
		} else {
			fmt.Printf("image: %d bytes\n", img.TotalBytes())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ctrl, bus, err := openController()
		if err != nil {
			return err
		}
		defer bus.Close()

		prog := image.New(newChipTarget(ctrl, base),
			image.WithVerify(!flashNoVerify),
			image.WithLogger(glogLogger{}),
			image.WithProgressCallback(printProgress),
		)

		start := time.Now()
		if err := prog.Program(ctx, img); err != nil {
			fmt.Fprintln(os.Stderr)
			return err
		}
		fmt.Fprintln(os.Stderr)
		fmt.Printf("flashed %d bytes in %s\n",
			img.TotalBytes(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// chipTarget adapts the controller to the image.Target interface. Image
// addresses are rebased to chip offsets and sectors are erased ahead of
// the first write that touches them.
type chipTarget struct {
	ctrl   *qspi.Controller
	erased *flash.EraseCache
	base   uint32
}

func newChipTarget(ctrl *qspi.Controller, base uint32) *chipTarget {
	return &chipTarget{
		ctrl:   ctrl,
		erased: flash.NewEraseCache(ctrl),
		base:   base,
	}
}

func (t *chipTarget) Begin() {
	t.erased.Reset()
}

func (t *chipTarget) Write(p []byte, addr uint32, needErase bool) error {
	offset, err := t.offset(addr)
	if err != nil {
		return err
	}
	if needErase {
		first := offset &^ uint32(protocol.SectorSize-1)
		last := (offset + uint32(len(p)) - 1) &^ uint32(protocol.SectorSize-1)
		for sector := first; sector <= last; sector += protocol.SectorSize {
			if err := t.erased.EnsureErased(sector); err != nil {
				return err
			}
		}
	}
	return t.ctrl.Program(p, offset)
}

func (t *chipTarget) Flush(needErase bool) error {
	return nil
}

func (t *chipTarget) Read(p []byte, addr uint32) error {
	offset, err := t.offset(addr)
	if err != nil {
		return err
	}
	return t.ctrl.Read(p, offset)
}

func (t *chipTarget) offset(addr uint32) (uint32, error) {
	if addr < t.base {
		return 0, fmt.Errorf("address 0x%08X below image base 0x%08X", addr, t.base)
	}
	return addr - t.base, nil
}

func printProgress(p image.Progress) {
	const width = 40
	filled := int(p.Percentage / 100 * width)
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)
	fmt.Fprintf(os.Stderr, "\r[%s] %5.1f%% %-10s", bar, p.Percentage, p.Phase)
}

func init() {
	rootCmd.AddCommand(flashCmd)
	flashCmd.Flags().StringVarP(&flashAddr, "addr", "a", "0", "chip address for raw binary images")
	flashCmd.Flags().StringVar(&flashBase, "base", "0", "image address mapped to chip offset 0")
	flashCmd.Flags().BoolVar(&flashNoVerify, "no-verify", false, "skip read-back verification")
}
