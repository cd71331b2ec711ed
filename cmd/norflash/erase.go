package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-norflash/protocol"
	"github.com/moffa90/go-norflash/qspi"
)

var (
	eraseAddr  string
	eraseLen   uint32
	eraseWhole bool
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase a flash range or the whole chip",
	Long: `Erase the range [--addr, --addr+--length) using the largest erase
commands that fit, or the whole chip with --chip. Address and length
must be multiples of the 4 KB sector size.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if eraseWhole && eraseLen > 0 {
			return fmt.Errorf("--chip and --length are mutually exclusive")
		}
		if !eraseWhole && eraseLen == 0 {
			return fmt.Errorf("pass --length or --chip")
		}

		addr, err := parseAddr(eraseAddr)
		if err != nil {
			return err
		}

		ctrl, bus, err := openController()
		if err != nil {
			return err
		}
		defer bus.Close()

		if eraseWhole {
			fmt.Println("erasing chip, this can take a minute")
			if err := ctrl.EraseChip(); err != nil {
				return err
			}
			fmt.Println("done")
			return nil
		}

		if err := eraseRange(ctrl, addr, eraseLen); err != nil {
			return err
		}
		fmt.Printf("erased %d bytes at 0x%06X\n", eraseLen, addr)
		return nil
	},
}

// eraseRange covers [addr, addr+length) with the largest aligned erase
// commands available.
func eraseRange(ctrl *qspi.Controller, addr, length uint32) error {
	if addr%protocol.SectorSize != 0 || length%protocol.SectorSize != 0 {
		return fmt.Errorf("address and length must be multiples of %d", protocol.SectorSize)
	}

	for length > 0 {
		switch {
		case addr%protocol.Block64KSize == 0 && length >= protocol.Block64KSize:
			if err := ctrl.EraseBlock64K(addr); err != nil {
				return err
			}
			addr += protocol.Block64KSize
			length -= protocol.Block64KSize
		case addr%protocol.Block32KSize == 0 && length >= protocol.Block32KSize:
			if err := ctrl.EraseBlock32K(addr); err != nil {
				return err
			}
			addr += protocol.Block32KSize
			length -= protocol.Block32KSize
		default:
			if err := ctrl.EraseSector(addr); err != nil {
				return err
			}
			addr += protocol.SectorSize
			length -= protocol.SectorSize
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(eraseCmd)
	eraseCmd.Flags().StringVarP(&eraseAddr, "addr", "a", "0", "start address")
	eraseCmd.Flags().Uint32VarP(&eraseLen, "length", "n", 0, "number of bytes to erase")
	eraseCmd.Flags().BoolVar(&eraseWhole, "chip", false, "erase the whole chip")
}
