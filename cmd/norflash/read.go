package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	readAddr string
	readLen  uint32
	readOut  string
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read flash contents",
	Long: `Read flash contents starting at --addr. With --out the bytes are
written to a file ("-" for stdout); without it a hex dump is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddr(readAddr)
		if err != nil {
			return err
		}
		if readLen == 0 {
			return fmt.Errorf("--length must be positive")
		}

		ctrl, bus, err := openController()
		if err != nil {
			return err
		}
		defer bus.Close()

		buf := make([]byte, readLen)
		if err := ctrl.Read(buf, addr); err != nil {
			return err
		}

		switch readOut {
		case "":
			hexDump(buf, addr)
		case "-":
			_, err = os.Stdout.Write(buf)
		default:
			err = os.WriteFile(readOut, buf, 0644)
		}
		return err
	},
}

func hexDump(p []byte, addr uint32) {
	for i := 0; i < len(p); i += 16 {
		end := i + 16
		if end > len(p) {
			end = len(p)
		}
		fmt.Printf("%08X  % X\n", addr+uint32(i), p[i:end])
	}
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVarP(&readAddr, "addr", "a", "0", "start address")
	readCmd.Flags().Uint32VarP(&readLen, "length", "n", 256, "number of bytes to read")
	readCmd.Flags().StringVarP(&readOut, "out", "o", "", "output file, - for raw stdout")
}
