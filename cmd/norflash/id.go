package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Probe the JEDEC ID and device status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, bus, err := openController()
		if err != nil {
			return err
		}
		defer bus.Close()

		id, err := ctrl.JEDECID()
		if err != nil {
			return err
		}
		sr1, sr2, err := ctrl.Status()
		if err != nil {
			return err
		}

		fmt.Printf("device:   %s\n", id)
		if id.Size() > 0 {
			fmt.Printf("capacity: %d bytes\n", id.Size())
		}
		fmt.Printf("status:   %s / %s\n", sr1, sr2)
		fmt.Printf("quad:     %v\n", ctrl.QuadEnabled())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(idCmd)
}
