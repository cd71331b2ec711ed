// norflash programs and inspects W25Q series serial NOR flash chips
// through a host SPI port.
package main

import (
	goflag "flag"
	"os"

	"github.com/golang/glog"
)

func main() {
	defer glog.Flush()

	// cobra owns argument parsing. Mark the standard flag set parsed so
	// glog does not complain about logging before flag.Parse.
	_ = goflag.CommandLine.Parse(nil)

	if err := rootCmd.Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
