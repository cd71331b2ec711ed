// Package spibus implements the qspi.Bus transport over a host SPI
// port using periph.io.
//
// Open a named port (for example "/dev/spidev0.0" on Linux, or an
// FT232H exposed through the ftdi driver) and hand the bus to a
// qspi.Controller:
//
//	bus, err := spibus.Open("/dev/spidev0.0")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer bus.Close()
//
//	ctrl := qspi.New(bus)
//
// Transfers run full duplex on a single lane. Quad mode negotiation
// still works over this bus because the status register commands it
// uses are single-lane; only the data phase of quad reads and writes
// needs extra lanes, and the controller does not issue those opcodes
// here.
package spibus
