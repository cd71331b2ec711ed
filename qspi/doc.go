// Package qspi drives a serial NOR flash device through the command
// sequences its protocol requires.
//
// The central type is Controller, which wraps any transport implementing
// the Bus interface and turns single-shot operations into correctly
// ordered command sequences. Every mutating operation follows the same
// shape:
//
//  1. Poll status register 1 until the device reports ready, bounded by
//     the ready budget.
//  2. Issue Write Enable. The device clears the write enable latch after
//     every program, erase or write status command, so each mutation
//     needs its own.
//  3. Issue the operation itself.
//  4. Poll status register 1 until the device reports ready again,
//     bounded by the budget for the command class. Erases run much
//     longer than programs and get larger budgets.
//
// Operations are not cancelable. Once a program or erase command has
// been issued the device carries it out regardless of what the host
// does, so the controller always waits the busy phase out rather than
// abandoning it. Budgets bound how long that wait may take; a device
// still busy past its budget is reported as timed out.
//
// Multi-page programs and multi-block erases are decomposed into
// per-page and per-block commands, each individually sequenced, so a
// failure report names the exact page or block that failed.
//
// Controller is not safe for concurrent use. Callers that share one
// device across goroutines must serialize access themselves.
//
// Basic usage:
//
//	ctrl := qspi.New(bus, qspi.WithSize(2*1024*1024))
//	if err := ctrl.Init(); err != nil {
//		log.Fatal(err)
//	}
//	if err := ctrl.EraseSector(0x000000); err != nil {
//		log.Fatal(err)
//	}
//	if err := ctrl.Program(data, 0x000000); err != nil {
//		log.Fatal(err)
//	}
package qspi
