// Package flash implements the write path of a bootloader flashing a
// firmware image into internal and external flash.
//
// Flash memory cannot be written the way RAM can. Programming only
// clears bits, erasing sets a whole page or sector back to 0xFF, and
// both operations wear the part. The types in this package exist to
// bridge that gap for a caller that produces small writes at arbitrary
// addresses:
//
//   - Router decides, per address, whether a write belongs to the
//     memory-mapped internal flash or to an external serial flash
//     window, and translates window addresses to device offsets.
//   - PageCache staples sub-page writes together in a single page
//     buffer. The buffer is read back from the device when a new page
//     is entered, so untouched bytes survive, and it is flushed when
//     the writer moves to another page or finishes. A flush compares
//     the staged page against the device first and skips identical
//     pages entirely, sparing an erase and a program per unchanged
//     page.
//   - EraseCache remembers the last sector it erased so that
//     consecutive writes into one sector trigger exactly one erase.
//   - Session ties the three together and is the only type most
//     callers need.
//
// A typical update session:
//
//	session := flash.NewSession(device,
//		flash.WithInternalRegion(0, 0x100000),
//		flash.WithExternal(ctrl, 0x100000, 0x100000),
//	)
//	session.Begin()
//	for _, chunk := range chunks {
//		if err := session.Write(chunk.Data, chunk.Addr, true); err != nil {
//			return err
//		}
//	}
//	if err := session.Flush(true); err != nil {
//		return err
//	}
//
// Callers must call Flush when they are done writing; data still staged
// in the page buffer is not on the device until then. Reads performed
// through the session return device contents and do not see staged
// data, so read-back verification belongs after the final Flush.
//
// None of the types are safe for concurrent use.
package flash
