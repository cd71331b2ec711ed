// Package image loads firmware images and programs them into flash.
//
// An Image is firmware laid out in memory: disjoint segments of bytes
// at absolute addresses. Images come from one of three container
// formats:
//
//   - UF2, the block-based format used by drag-and-drop bootloaders
//     (ParseUF2, WriteUF2)
//   - Intel HEX (ParseHex, DumpHex)
//   - raw binary at a caller-chosen base address
//
// Load picks the format from the file extension.
//
// Programmer drives a parsed image through a write Target such as
// *flash.Session: it opens a session, streams the segments in chunks,
// flushes, and verifies by reading back. Progress is reported through
// an optional callback, mirroring how long a flash run actually takes
// rather than just counting bytes.
//
//	img, err := image.Load("firmware.uf2", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	prog := image.New(session, image.WithProgressCallback(onProgress))
//	if err := prog.Program(ctx, img); err != nil {
//		log.Fatal(err)
//	}
package image
