package image

import "sort"

// Segment is a contiguous run of bytes at an absolute address.
type Segment struct {
	Address uint32
	Data    []byte
}

// End returns the first address past the segment.
func (s Segment) End() uint32 {
	return s.Address + uint32(len(s.Data))
}

// Image is firmware laid out in memory. After Normalize the segments
// are sorted by address, disjoint and maximal.
type Image struct {
	// Family is the UF2 family identifier the image was built for,
	// 0 when unknown.
	Family uint32

	Segments []Segment
}

// Add appends a copy of p as a segment at addr. Empty data is ignored.
func (img *Image) Add(addr uint32, p []byte) {
	if len(p) == 0 {
		return
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	img.Segments = append(img.Segments, Segment{Address: addr, Data: cp})
}

// TotalBytes returns the payload size summed over all segments.
func (img *Image) TotalBytes() int {
	total := 0
	for _, seg := range img.Segments {
		total += len(seg.Data)
	}
	return total
}

// Span returns the lowest address and one past the highest address the
// image covers. Both are 0 for an empty image.
func (img *Image) Span() (start, end uint32) {
	for i, seg := range img.Segments {
		if i == 0 || seg.Address < start {
			start = seg.Address
		}
		if seg.End() > end {
			end = seg.End()
		}
	}
	return start, end
}

// Normalize sorts the segments by address and merges neighbours that
// touch. Overlapping segments are rejected; a container that writes one
// address twice is corrupt.
func (img *Image) Normalize() error {
	if len(img.Segments) <= 1 {
		return nil
	}

	sort.Slice(img.Segments, func(i, j int) bool {
		return img.Segments[i].Address < img.Segments[j].Address
	})

	merged := img.Segments[:1]
	for _, seg := range img.Segments[1:] {
		last := &merged[len(merged)-1]
		lastEnd := uint64(last.Address) + uint64(len(last.Data))
		switch {
		case uint64(seg.Address) < lastEnd:
			return &OverlapError{Address: seg.Address}
		case uint64(seg.Address) == lastEnd:
			last.Data = append(last.Data, seg.Data...)
		default:
			merged = append(merged, seg)
		}
	}
	img.Segments = merged
	return nil
}
