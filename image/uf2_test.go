package image

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBlock serializes a single UF2 block for hand-crafted streams.
func buildBlock(t *testing.T, block uf2Block) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &block))
	require.Equal(t, UF2BlockSize, buf.Len())
	return buf.Bytes()
}

func flashBlock(t *testing.T, addr uint32, payload []byte) uf2Block {
	t.Helper()
	require.LessOrEqual(t, len(payload), uf2MaxPayload)
	block := uf2Block{
		Magic0:   uf2MagicStart0,
		Magic1:   uf2MagicStart1,
		Addr:     addr,
		Len:      uint32(len(payload)),
		Total:    1,
		MagicEnd: uf2MagicEnd,
	}
	copy(block.Data[:], payload)
	return block
}

func TestUF2RoundTrip(t *testing.T) {
	img := &Image{Family: Families["nrf52840"]}
	payload := make([]byte, 600)
	for i := range payload {
		payload[i] = byte(i)
	}
	img.Add(0x26000, payload)
	img.Add(0x30000, []byte{0xAA, 0xBB})

	var buf bytes.Buffer
	require.NoError(t, WriteUF2(&buf, img))

	// 600 bytes split into 3 blocks plus 1 for the short segment.
	assert.Equal(t, 4*UF2BlockSize, buf.Len())

	parsed, err := ParseUF2(&buf)
	require.NoError(t, err)

	assert.Equal(t, Families["nrf52840"], parsed.Family)
	require.Len(t, parsed.Segments, 2)
	assert.Equal(t, uint32(0x26000), parsed.Segments[0].Address)
	assert.Equal(t, payload, parsed.Segments[0].Data)
	assert.Equal(t, uint32(0x30000), parsed.Segments[1].Address)
	assert.Equal(t, []byte{0xAA, 0xBB}, parsed.Segments[1].Data)
}

func TestWriteUF2SequenceNumbers(t *testing.T) {
	img := &Image{}
	img.Add(0, make([]byte, 3*UF2PayloadSize))

	var buf bytes.Buffer
	require.NoError(t, WriteUF2(&buf, img))

	raw := buf.Bytes()
	for i := 0; i < 3; i++ {
		block := raw[i*UF2BlockSize:]
		seq := binary.LittleEndian.Uint32(block[20:24])
		total := binary.LittleEndian.Uint32(block[24:28])
		assert.Equal(t, uint32(i), seq)
		assert.Equal(t, uint32(3), total)
	}
}

func TestWriteUF2EmptyImage(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, WriteUF2(&buf, &Image{}))
}

func TestParseUF2BadStartMagic(t *testing.T) {
	block := flashBlock(t, 0x1000, []byte{1, 2, 3})
	block.Magic0 = 0xDEADBEEF
	raw := buildBlock(t, block)

	_, err := ParseUF2(bytes.NewReader(raw))
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Reason, "start magic")
}

func TestParseUF2BadEndMagic(t *testing.T) {
	block := flashBlock(t, 0x1000, []byte{1, 2, 3})
	block.MagicEnd = 0
	raw := buildBlock(t, block)

	_, err := ParseUF2(bytes.NewReader(raw))
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Reason, "end magic")
}

func TestParseUF2Truncated(t *testing.T) {
	raw := buildBlock(t, flashBlock(t, 0x1000, []byte{1, 2, 3}))

	_, err := ParseUF2(bytes.NewReader(raw[:300]))
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Reason, "truncated")
}

func TestParseUF2PayloadLength(t *testing.T) {
	block := flashBlock(t, 0x1000, []byte{1})
	block.Len = 500
	raw := buildBlock(t, block)

	_, err := ParseUF2(bytes.NewReader(raw))
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Reason, "out of range")

	block.Len = 0
	_, err = ParseUF2(bytes.NewReader(buildBlock(t, block)))
	require.ErrorAs(t, err, &formatErr)
}

func TestParseUF2SkipsNonFlashBlocks(t *testing.T) {
	skipped := flashBlock(t, 0x9000, []byte{0xEE})
	skipped.Flags = UF2FlagNotMainFlash
	kept := flashBlock(t, 0x1000, []byte{1, 2, 3})

	raw := append(buildBlock(t, skipped), buildBlock(t, kept)...)

	img, err := ParseUF2(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, img.Segments, 1)
	assert.Equal(t, uint32(0x1000), img.Segments[0].Address)
}

func TestParseUF2FamilyConflict(t *testing.T) {
	first := flashBlock(t, 0x1000, []byte{1})
	first.Flags = UF2FlagFamilyIDPresent
	first.Family = Families["nrf52840"]
	second := flashBlock(t, 0x2000, []byte{2})
	second.Flags = UF2FlagFamilyIDPresent
	second.Family = Families["rp2040"]

	raw := append(buildBlock(t, first), buildBlock(t, second)...)

	_, err := ParseUF2(bytes.NewReader(raw))
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Reason, "family")
}

func TestParseUF2RejectsOverlappingBlocks(t *testing.T) {
	first := flashBlock(t, 0x1000, []byte{1, 2, 3, 4})
	second := flashBlock(t, 0x1002, []byte{5, 6})

	raw := append(buildBlock(t, first), buildBlock(t, second)...)

	_, err := ParseUF2(bytes.NewReader(raw))
	var overlapErr *OverlapError
	require.ErrorAs(t, err, &overlapErr)
	assert.Equal(t, uint32(0x1002), overlapErr.Address)
}

func TestParseUF2NoFlashData(t *testing.T) {
	_, err := ParseUF2(bytes.NewReader(nil))
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Reason, "no flash data")
}

func TestFamilyName(t *testing.T) {
	name, ok := FamilyName(0xADA52840)
	require.True(t, ok)
	assert.Equal(t, "nrf52840", name)

	_, ok = FamilyName(0x12345678)
	assert.False(t, ok)
}
