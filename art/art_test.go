package art

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"os"
	"testing"

	"github.com/bodgit/artpng/anim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArchive(t *testing.T) *Archive {
	a := New(256)
	require.Nil(t, a.Add(2, 3, []byte{1, 2, 3, 4, 5, 6}, 0x0301fe83))
	require.Nil(t, a.Add(0, 0, nil, 0))
	require.Nil(t, a.Add(0, 7, nil, 0x10000000))
	require.Nil(t, a.Add(1, 1, []byte{255}, 0))
	require.Nil(t, a.Add(4, 2, []byte{10, 11, 12, 13, 14, 15, 16, 17}, 0xffffffff))
	return a
}

func TestOffsets(t *testing.T) {
	a := testArchive(t)
	assert.Equal(t, uint32(260), a.Last())

	base := int64(16 + 5*8)
	assert.Equal(t, base, DataOffset(5))
	assert.Equal(t, base, a.Tiles[0].Offset)
	assert.Equal(t, base+6, a.Tiles[1].Offset)
	assert.Equal(t, base+6, a.Tiles[2].Offset)
	assert.Equal(t, base+6, a.Tiles[3].Offset)
	assert.Equal(t, base+7, a.Tiles[4].Offset)

	assert.True(t, a.Tiles[1].Empty())
	assert.True(t, a.Tiles[2].Empty())
	assert.Equal(t, []byte{255}, a.Pixels(3))
	assert.Equal(t, []byte{10, 11, 12, 13, 14, 15, 16, 17}, a.Pixels(4))
	assert.Empty(t, a.Pixels(2))

	assert.Equal(t, ErrPixelCount, a.Add(2, 2, []byte{1}, 0))
}

func TestMarshalBinary(t *testing.T) {
	a := testArchive(t)
	b, err := a.MarshalBinary()
	require.Nil(t, err)
	require.Len(t, b, 16+5*8+15)

	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(b[0:]))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(b[4:]))
	assert.Equal(t, uint32(256), binary.LittleEndian.Uint32(b[8:]))
	assert.Equal(t, uint32(260), binary.LittleEndian.Uint32(b[12:]))

	// Widths, then heights, then animation words
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 1, 0, 4, 0}, b[16:26])
	assert.Equal(t, []byte{3, 0, 0, 0, 7, 0, 1, 0, 2, 0}, b[26:36])
	assert.Equal(t, []byte{0x83, 0xfe, 0x01, 0x03}, b[36:40])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 255, 10}, b[56:64])

	var got Archive
	require.Nil(t, got.UnmarshalBinary(b))
	assert.Equal(t, *a, got)
}

func TestDecodeIgnoresStoredCount(t *testing.T) {
	b, err := testArchive(t).MarshalBinary()
	require.Nil(t, err)
	binary.LittleEndian.PutUint32(b[4:], 9999)

	a, err := Decode(bytes.NewReader(append(b, 0xaa, 0xbb)))
	require.Nil(t, err)
	assert.Len(t, a.Tiles, 5)
}

func TestDecodeErrors(t *testing.T) {
	b, err := testArchive(t).MarshalBinary()
	require.Nil(t, err)

	for _, n := range []int{0, 1, 15} {
		_, err = Decode(bytes.NewReader(b[:n]))
		assert.Equal(t, ErrTruncated, err, "length %d", n)
	}

	// Short index
	_, err = Decode(bytes.NewReader(b[:16+39]))
	assert.Equal(t, ErrTruncated, err)

	// Short pixel data
	_, err = Decode(bytes.NewReader(b[:len(b)-1]))
	assert.Equal(t, ErrTruncated, err)

	// The index alone is fine
	a, err := DecodeIndex(bytes.NewReader(b[:16+40]))
	require.Nil(t, err)
	assert.Len(t, a.Tiles, 5)
	assert.Nil(t, a.Data)

	// Version is checked before anything else is read
	v := make([]byte, 16)
	binary.LittleEndian.PutUint32(v[0:], 2)
	binary.LittleEndian.PutUint32(v[12:], 1000)
	_, err = Decode(bytes.NewReader(v))
	assert.Equal(t, ErrUnsupportedVersion, err)

	r := make([]byte, 16)
	binary.LittleEndian.PutUint32(r[0:], 1)
	binary.LittleEndian.PutUint32(r[8:], 10)
	binary.LittleEndian.PutUint32(r[12:], 5)
	_, err = Decode(bytes.NewReader(r))
	assert.Equal(t, ErrBadRange, err)
}

func TestEmptyArchive(t *testing.T) {
	a := New(512)
	b, err := a.MarshalBinary()
	require.Nil(t, err)
	require.Len(t, b, 16)

	got, err := Decode(bytes.NewReader(b))
	require.Nil(t, err)
	assert.Equal(t, uint32(512), got.First)
	assert.Empty(t, got.Tiles)
}

func tempFile(t *testing.T) *os.File {
	f, err := ioutil.TempFile("", "art")
	require.Nil(t, err)
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})
	return f
}

func TestEncode(t *testing.T) {
	a := testArchive(t)
	f := tempFile(t)

	require.Nil(t, Encode(f, a))

	b, err := ioutil.ReadFile(f.Name())
	require.Nil(t, err)

	want, err := a.MarshalBinary()
	require.Nil(t, err)
	assert.Equal(t, want, b)
}

func TestWriter(t *testing.T) {
	f := tempFile(t)

	w, err := NewWriter(f, 0, 4)
	require.Nil(t, err)
	require.Nil(t, w.WriteTile(1, 2, []byte{7, 8}))
	assert.Equal(t, ErrPixelCount, w.WriteTile(1, 2, []byte{7}))
	require.Nil(t, w.WriteTile(0, 0, nil))
	require.Nil(t, w.WriteTile(2, 1, []byte{9, 10}))
	assert.Equal(t, 3, w.Count())

	// Animation words arrive after the pixels
	words := w.Words()
	require.Len(t, words, 4)
	words[2] = anim.Fold(words[2], anim.Patch{Field: anim.Flags, Value: 3})
	w.SetWords(words)

	require.Nil(t, w.Close())
	assert.Equal(t, errClosed, w.WriteTile(0, 0, nil))

	_, err = f.Seek(0, 0)
	require.Nil(t, err)
	a, err := Decode(f)
	require.Nil(t, err)

	require.Len(t, a.Tiles, 4)
	assert.Equal(t, uint32(3), a.Last())
	assert.Equal(t, Tile{Width: 1, Height: 2, Offset: 48}, a.Tiles[0])
	assert.Equal(t, Tile{Offset: 50}, a.Tiles[1])
	assert.Equal(t, Tile{Width: 2, Height: 1, Anim: 0x30000000, Offset: 50}, a.Tiles[2])
	assert.Equal(t, Tile{Offset: 52}, a.Tiles[3])
	assert.Equal(t, []byte{7, 8, 9, 10}, a.Data)
}

func TestWriterTooManyTiles(t *testing.T) {
	f := tempFile(t)

	w, err := NewWriter(f, 0, 1)
	require.Nil(t, err)
	require.Nil(t, w.WriteTile(1, 1, []byte{0}))
	assert.Equal(t, errTooManyTiles, w.WriteTile(1, 1, []byte{0}))
	require.Nil(t, w.Close())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "TILES000.ART", Filename(0))
	assert.Equal(t, "TILES019.ART", Filename(19))
}
