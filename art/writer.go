package art

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/bodgit/artpng/anim"
)

var (
	errTooManyTiles = errors.New("art: too many tiles")
	errClosed       = errors.New("art: writer is closed")
)

// Writer writes an archive in two passes. The header and a placeholder index
// are written first, then the pixel data of each tile as it is added, and
// finally the index is rewritten once every tile is known.
type Writer struct {
	w      io.WriteSeeker
	start  int64
	first  uint32
	tiles  []Tile
	n      int
	offset int64
	closed bool
}

func (h *header) write(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, h)
}

func writeIndex(w io.Writer, tiles []Tile) error {
	widths := make([]uint16, len(tiles))
	heights := make([]uint16, len(tiles))
	words := make([]uint32, len(tiles))
	for i, t := range tiles {
		widths[i], heights[i], words[i] = t.Width, t.Height, uint32(t.Anim)
	}

	for _, v := range []interface{}{widths, heights, words} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func newHeader(first uint32, count int) *header {
	return &header{
		Version:  Version,
		NumTiles: uint32(count),
		First:    first,
		Last:     first + uint32(count) - 1,
	}
}

// NewWriter returns a Writer for an archive of count tiles, the first of
// which is numbered first.
func NewWriter(w io.WriteSeeker, first uint32, count int) (*Writer, error) {
	start, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	aw := &Writer{
		w:      w,
		start:  start,
		first:  first,
		tiles:  make([]Tile, count),
		offset: DataOffset(count),
	}

	if err := newHeader(first, count).write(w); err != nil {
		return nil, err
	}

	// Placeholder index, rewritten by Close
	if err := writeIndex(w, aw.tiles); err != nil {
		return nil, err
	}

	return aw, nil
}

// WriteTile appends the next tile. Pixels must already be in archive order.
func (w *Writer) WriteTile(width, height uint16, pix []byte) error {
	if w.closed {
		return errClosed
	}
	if w.n >= len(w.tiles) {
		return errTooManyTiles
	}

	t := Tile{Width: width, Height: height, Offset: w.offset}
	if len(pix) != t.Size() {
		return ErrPixelCount
	}

	if _, err := w.w.Write(pix); err != nil {
		return err
	}

	w.tiles[w.n] = t
	w.n++
	w.offset += int64(t.Size())

	return nil
}

// Count returns the number of tiles written so far.
func (w *Writer) Count() int {
	return w.n
}

// Words returns a copy of the animation words of every tile.
func (w *Writer) Words() []anim.Word {
	words := make([]anim.Word, len(w.tiles))
	for i, t := range w.tiles {
		words[i] = t.Anim
	}
	return words
}

// SetWords replaces the animation words, words[i] belongs to tile i.
func (w *Writer) SetWords(words []anim.Word) {
	for i := range w.tiles {
		if i < len(words) {
			w.tiles[i].Anim = words[i]
		}
	}
}

// Close fills any tiles not written with empty tiles, rewrites the index and
// leaves the underlying writer positioned after the last pixel. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	for ; w.n < len(w.tiles); w.n++ {
		w.tiles[w.n].Offset = w.offset
	}

	if _, err := w.w.Seek(w.start+headerSize, io.SeekStart); err != nil {
		return err
	}

	if err := writeIndex(w.w, w.tiles); err != nil {
		return err
	}

	_, err := w.w.Seek(w.start+w.offset, io.SeekStart)
	return err
}

// Encode writes a to w.
func Encode(w io.WriteSeeker, a *Archive) error {
	aw, err := NewWriter(w, a.First, len(a.Tiles))
	if err != nil {
		return err
	}

	for i, t := range a.Tiles {
		if err := aw.WriteTile(t.Width, t.Height, a.Pixels(i)); err != nil {
			return err
		}
	}
	aw.SetWords(a.Words())

	return aw.Close()
}

// MarshalBinary encodes the archive into binary form and returns the result.
func (a *Archive) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)

	if err := newHeader(a.First, len(a.Tiles)).write(b); err != nil {
		return nil, err
	}

	if err := writeIndex(b, a.Tiles); err != nil {
		return nil, err
	}

	if _, err := b.Write(a.Data); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
