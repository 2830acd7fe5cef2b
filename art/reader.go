package art

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/bodgit/artpng/anim"
)

// copyN reads exactly n bytes from r. The buffer only grows as data arrives
// so a corrupt header cannot force a huge allocation.
func copyN(r io.Reader, n int64) ([]byte, error) {
	b := new(bytes.Buffer)
	if _, err := io.CopyN(b, r, n); err != nil {
		if err == io.EOF {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return b.Bytes(), nil
}

type decoder struct {
	r io.Reader
	a *Archive
}

func (d *decoder) readHeader() (int, error) {
	var h header
	if err := binary.Read(d.r, binary.LittleEndian, &h); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, ErrTruncated
		}
		return 0, err
	}

	if h.Version != Version {
		return 0, ErrUnsupportedVersion
	}

	// The stored number of tiles is not trusted, the count wraps at 32 bits
	count := h.Last - h.First + 1
	if h.Last < h.First && count != 0 {
		return 0, ErrBadRange
	}

	d.a = New(h.First)

	return int(count), nil
}

func (d *decoder) readIndex(count int) error {
	b, err := copyN(d.r, int64(count)*indexEntrySize)
	if err != nil {
		return err
	}
	r := bytes.NewReader(b)

	widths := make([]uint16, count)
	heights := make([]uint16, count)
	words := make([]uint32, count)

	for _, v := range []interface{}{widths, heights, words} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	d.a.Tiles = make([]Tile, count)
	for i := range d.a.Tiles {
		d.a.Tiles[i] = Tile{
			Width:  widths[i],
			Height: heights[i],
			Anim:   anim.Word(words[i]),
		}
	}
	d.a.computeOffsets()

	return nil
}

func (d *decoder) readData() error {
	var size int64
	for _, t := range d.a.Tiles {
		size += int64(t.Size())
	}

	b, err := copyN(d.r, size)
	if err != nil {
		return err
	}
	d.a.Data = b

	return nil
}

func (d *decoder) decode(r io.Reader, indexOnly bool) error {
	d.r = r

	count, err := d.readHeader()
	if err != nil {
		return err
	}

	if err := d.readIndex(count); err != nil {
		return err
	}

	if indexOnly {
		return nil
	}

	return d.readData()
}

// Decode reads a complete archive from r, any data after the last tile is
// ignored.
func Decode(r io.Reader) (*Archive, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.a, nil
}

// DecodeIndex reads only the header and tile index from r, the returned
// archive has no pixel data.
func DecodeIndex(r io.Reader) (*Archive, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return nil, err
	}
	return d.a, nil
}

// UnmarshalBinary decodes the archive from binary form.
func (a *Archive) UnmarshalBinary(b []byte) error {
	n, err := Decode(bytes.NewReader(b))
	if err != nil {
		return err
	}
	*a = *n
	return nil
}
