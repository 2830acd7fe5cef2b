/*
Package palette implements the fixed 256 color palette used by tile archives.

On disk the palette is 768 bytes with no header; three bytes per entry, red,
green then blue, each holding a 6-bit value. Entry 255 is reserved as the
transparent background color.
*/
package palette

import (
	"errors"
	"image/color"
	"io"
)

const (
	// NumColors is the number of entries in a palette
	NumColors = 256

	// Size is the size in bytes of a raw palette file
	Size = NumColors * 3

	// Transparent is the palette index reserved for transparent pixels
	Transparent = 255
)

// ErrTruncated is returned when fewer than Size bytes are available.
var ErrTruncated = errors.New("palette: truncated palette data")

// Fallback is the color displayed for the transparent index when the stored
// entry is anything else.
var Fallback = color.NRGBA{0x00, 0xf7, 0xf7, 0xff}

// Entry is a raw palette entry with 6-bit channels.
type Entry struct {
	R, G, B uint8
}

// RGB returns the channels scaled to the 0-255 range.
func (e Entry) RGB() (r, g, b uint8) {
	return e.R << 2, e.G << 2, e.B << 2
}

// Palette is a loaded 256 entry palette.
type Palette struct {
	entries [NumColors]Entry
	display [NumColors]color.NRGBA
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = ErrTruncated
	}
	return err
}

// Load reads a raw palette from r.
func Load(r io.Reader) (*Palette, error) {
	var b [Size]byte
	if err := readFull(r, b[:]); err != nil {
		return nil, err
	}
	return FromBytes(b[:])
}

// FromBytes builds a palette from the first Size bytes of b.
func FromBytes(b []byte) (*Palette, error) {
	if len(b) < Size {
		return nil, ErrTruncated
	}

	p := new(Palette)
	for i := range p.entries {
		// Only the low 6 bits are meaningful
		e := Entry{b[i*3] & 0x3f, b[i*3+1] & 0x3f, b[i*3+2] & 0x3f}
		p.entries[i] = e

		r, g, b := e.RGB()
		p.display[i] = color.NRGBA{r, g, b, 0xff}
	}

	// Six-bit entries scaled by 4 can never produce 0xf7, so the transparent
	// index always renders as the fallback color
	p.display[Transparent] = Fallback

	return p, nil
}

// Entry returns the raw entry at index i.
func (p *Palette) Entry(i uint8) Entry {
	return p.entries[i]
}

// DisplayColor returns the 8-bit per channel color for index i.
func (p *Palette) DisplayColor(i uint8) (r, g, b uint8) {
	c := p.display[i]
	return c.R, c.G, c.B
}

// Display returns a color.Palette suitable for building paletted images. The
// transparent index keeps its marker color but has zero alpha.
func (p *Palette) Display() color.Palette {
	cp := make(color.Palette, NumColors)
	for i, c := range p.display {
		cp[i] = c
	}
	c := p.display[Transparent]
	c.A = 0
	cp[Transparent] = c
	return cp
}

// Opaque returns the display colors of every index except the transparent
// one, for use when matching source colors against the palette.
func (p *Palette) Opaque() color.Palette {
	cp := make(color.Palette, Transparent)
	for i := range cp {
		cp[i] = p.display[i]
	}
	return cp
}

// MarshalBinary returns the raw 768 byte form of the palette.
func (p *Palette) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, Size)
	for _, e := range p.entries {
		b = append(b, e.R, e.G, e.B)
	}
	return b, nil
}

// UnmarshalBinary replaces the palette with the raw form in b.
func (p *Palette) UnmarshalBinary(b []byte) error {
	n, err := FromBytes(b)
	if err != nil {
		return err
	}
	*p = *n
	return nil
}
