/*
Package art implements the tile archive container.

An archive starts with a 16 byte header of four little-endian 32-bit values;
the version, which is always 1, the number of tiles, and the numbers of the
first and last tile held in the archive. The stored number of tiles is ignored
when reading, it is always recomputed from the first and last tile numbers.

The header is followed by three arrays, one entry per tile; the 16-bit widths,
the 16-bit heights and finally the 32-bit animation words. The pixel data for
every tile follows with no padding, one palette index per byte. Each tile is
stored column by column, with the bottom row of each column first.

Tile offsets are not stored, they are derived from the sizes of all of the
preceding tiles.
*/
package art

import (
	"errors"
	"fmt"

	"github.com/bodgit/artpng/anim"
)

const (
	// Version is the only supported archive version
	Version = 1

	// TilesPerArchive is the number of tiles in each archive of a set
	TilesPerArchive = 256

	headerSize     = 16
	indexEntrySize = 2 + 2 + 4
)

var (
	// ErrTruncated is returned when the archive ends early
	ErrTruncated = errors.New("art: truncated archive")
	// ErrUnsupportedVersion is returned for any version other than 1
	ErrUnsupportedVersion = errors.New("art: unsupported version")
	// ErrBadRange is returned when the last tile number is before the first
	ErrBadRange = errors.New("art: last tile number before first")
	// ErrPixelCount is returned when the pixel data does not match the tile size
	ErrPixelCount = errors.New("art: pixel data does not match tile size")
)

// Filename returns the conventional filename for archive n.
func Filename(n int) string {
	return fmt.Sprintf("TILES%03d.ART", n)
}

type header struct {
	Version  uint32
	NumTiles uint32
	First    uint32
	Last     uint32
}

// DataOffset returns the offset of the first pixel byte in an archive holding
// count tiles.
func DataOffset(count int) int64 {
	return headerSize + int64(count)*indexEntrySize
}

// Tile describes a single tile in an archive.
type Tile struct {
	Width  uint16
	Height uint16
	Anim   anim.Word

	// Offset is the offset of the pixel data from the start of the archive
	Offset int64
}

// Size returns the number of pixel bytes for the tile.
func (t Tile) Size() int {
	return int(t.Width) * int(t.Height)
}

// Empty reports whether the tile has no pixels.
func (t Tile) Empty() bool {
	return t.Size() == 0
}

// Archive is a fully loaded tile archive.
type Archive struct {
	First uint32
	Tiles []Tile

	// Data holds the pixel data of every tile, starting at
	// DataOffset(len(Tiles)) in the archive
	Data []byte
}

// New returns an empty archive whose first tile is numbered first.
func New(first uint32) *Archive {
	return &Archive{
		First: first,
	}
}

// Last returns the number of the last tile. It is only meaningful for an
// archive holding at least one tile.
func (a *Archive) Last() uint32 {
	return a.First + uint32(len(a.Tiles)) - 1
}

// Add appends a tile with the given size, pixels and animation word. Pixels
// must already be in archive order.
func (a *Archive) Add(width, height uint16, pix []byte, w anim.Word) error {
	t := Tile{Width: width, Height: height, Anim: w}
	if len(pix) != t.Size() {
		return ErrPixelCount
	}
	a.Tiles = append(a.Tiles, t)
	a.Data = append(a.Data, pix...)
	a.computeOffsets()
	return nil
}

func (a *Archive) computeOffsets() {
	offset := DataOffset(len(a.Tiles))
	for i := range a.Tiles {
		a.Tiles[i].Offset = offset
		offset += int64(a.Tiles[i].Size())
	}
}

// Pixels returns the pixel data for tile i, in archive order.
func (a *Archive) Pixels(i int) []byte {
	start := a.Tiles[i].Offset - DataOffset(len(a.Tiles))
	return a.Data[start : start+int64(a.Tiles[i].Size())]
}

// Words returns a copy of the animation words of every tile.
func (a *Archive) Words() []anim.Word {
	words := make([]anim.Word, len(a.Tiles))
	for i, t := range a.Tiles {
		words[i] = t.Anim
	}
	return words
}

// SetWords replaces the animation words, words[i] belongs to tile i.
func (a *Archive) SetWords(words []anim.Word) {
	for i := range a.Tiles {
		if i < len(words) {
			a.Tiles[i].Anim = words[i]
		}
	}
}
