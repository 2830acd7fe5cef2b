/*
Package tile converts between the pixel layout used inside a tile archive and
conventional paletted images.

Archive pixels are stored column by column, starting with the leftmost column.
Within each column the rows are stored bottom to top, so the byte for pixel
(x, y) of a tile h pixels high is found at offset x*h + (h-1-y).
*/
package tile

import (
	"errors"
	"image"
	"image/color"

	"github.com/bodgit/artpng/palette"
)

// MaxSize is the largest width or height of a tile.
const MaxSize = 1<<16 - 1

var (
	errTooLarge  = errors.New("tile: image is too large")
	errPixLength = errors.New("tile: pixel data does not match size")
)

// ToRaster converts archive order pixels into row-major order with the top row
// first.
func ToRaster(width, height int, pix []byte) []byte {
	raster := make([]byte, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			raster[y*width+x] = pix[x*height+height-1-y]
		}
	}
	return raster
}

// FromRaster converts row-major pixels with the top row first into archive
// order. It is the inverse of ToRaster.
func FromRaster(width, height int, raster []byte) []byte {
	pix := make([]byte, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			pix[x*height+height-1-y] = raster[y*width+x]
		}
	}
	return pix
}

// Decode converts the archive order pixels of a tile into an image using the
// display palette p. Empty tiles have no image and nil is returned.
func Decode(width, height int, pix []byte, p color.Palette) (*image.Paletted, error) {
	if width == 0 || height == 0 {
		return nil, nil
	}
	if len(pix) != width*height {
		return nil, errPixLength
	}

	m := image.NewPaletted(image.Rect(0, 0, width, height), p)
	copy(m.Pix, ToRaster(width, height, pix))

	return m, nil
}

// Encode converts m into archive order pixels. An already paletted image has
// its color indices used as they are, anything else is matched against pal by
// q with fully transparent pixels assigned the transparent index.
func Encode(m image.Image, pal *palette.Palette, q Quantizer) (width, height int, pix []byte, err error) {
	b := m.Bounds()
	if b.Dx() > MaxSize || b.Dy() > MaxSize {
		return 0, 0, nil, errTooLarge
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		pm = q.Quantize(m, pal)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pm.Palette)
		for y := 0; y < b.Dy(); y++ {
			copy(dup.Pix[y*dup.Stride:], pm.Pix[pm.PixOffset(b.Min.X, b.Min.Y+y):pm.PixOffset(b.Max.X, b.Min.Y+y)])
		}
		pm = dup
	}

	raster := make([]byte, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		raster = append(raster, pm.Pix[y*pm.Stride:y*pm.Stride+b.Dx()]...)
	}

	return b.Dx(), b.Dy(), FromRaster(b.Dx(), b.Dy(), raster), nil
}
