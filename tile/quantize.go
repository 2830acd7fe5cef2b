package tile

import (
	"image"
	"image/color"

	"github.com/bodgit/artpng/palette"
	"github.com/ericpauley/go-quantize/quantize"
)

// Quantizer maps a true color image onto the fixed palette.
type Quantizer interface {
	Quantize(m image.Image, pal *palette.Palette) *image.Paletted
}

// flatten composites c over bg, fully transparent pixels are reported.
func flatten(c color.Color, bg color.NRGBA) (color.NRGBA, bool) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	switch n.A {
	case 0:
		return color.NRGBA{}, false
	case 0xff:
		return n, true
	}
	a, ia := uint32(n.A), uint32(0xff-n.A)
	return color.NRGBA{
		uint8((uint32(n.R)*a + uint32(bg.R)*ia + 0x7f) / 0xff),
		uint8((uint32(n.G)*a + uint32(bg.G)*ia + 0x7f) / 0xff),
		uint8((uint32(n.B)*a + uint32(bg.B)*ia + 0x7f) / 0xff),
		0xff,
	}, true
}

// Copied from color.sqDiff
func sqDiff(x, y uint32) uint32 {
	d := x - y
	return (d * d) >> 2
}

// closest returns the index of the entry in p nearest to c, ties go to the
// lowest index.
func closest(p color.Palette, c color.Color) uint8 {
	r1, g1, b1, _ := c.RGBA()
	var best uint8
	bestSum := uint32(1<<32 - 1)
	for i, pc := range p {
		r2, g2, b2, _ := pc.RGBA()
		sum := sqDiff(r1, r2) + sqDiff(g1, g2) + sqDiff(b1, b2)
		if sum < bestSum {
			best, bestSum = uint8(i), sum
			if sum == 0 {
				break
			}
		}
	}
	return best
}

// NearestQuantizer assigns every pixel the nearest opaque palette entry.
type NearestQuantizer struct{}

// Quantize implements the Quantizer interface.
func (NearestQuantizer) Quantize(m image.Image, pal *palette.Palette) *image.Paletted {
	b := m.Bounds()
	pm := image.NewPaletted(b, pal.Display())
	opaque := pal.Opaque()
	cache := make(map[color.NRGBA]uint8)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := flatten(m.At(x, y), palette.Fallback)
			if !ok {
				pm.SetColorIndex(x, y, palette.Transparent)
				continue
			}
			i, ok := cache[c]
			if !ok {
				i = closest(opaque, c)
				cache[c] = i
			}
			pm.SetColorIndex(x, y, i)
		}
	}

	return pm
}

// MedianCutQuantizer first reduces the image to at most 255 representative
// colors using median cut and then snaps each of those to the nearest opaque
// palette entry. It is faster than NearestQuantizer on large images with many
// colors at the cost of some banding.
type MedianCutQuantizer struct{}

// Quantize implements the Quantizer interface.
func (MedianCutQuantizer) Quantize(m image.Image, pal *palette.Palette) *image.Paletted {
	b := m.Bounds()

	// Flatten against the transparent color first so the reduced palette
	// reflects what will actually be matched
	flat := image.NewNRGBA(b)
	mask := make([]bool, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := flatten(m.At(x, y), palette.Fallback)
			if !ok {
				mask[(y-b.Min.Y)*b.Dx()+x-b.Min.X] = true
				c = palette.Fallback
			}
			flat.SetNRGBA(x, y, c)
		}
	}

	q := quantize.MedianCutQuantizer{}
	reduced := q.Quantize(make(color.Palette, 0, palette.Transparent), flat)
	if len(reduced) == 0 {
		return NearestQuantizer{}.Quantize(m, pal)
	}

	opaque := pal.Opaque()
	mapping := make([]uint8, len(reduced))
	for i, c := range reduced {
		mapping[i] = closest(opaque, c)
	}

	pm := image.NewPaletted(b, pal.Display())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask[(y-b.Min.Y)*b.Dx()+x-b.Min.X] {
				pm.SetColorIndex(x, y, palette.Transparent)
				continue
			}
			pm.SetColorIndex(x, y, mapping[reduced.Index(flat.At(x, y))])
		}
	}

	return pm
}

// NewQuantizer returns the quantizer with the given name, either "nearest" or
// "mediancut".
func NewQuantizer(name string) (Quantizer, bool) {
	switch name {
	case "", "nearest":
		return NearestQuantizer{}, true
	case "mediancut":
		return MedianCutQuantizer{}, true
	}
	return nil, false
}
