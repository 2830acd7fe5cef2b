package tile

import (
	"image"
	"image/png"
	"io"
)

// Codec reads and writes raster image files.
type Codec interface {
	Decode(r io.Reader) (image.Image, error)
	Encode(w io.Writer, m image.Image) error
}

// PNG is a Codec for PNG files. Paletted images are written with a tRNS
// chunk so the transparent index survives a round trip.
type PNG struct {
	CompressionLevel png.CompressionLevel
}

// Decode implements the Codec interface.
func (PNG) Decode(r io.Reader) (image.Image, error) {
	return png.Decode(r)
}

// Encode implements the Codec interface.
func (c PNG) Encode(w io.Writer, m image.Image) error {
	e := png.Encoder{CompressionLevel: c.CompressionLevel}
	return e.Encode(w, m)
}
