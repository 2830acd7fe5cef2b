/*
Package artpng converts sets of tile archives into individual PNG images plus
an animation data file per archive, and packs them back again.
*/
package artpng

import (
	"fmt"
	"log"
	"os"

	"github.com/bodgit/artpng/catalog"
	"github.com/bodgit/artpng/palette"
	"github.com/bodgit/artpng/tile"
)

const defaultWorkers = 4

// SidecarFilename returns the conventional animation data filename for
// archive n.
func SidecarFilename(n int) string {
	return fmt.Sprintf("adata%03d.ini", n)
}

// TileError records a problem with a single tile.
type TileError struct {
	Tile uint32
	Path string
	Err  error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile %d (%s): %v", e.Tile, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *TileError) Unwrap() error {
	return e.Err
}

// Report summarises the conversion of one archive.
type Report struct {
	Archive string
	Tiles   int
	Images  int
	Skipped int
	Size    int64
}

// Options configures a Converter. Zero values select the defaults.
type Options struct {
	Codec     tile.Codec
	Quantizer tile.Quantizer
	Catalog   *catalog.Catalog
	Workers   int
}

// Converter unpacks and packs archives using a single palette.
type Converter struct {
	palette   *palette.Palette
	codec     tile.Codec
	quantizer tile.Quantizer
	catalog   *catalog.Catalog
	workers   int
	logger    *log.Logger
}

// New returns a Converter using the palette p.
func New(p *palette.Palette, logger *log.Logger, opts Options) *Converter {
	c := &Converter{
		palette:   p,
		codec:     opts.Codec,
		quantizer: opts.Quantizer,
		catalog:   opts.Catalog,
		workers:   opts.Workers,
		logger:    logger,
	}
	if c.codec == nil {
		c.codec = tile.PNG{}
	}
	if c.quantizer == nil {
		c.quantizer = tile.NearestQuantizer{}
	}
	if c.workers < 1 {
		c.workers = defaultWorkers
	}
	return c
}

// LoadPalette reads a raw 768 byte palette file.
func LoadPalette(file string) (*palette.Palette, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := palette.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return p, nil
}
