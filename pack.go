package artpng

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bodgit/artpng/art"
	"github.com/bodgit/artpng/sidecar"
	"github.com/bodgit/artpng/tile"
)

func (c *Converter) loadTile(file string) (uint16, uint16, []byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, 0, nil, err
	}
	defer f.Close()

	m, err := c.codec.Decode(f)
	if err != nil {
		return 0, 0, nil, err
	}

	width, height, pix, err := tile.Encode(m, c.palette, c.quantizer)
	if err != nil {
		return 0, 0, nil, err
	}

	return uint16(width), uint16(height), pix, nil
}

func (c *Converter) applySidecar(w *art.Writer, file string, first uint32) error {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Printf("Warning: %s not found, animation data left empty\n", file)
			return nil
		}
		return err
	}
	defer f.Close()

	doc, err := sidecar.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	words := w.Words()
	errs := append(doc.Errors, doc.Apply(words, first)...)
	for _, err := range errs {
		c.logger.Printf("Warning: %s: %v\n", file, err)
	}
	w.SetWords(words)

	return nil
}

// PackArchive builds archive n in the directory out from the PNG files and
// animation data file found in the directory in. Archive n holds tiles
// n*256 to n*256+255, a tile without a usable PNG file is stored empty.
func (c *Converter) PackArchive(n int, in, out string) (r *Report, err error) {
	first := uint32(n * art.TilesPerArchive)

	if err := os.MkdirAll(out, 0755); err != nil {
		return nil, err
	}

	file := filepath.Join(out, art.Filename(n))
	f, err := os.Create(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(file)
		}
	}()

	w, err := art.NewWriter(f, first, art.TilesPerArchive)
	if err != nil {
		return nil, err
	}

	r = &Report{
		Archive: file,
		Tiles:   art.TilesPerArchive,
	}

	for i := 0; i < art.TilesPerArchive; i++ {
		number := first + uint32(i)
		name := filepath.Join(in, sidecar.TileName(number))

		width, height, pix, err := c.loadTile(name)
		switch {
		case err == nil:
			r.Images++
			c.logger.Printf("Packed %s (%dx%d)\n", name, width, height)
		case os.IsNotExist(err):
			c.logger.Printf("Missing %s, storing empty tile\n", name)
			width, height, pix = 0, 0, nil
		default:
			c.logger.Printf("Skipping %v\n", &TileError{number, name, err})
			r.Skipped++
			width, height, pix = 0, 0, nil
		}

		if err = w.WriteTile(width, height, pix); err != nil {
			return nil, err
		}
	}

	if err = c.applySidecar(w, filepath.Join(in, SidecarFilename(n)), first); err != nil {
		return nil, err
	}

	if err = w.Close(); err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r.Size = info.Size()

	if err = f.Close(); err != nil {
		return nil, err
	}

	return r, nil
}

// Pack builds archives 0 to count-1 in order, stopping at the first error. If
// fn is not nil it is called with the report for each archive.
func (c *Converter) Pack(count int, in, out string, fn func(*Report)) error {
	for n := 0; n < count; n++ {
		r, err := c.PackArchive(n, in, out)
		if err != nil {
			return err
		}
		if fn != nil {
			fn(r)
		}
	}
	return nil
}
