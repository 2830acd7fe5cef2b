package artpng

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/artpng/art"
	"github.com/bodgit/artpng/sidecar"
	"github.com/bodgit/artpng/tile"
)

// findArchive returns the path of archive n in dir, accepting either the
// upper or lower case form of the name.
func findArchive(dir string, n int) (string, error) {
	for _, name := range []string{art.Filename(n), strings.ToLower(art.Filename(n))} {
		file := filepath.Join(dir, name)
		_, err := os.Stat(file)
		switch {
		case err == nil:
			return file, nil
		case !os.IsNotExist(err):
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", filepath.Join(dir, art.Filename(n)), os.ErrNotExist)
}

func (c *Converter) findTiles(ctx context.Context, a *art.Archive) (<-chan int, <-chan error, error) {
	out := make(chan int)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for i, t := range a.Tiles {
			// Empty tiles have no image
			if t.Empty() {
				continue
			}

			select {
			case out <- i:
			case <-ctx.Done():
				errc <- errors.New("extraction cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

// createFile writes file using fn, removing it again if anything fails.
func createFile(file string, fn func(io.Writer) error) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	if err = fn(f); err != nil {
		f.Close()
		os.Remove(file)
		return err
	}

	if err = f.Close(); err != nil {
		os.Remove(file)
		return err
	}

	return nil
}

func (c *Converter) writeImage(file string, m image.Image) error {
	return createFile(file, func(w io.Writer) error {
		return c.codec.Encode(w, m)
	})
}

func (c *Converter) tileWorker(ctx context.Context, a *art.Archive, dir string, in <-chan int) (<-chan error, error) {
	errc := make(chan error, 1)
	display := c.palette.Display()
	go func() {
		defer close(errc)
		for i := range in {
			t := a.Tiles[i]
			number := a.First + uint32(i)
			file := filepath.Join(dir, sidecar.TileName(number))

			m, err := tile.Decode(int(t.Width), int(t.Height), a.Pixels(i), display)
			if err != nil {
				errc <- &TileError{number, file, err}
				return
			}

			if err := c.writeImage(file, m); err != nil {
				errc <- &TileError{number, file, err}
				return
			}

			c.logger.Printf("Extracted %s (%dx%d)\n", file, t.Width, t.Height)
		}
	}()
	return errc, nil
}

// waitForPipeline returns the first error from any stage. Remaining workers
// stop once the caller cancels the context, finishing the tile they are on.
func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (c *Converter) extractTiles(a *art.Archive, dir string) error {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	tiles, errc, err := c.findTiles(ctx, a)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < c.workers; i++ {
		errc, err := c.tileWorker(ctx, a, dir, tiles)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}

func (c *Converter) writeSidecar(file, source string, a *art.Archive) error {
	return createFile(file, sidecar.New(source, a.First, a.Words()).Encode)
}

// UnpackArchive extracts archive n found in the directory in, writing one PNG
// file per non-empty tile and the animation data file to the directory out.
func (c *Converter) UnpackArchive(n int, in, out string) (*Report, error) {
	file, err := findArchive(in, n)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	a, err := art.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	c.logger.Printf("%d tiles declared in %s\n", len(a.Tiles), file)

	if err := os.MkdirAll(out, 0755); err != nil {
		return nil, err
	}

	if err := c.extractTiles(a, out); err != nil {
		return nil, err
	}

	if err := c.writeSidecar(filepath.Join(out, SidecarFilename(n)), filepath.Base(file), a); err != nil {
		return nil, err
	}

	if c.catalog != nil {
		if err := c.catalog.Record(filepath.Base(file), a); err != nil {
			return nil, err
		}
	}

	r := &Report{
		Archive: file,
		Tiles:   len(a.Tiles),
		Size:    info.Size(),
	}
	for _, t := range a.Tiles {
		if !t.Empty() {
			r.Images++
		}
	}

	return r, nil
}

// Unpack extracts archives 0 to count-1 in order, stopping at the first
// error. If fn is not nil it is called with the report for each archive.
func (c *Converter) Unpack(count int, in, out string, fn func(*Report)) error {
	for n := 0; n < count; n++ {
		r, err := c.UnpackArchive(n, in, out)
		if err != nil {
			return err
		}
		if fn != nil {
			fn(r)
		}
	}
	return nil
}
