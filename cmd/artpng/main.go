package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/artpng"
	"github.com/bodgit/artpng/anim"
	"github.com/bodgit/artpng/art"
	"github.com/bodgit/artpng/catalog"
	"github.com/bodgit/artpng/tile"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

const (
	defaultPalette = "palette.dat"
	defaultCatalog = "artpng.db"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newConverter(c *cli.Context) (*artpng.Converter, func(), error) {
	p, err := artpng.LoadPalette(c.String("palette"))
	if err != nil {
		return nil, nil, err
	}

	q, ok := tile.NewQuantizer(c.String("quantizer"))
	if !ok {
		return nil, nil, fmt.Errorf("unknown quantizer %q", c.String("quantizer"))
	}

	opts := artpng.Options{
		Quantizer: q,
		Workers:   c.Int("workers"),
	}

	closer := func() {}
	if c.Bool("record") {
		if opts.Catalog, err = catalog.Open(c.String("catalog")); err != nil {
			return nil, nil, err
		}
		closer = func() { opts.Catalog.Close() }
	}

	return artpng.New(p, newLogger(c), opts), closer, nil
}

func printReport(r *artpng.Report) {
	fmt.Printf("%s: %d tiles, %d images, %d skipped, %s\n", r.Archive, r.Tiles, r.Images, r.Skipped, humanize.Bytes(uint64(r.Size)))
}

func convert(c *cli.Context, fn func(*artpng.Converter, int, string, string, func(*artpng.Report)) error) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	a, closer, err := newConverter(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer closer()

	if err := fn(a, c.Int("count"), c.Args().Get(0), c.Args().Get(1), printReport); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	file := c.Args().First()
	f, err := os.Open(file)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	a, err := art.DecodeIndex(f)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("%s: %w", file, err), 1)
	}

	size := art.DataOffset(len(a.Tiles))
	for _, t := range a.Tiles {
		size += int64(t.Size())
	}

	fmt.Printf("%s: version %d, tiles %d-%d, %s\n", filepath.Base(file), art.Version, a.First, a.Last(), humanize.Bytes(uint64(size)))
	for i, t := range a.Tiles {
		if t.Empty() && t.Anim == 0 {
			continue
		}
		fields := anim.Decode(t.Anim)
		fmt.Printf("%6d %5dx%-5d @%-8d frames=%d type=%s x=%d y=%d speed=%d flags=%d\n", a.First+uint32(i), t.Width, t.Height, t.Offset, fields.Frames, fields.Type, fields.XOffset, fields.YOffset, fields.Speed, fields.Flags)
	}

	return nil
}

func duplicates(c *cli.Context) error {
	cat, err := catalog.Open(c.String("catalog"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer cat.Close()

	dups, err := cat.Duplicates()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	for _, d := range dups {
		fmt.Printf("%s %dx%d:", d.SHA1, d.Width, d.Height)
		for _, n := range d.Tiles {
			fmt.Printf(" %d", n)
		}
		fmt.Println()
	}

	return nil
}

func newApp(cwd string) *cli.App {
	app := cli.NewApp()

	app.Name = "artpng"
	app.Usage = "Tile archive to PNG conversion utility"
	app.Version = "1.0.0"

	catalogFlag := &cli.StringFlag{
		Name:    "catalog",
		EnvVars: []string{"ARTPNG_CATALOG"},
		Value:   filepath.Join(cwd, defaultCatalog),
		Usage:   "path to tile catalog database",
	}

	convertFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "palette",
			EnvVars: []string{"ARTPNG_PALETTE"},
			Value:   filepath.Join(cwd, defaultPalette),
			Usage:   "path to 768 byte palette file",
		},
		&cli.IntFlag{
			Name:  "count",
			Value: 1,
			Usage: "number of archives to convert, starting from 0",
		},
		&cli.StringFlag{
			Name:  "quantizer",
			Value: "nearest",
			Usage: "color matching for non-paletted images (nearest, mediancut)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: 4,
			Usage: "number of tiles to convert concurrently",
		},
		&cli.BoolFlag{
			Name:  "record",
			Usage: "record unpacked tiles in the catalog",
		},
		catalogFlag,
	}

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "unpack",
			Usage:       "Unpack archives into PNG images and animation data",
			Description: "",
			ArgsUsage:   "SOURCE DESTINATION",
			Flags:       convertFlags,
			Action: func(c *cli.Context) error {
				return convert(c, (*artpng.Converter).Unpack)
			},
		},
		{
			Name:        "pack",
			Usage:       "Pack PNG images and animation data into archives",
			Description: "",
			ArgsUsage:   "SOURCE DESTINATION",
			Flags:       convertFlags,
			Action: func(c *cli.Context) error {
				return convert(c, (*artpng.Converter).Pack)
			},
		},
		{
			Name:        "info",
			Usage:       "Show the index of an archive",
			Description: "",
			ArgsUsage:   "FILE",
			Action:      info,
		},
		{
			Name:        "duplicates",
			Usage:       "List identical tiles recorded in the catalog",
			Description: "",
			Flags:       []cli.Flag{catalogFlag},
			Action:      duplicates,
		},
	}

	return app
}

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	if err := newApp(cwd).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
