/*
Package sidecar implements the human editable animation data file written
alongside the tiles of each archive.

The file is line based. Blank lines and lines starting with ';' are ignored,
"[tileNNNN.png]" starts a section for a single tile, "[tileA.png -> tileB.png]"
starts a section linking tile A to the last frame B of its animation, and
"Key = Value" lines set one field of the current tile's animation word.

Files are plain single-byte text and are read and written as Code Page 437.
*/
package sidecar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bodgit/artpng/anim"
)

// Keys understood in a section
const (
	KeyAnimationType  = "AnimationType"
	KeyAnimationSpeed = "AnimationSpeed"
	KeyXCenterOffset  = "XCenterOffset"
	KeyYCenterOffset  = "YCenterOffset"
	KeyOtherFlags     = "OtherFlags"
)

var keyFields = map[string]anim.Field{
	KeyAnimationType:  anim.AnimType,
	KeyAnimationSpeed: anim.Speed,
	KeyXCenterOffset:  anim.XOffset,
	KeyYCenterOffset:  anim.YOffset,
	KeyOtherFlags:     anim.Flags,
}

// MaxLineLength is the longest line accepted by Decode, longer lines are
// rejected as a whole.
const MaxLineLength = 1024

var (
	// ErrSyntax is returned for a line that is not a comment, section or
	// key/value pair
	ErrSyntax = errors.New("sidecar: syntax error")
	// ErrLineTooLong is returned for lines longer than MaxLineLength
	ErrLineTooLong = errors.New("sidecar: line too long")
	// ErrBadSection is returned for an unparseable section name
	ErrBadSection = errors.New("sidecar: invalid section name")
	// ErrNoSection is returned for a key/value pair before any section
	ErrNoSection = errors.New("sidecar: key outside of a section")
	// ErrTileRange is returned for a tile number outside the archive
	ErrTileRange = errors.New("sidecar: invalid tile number")
	// ErrReversedRange is returned when the first tile of a link is after
	// the last
	ErrReversedRange = errors.New("sidecar: first tile number greater than second one")
	// ErrUnknownKey is returned for a key outside the known vocabulary
	ErrUnknownKey = errors.New("sidecar: unknown key")
	// ErrBadValue is returned for a value that cannot be parsed
	ErrBadValue = errors.New("sidecar: invalid value")
)

// LineError records a recoverable error and the line it occurred on.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error
func (e *LineError) Unwrap() error {
	return e.Err
}

// Pair is a single key/value line.
type Pair struct {
	Key   string
	Value string
	Line  int
}

// Patch converts the pair into an update of the animation word.
func (p Pair) Patch() (anim.Patch, error) {
	field, ok := keyFields[p.Key]
	if !ok {
		return anim.Patch{}, fmt.Errorf("%w %s", ErrUnknownKey, p.Key)
	}

	if field == anim.AnimType {
		t, err := anim.ParseType(p.Value)
		if err != nil {
			return anim.Patch{}, fmt.Errorf("%w: animation type %q", ErrBadValue, p.Value)
		}
		return anim.Patch{Field: field, Value: int(t)}, nil
	}

	v, err := strconv.Atoi(p.Value)
	if err != nil {
		return anim.Patch{}, fmt.Errorf("%w: %s %q", ErrBadValue, p.Key, p.Value)
	}
	return anim.Patch{Field: field, Value: v}, nil
}

// Section holds the pairs for one tile. A linked section also carries the
// last tile of the animation cycle.
type Section struct {
	Start uint32
	End   uint32
	Link  bool
	Line  int
	Pairs []Pair
}

// TileName returns the raster file name used for tile n.
func TileName(n uint32) string {
	return fmt.Sprintf("tile%04d.png", n)
}

func parseTileName(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "tile") || !strings.HasSuffix(s, ".png") {
		return 0, ErrBadSection
	}
	n, err := strconv.ParseUint(s[len("tile"):len(s)-len(".png")], 10, 32)
	if err != nil {
		return 0, ErrBadSection
	}
	return uint32(n), nil
}

func parseSectionName(name string) (Section, error) {
	if i := strings.Index(name, "->"); i >= 0 {
		start, err := parseTileName(name[:i])
		if err != nil {
			return Section{}, err
		}
		end, err := parseTileName(name[i+2:])
		if err != nil {
			return Section{}, err
		}
		return Section{Start: start, End: end, Link: true}, nil
	}

	n, err := parseTileName(name)
	if err != nil {
		return Section{}, err
	}
	return Section{Start: n, End: n}, nil
}

// Name returns the section name as written between the brackets.
func (s Section) Name() string {
	if s.Link {
		return TileName(s.Start) + " -> " + TileName(s.End)
	}
	return TileName(s.Start)
}

func (s Section) validate(first, last uint32) error {
	switch {
	case s.Start < first || s.Start > last:
		return fmt.Errorf("%w (%d)", ErrTileRange, s.Start)
	case s.End < first || s.End > last:
		return fmt.Errorf("%w (%d)", ErrTileRange, s.End)
	case s.Start > s.End:
		return fmt.Errorf("%w (%d > %d)", ErrReversedRange, s.Start, s.End)
	}
	return nil
}

// Document is a parsed or generated sidecar file.
type Document struct {
	Comments []string
	Sections []Section

	// Errors holds the recoverable errors found while decoding
	Errors []error
}

// New generates the document describing words, where words[0] belongs to
// tile first. Tiles with a zero word are omitted.
func New(source string, first uint32, words []anim.Word) *Document {
	doc := new(Document)
	if source != "" {
		doc.Comments = append(doc.Comments, fmt.Sprintf("this file contains animation data from \"%s\"", source))
	}
	doc.Comments = append(doc.Comments, "extracted by artpng")

	for i, w := range words {
		if w == 0 {
			continue
		}
		n := first + uint32(i)

		if w.Animated() {
			doc.Sections = append(doc.Sections, Section{
				Start: n,
				End:   n + uint32(w.Frames()),
				Link:  true,
				Pairs: []Pair{
					{Key: KeyAnimationType, Value: w.Type().String()},
					{Key: KeyAnimationSpeed, Value: strconv.Itoa(int(w.Speed()))},
				},
			})
		}

		doc.Sections = append(doc.Sections, Section{
			Start: n,
			End:   n,
			Pairs: []Pair{
				{Key: KeyXCenterOffset, Value: strconv.Itoa(int(w.XOffset()))},
				{Key: KeyYCenterOffset, Value: strconv.Itoa(int(w.YOffset()))},
				{Key: KeyOtherFlags, Value: strconv.Itoa(int(w.Flags()))},
			},
		})
	}

	return doc
}

// Apply folds every section into words, where words[0] belongs to tile
// first. Sections referencing tiles outside the archive and pairs that cannot
// be converted are skipped and returned as errors; everything else is still
// applied.
func (doc *Document) Apply(words []anim.Word, first uint32) []error {
	var errs []error
	if len(words) == 0 {
		for _, s := range doc.Sections {
			errs = append(errs, &LineError{s.Line, fmt.Errorf("%w (%d)", ErrTileRange, s.Start)})
		}
		return errs
	}
	last := first + uint32(len(words)) - 1

	for _, s := range doc.Sections {
		if err := s.validate(first, last); err != nil {
			errs = append(errs, &LineError{s.Line, err})
			continue
		}

		i := s.Start - first
		if s.Link {
			words[i] = anim.Patch{Field: anim.Frames, Value: int(s.End - s.Start)}.Apply(words[i])
		}

		patches := make([]anim.Patch, 0, len(s.Pairs))
		for _, p := range s.Pairs {
			patch, err := p.Patch()
			if err != nil {
				errs = append(errs, &LineError{p.Line, err})
				continue
			}
			patches = append(patches, patch)
		}
		words[i] = anim.Fold(words[i], patches...)
	}

	return errs
}
