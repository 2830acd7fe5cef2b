package sidecar

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

type lineType int

const (
	lineBlank lineType = iota
	lineSection
	linePair
)

type decoder struct {
	r    *bufio.Reader
	line int
	doc  *Document

	// Set when the current section is unusable and its pairs are dropped
	skip    bool
	current *Section
}

// readLine returns the next line. An overlong line is consumed in full and
// reported with ErrLineTooLong alongside its first buffered part.
func (d *decoder) readLine() (string, error) {
	line, isPrefix, err := d.r.ReadLine()
	if err != nil {
		return "", err
	}
	d.line++
	s := string(line)
	if !isPrefix {
		return s, nil
	}
	for isPrefix {
		if _, isPrefix, err = d.r.ReadLine(); err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
	}
	return s, ErrLineTooLong
}

func isSection(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "[")
}

// skipSection drops every pair up to the next valid section header.
func (d *decoder) skipSection() {
	d.skip = true
	d.current = nil
}

func (d *decoder) lex(s string) (lineType, string, string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "", s[0] == ';':
		return lineBlank, "", "", nil
	case s[0] == '[':
		i := strings.IndexByte(s, ']')
		if i < 0 {
			return lineBlank, "", "", ErrSyntax
		}
		return lineSection, strings.TrimSpace(s[1:i]), "", nil
	default:
		i := strings.IndexByte(s, '=')
		if i <= 0 {
			return lineBlank, "", "", ErrSyntax
		}
		return linePair, strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), nil
	}
}

func (d *decoder) fail(err error) {
	d.doc.Errors = append(d.doc.Errors, &LineError{d.line, err})
}

func (d *decoder) decode() error {
	for {
		s, err := d.readLine()
		switch err {
		case nil:
		case io.EOF:
			return nil
		case ErrLineTooLong:
			d.fail(err)
			if isSection(s) {
				d.skipSection()
			}
			continue
		default:
			return err
		}

		t, key, value, err := d.lex(s)
		if err != nil {
			d.fail(err)
			if isSection(s) {
				d.skipSection()
			}
			continue
		}

		switch t {
		case lineSection:
			section, err := parseSectionName(key)
			if err != nil {
				d.fail(err)
				d.skipSection()
				continue
			}
			section.Line = d.line
			d.doc.Sections = append(d.doc.Sections, section)
			d.current = &d.doc.Sections[len(d.doc.Sections)-1]
			d.skip = false
		case linePair:
			if d.skip {
				continue
			}
			if d.current == nil {
				d.fail(ErrNoSection)
				continue
			}
			d.current.Pairs = append(d.current.Pairs, Pair{Key: key, Value: value, Line: d.line})
		}
	}
}

// Decode reads a sidecar file from r. Only I/O errors are returned, any
// recoverable problems with individual lines are collected in the Errors
// field of the returned document.
func Decode(r io.Reader) (*Document, error) {
	d := decoder{
		r:   bufio.NewReaderSize(charmap.CodePage437.NewDecoder().Reader(r), MaxLineLength),
		doc: new(Document),
	}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.doc, nil
}

// UnmarshalText replaces the document with the one decoded from b.
func (doc *Document) UnmarshalText(b []byte) error {
	d, err := Decode(strings.NewReader(string(b)))
	if err != nil {
		return err
	}
	*doc = *d
	return nil
}
