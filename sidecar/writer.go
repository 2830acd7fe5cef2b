package sidecar

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// MarshalText renders the document. Every linked section is followed by a
// blank line, as is every single tile section.
func (doc *Document) MarshalText() ([]byte, error) {
	b := new(bytes.Buffer)

	for _, c := range doc.Comments {
		fmt.Fprintf(b, "; %s\n", c)
	}
	if len(doc.Comments) > 0 {
		b.WriteByte('\n')
	}

	for _, s := range doc.Sections {
		fmt.Fprintf(b, "[%s]\n", s.Name())
		for _, p := range s.Pairs {
			fmt.Fprintf(b, "    %s=%s\n", p.Key, p.Value)
		}
		b.WriteByte('\n')
	}

	// Anything outside Code Page 437, most likely in a comment, is replaced
	return encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder()).Bytes(b.Bytes())
}

// Encode writes the document to w.
func (doc *Document) Encode(w io.Writer) error {
	b, err := doc.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
