// Package xmltok turns an XML byte stream into a flat sequence of structural
// events: start tags with their attributes, end tags and character data.
//
// Self-closing elements produce a start event immediately followed by an end
// event. Comments, processing instructions and directives are skipped.
package xmltok

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Kind classifies an Event
type Kind int

const (
	KindStart Kind = iota + 1
	KindEnd
	KindText
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindText:
		return "text"
	case KindEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Attr is a single attribute of a start tag
type Attr struct {
	Name  string
	Value string
}

// Event is one structural event. Name is set for start and end events,
// Attrs for start events and Text for text events.
type Event struct {
	Kind   Kind
	Name   string
	Attrs  []Attr
	Text   string
	Offset int64 // input offset just past the event
}

// AttrValue returns the value of the named attribute
func AttrValue(attrs []Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ErrMalformed marks input that is not well-formed XML
var ErrMalformed = errors.New("malformed XML")

// SyntaxError reports malformed input with its approximate byte offset
type SyntaxError struct {
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d: %v", ErrMalformed, e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}

// Tokenizer produces events from a byte stream. It is forward-only; reading
// the input again requires a new Tokenizer over a re-opened source.
type Tokenizer struct {
	dec  *xml.Decoder
	done bool
	err  error
}

// New creates a tokenizer reading from r. Input declaring a non-UTF-8
// encoding in its prolog is converted to UTF-8.
func New(r io.Reader) *Tokenizer {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel
	return &Tokenizer{dec: dec}
}

// Next returns the next event. After the end of input it keeps returning a
// KindEOF event; after an error it keeps returning that error.
func (t *Tokenizer) Next() (Event, error) {
	if t.err != nil {
		return Event{}, t.err
	}
	if t.done {
		return Event{Kind: KindEOF, Offset: t.dec.InputOffset()}, nil
	}

	for {
		tok, err := t.dec.Token()
		if err == io.EOF {
			t.done = true
			return Event{Kind: KindEOF, Offset: t.dec.InputOffset()}, nil
		}
		if err != nil {
			t.err = t.wrap(err)
			return Event{}, t.err
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			return Event{
				Kind:   KindStart,
				Name:   tok.Name.Local,
				Attrs:  dedupeAttrs(tok.Attr),
				Offset: t.dec.InputOffset(),
			}, nil
		case xml.EndElement:
			return Event{
				Kind:   KindEnd,
				Name:   tok.Name.Local,
				Offset: t.dec.InputOffset(),
			}, nil
		case xml.CharData:
			return Event{
				Kind:   KindText,
				Text:   string(tok),
				Offset: t.dec.InputOffset(),
			}, nil
		}
		// comments, processing instructions and directives carry nothing
	}
}

// wrap classifies a decoder error. Read errors from the source pass through
// unchanged so that I/O failures stay distinguishable from bad markup.
func (t *Tokenizer) wrap(err error) error {
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		return &SyntaxError{Offset: t.dec.InputOffset(), Err: errors.New(syntax.Msg)}
	}
	return err
}

// dedupeAttrs resolves repeated attribute names: the last value wins and
// keeps the position of the first occurrence.
func dedupeAttrs(attrs []xml.Attr) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		replaced := false
		for i := range out {
			if out[i].Name == a.Name.Local {
				out[i].Value = a.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, Attr{Name: a.Name.Local, Value: a.Value})
		}
	}
	return out
}
