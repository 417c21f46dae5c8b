// Package builder reconstructs ClinVarSet records from the flat event
// stream of the tokenizer.
//
// Open elements live on an explicit stack of frames. A frame is either an
// entity frame, holding the partially built record part its tag maps to, or
// a value frame collecting the text and attributes of any other element.
// When a value frame closes, its content is handed to the nearest entity
// frame below it together with the tag path leading to it; when an entity
// frame closes, the finished entity is merged into the nearest entity frame
// below it. Closing the outermost ClinVarSet emits the record.
package builder

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/clinvar-tsv/internal/logging"
	"github.com/ppiankov/clinvar-tsv/internal/model"
	"github.com/ppiankov/clinvar-tsv/internal/xmltok"
	"go.uber.org/zap"
)

var (
	// ErrStructure marks input whose element structure cannot form a record,
	// such as truncated input.
	ErrStructure = errors.New("structural error")
	// ErrInvalidValue marks an attribute or text that does not parse as the
	// type of the field it maps to.
	ErrInvalidValue = errors.New("invalid value")
)

// EventSource yields tokenizer events
type EventSource interface {
	Next() (xmltok.Event, error)
}

// frame is one open element
type frame struct {
	tag   string
	node  node // nil for value frames
	attrs []xmltok.Attr
	text  []byte
	// wraps is set on a value frame once an entity opens inside it. Its
	// text is then dropped since no entity reads it.
	wraps bool
}

// Builder is the parsing state machine
type Builder struct {
	src     EventSource
	stack   []frame
	path    []string // scratch, reused for every merge
	release *model.ReleaseSet
	warner  *logging.Warner
}

// New creates a Builder reading events from src. Repeated warnings about the
// same unexpected value are logged once per window.
func New(src EventSource, log *zap.Logger, window time.Duration) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		src:    src,
		stack:  make([]frame, 0, 32),
		path:   make([]string, 0, 8),
		warner: logging.NewWarner(log, window),
	}
}

// Release returns the release set header, or nil before it was read
func (b *Builder) Release() *model.ReleaseSet {
	return b.release
}

// Depth returns the number of open elements
func (b *Builder) Depth() int {
	return len(b.stack)
}

// Next returns the next finished ClinVarSet. It returns io.EOF once the
// input is exhausted with every element closed.
func (b *Builder) Next() (*model.ClinVarSet, error) {
	for {
		ev, err := b.src.Next()
		if err != nil {
			return nil, err
		}

		switch ev.Kind {
		case xmltok.KindStart:
			if err := b.push(ev); err != nil {
				return nil, err
			}
		case xmltok.KindText:
			if top := b.top(); top != nil && top.node == nil && !top.wraps {
				top.text = append(top.text, ev.Text...)
			}
		case xmltok.KindEnd:
			set, err := b.pop(ev)
			if err != nil {
				return nil, err
			}
			if set != nil {
				return set, nil
			}
		case xmltok.KindEOF:
			if len(b.stack) > 0 {
				return nil, fmt.Errorf("%w: input ended with %d open elements (innermost <%s>) at offset %d",
					ErrStructure, len(b.stack), b.stack[len(b.stack)-1].tag, ev.Offset)
			}
			return nil, io.EOF
		}
	}
}

func (b *Builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return &b.stack[len(b.stack)-1]
}

// push opens a frame for a start tag
func (b *Builder) push(ev xmltok.Event) error {
	ctor, ok := entityTags[ev.Name]
	if !ok {
		b.stack = append(b.stack, frame{tag: ev.Name, attrs: ev.Attrs})
		return nil
	}

	n := ctor(b)
	for _, a := range ev.Attrs {
		if err := n.attr(a.Name, a.Value); err != nil {
			return fmt.Errorf("%w: <%s %s=%q> at offset %d: %v", ErrInvalidValue, ev.Name, a.Name, a.Value, ev.Offset, err)
		}
	}
	if rs, ok := n.(*releaseNode); ok {
		b.release = rs.v
	}
	for i := len(b.stack) - 1; i >= 0 && b.stack[i].node == nil && !b.stack[i].wraps; i-- {
		b.stack[i].wraps = true
		b.stack[i].text = nil
	}
	b.stack = append(b.stack, frame{tag: ev.Name, node: n})
	return nil
}

// pop closes the top frame and merges it downwards. It returns the record
// when the outermost ClinVarSet closes.
func (b *Builder) pop(ev xmltok.Event) (*model.ClinVarSet, error) {
	top := b.top()
	if top == nil {
		return nil, fmt.Errorf("%w: </%s> without open element at offset %d", ErrStructure, ev.Name, ev.Offset)
	}
	if top.tag != ev.Name {
		return nil, fmt.Errorf("%w: <%s> closed by </%s> at offset %d", ErrStructure, top.tag, ev.Name, ev.Offset)
	}
	closed := *top
	b.stack[len(b.stack)-1] = frame{}
	b.stack = b.stack[:len(b.stack)-1]

	if set, ok := closed.node.(*setNode); ok && b.outermostSet() {
		return set.v, nil
	}

	parent := b.nearestEntity()
	if parent < 0 {
		return nil, nil
	}
	path := b.pathFrom(parent+1, closed.tag)

	var err error
	if closed.node == nil {
		text := strings.TrimSpace(string(closed.text))
		err = b.stack[parent].node.leaf(path, closed.attrs, text)
	} else {
		err = b.stack[parent].node.adopt(path, closed.node)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: <%s> at offset %d: %v", ErrInvalidValue, strings.Join(path, "/"), ev.Offset, err)
	}
	return nil, nil
}

// outermostSet reports whether no ClinVarSet is open any more
func (b *Builder) outermostSet() bool {
	for i := range b.stack {
		if _, ok := b.stack[i].node.(*setNode); ok {
			return false
		}
	}
	return true
}

// nearestEntity returns the stack index of the innermost entity frame, or -1
func (b *Builder) nearestEntity() int {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].node != nil {
			return i
		}
	}
	return -1
}

// pathFrom returns the tags of the open frames from index i on, followed by
// tag. The slice is reused by the next call.
func (b *Builder) pathFrom(i int, tag string) []string {
	b.path = b.path[:0]
	for ; i < len(b.stack); i++ {
		b.path = append(b.path, b.stack[i].tag)
	}
	b.path = append(b.path, tag)
	return b.path
}
