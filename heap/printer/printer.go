// Package printer renders heap cells as s-expressions or JSON.
//
// In text format the atom "nil" is shown as "()" and a cons chain ending in
// it is shown in list notation. Stored text is never changed; the
// substitution happens here only, and JSON output carries the raw text.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/internal/format"
)

const (
	// DefaultMaxDepth expands every cons level.
	DefaultMaxDepth = 0

	// EmptyList is how the nil atom is printed.
	EmptyList = "()"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs s-expressions.
	FormatText Format = "text"

	// FormatJSON outputs one nested JSON object per cell.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// MaxDepth limits how many cons levels are expanded (0 = unlimited).
	// Deeper structure prints as "...".
	MaxDepth int

	// Dotted disables list notation: every cons prints as (car . cdr).
	Dotted bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:   FormatText,
		MaxDepth: DefaultMaxDepth,
	}
}

// Reader is the read access the printer needs. *heap.Arena implements it.
type Reader interface {
	InRange(i heap.Ref) bool
	Load(i heap.Ref) heap.Cell
	TextAt(off int32) (string, bool)
}

// Atom returns text as it should be shown to a user.
func Atom(text string) string {
	if text == format.NilAtom {
		return EmptyList
	}
	return text
}

// Sprint renders ref as an s-expression using DefaultOptions.
func Sprint(r Reader, ref heap.Ref) string {
	var sb strings.Builder
	p := newPrinter(r, DefaultOptions())
	p.value(&sb, ref, 0)
	return sb.String()
}

// Fprint writes ref to w in the format selected by opts, followed by a
// newline.
func Fprint(w io.Writer, r Reader, ref heap.Ref, opts Options) error {
	p := newPrinter(r, opts)
	if opts.Format == FormatJSON {
		return p.json(w, ref)
	}
	var sb strings.Builder
	p.value(&sb, ref, 0)
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

type printer struct {
	r    Reader
	opts Options

	// path holds the cons cells being expanded, so a revisit is a cycle.
	path *roaring.Bitmap
}

func newPrinter(r Reader, opts Options) *printer {
	return &printer{r: r, opts: opts, path: roaring.New()}
}

func (p *printer) value(sb *strings.Builder, ref heap.Ref, depth int) {
	if !p.r.InRange(ref) {
		sb.WriteString(marker("bad", ref))
		return
	}
	switch c := p.r.Load(ref).(type) {
	case heap.Atom:
		sb.WriteString(p.atom(ref, c))
	case heap.Cons:
		switch {
		case p.path.Contains(uint32(ref)):
			sb.WriteString(marker("cycle", ref))
		case p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth:
			sb.WriteString("...")
		default:
			p.cons(sb, ref, c, depth)
		}
	default:
		sb.WriteString("#<" + c.Tag().String() + ">")
	}
}

func (p *printer) cons(sb *strings.Builder, ref heap.Ref, c heap.Cons, depth int) {
	p.path.Add(uint32(ref))
	added := []uint32{uint32(ref)}

	sb.WriteByte('(')
	p.value(sb, c.Car, depth+1)

	tail := c.Cdr
	for !p.opts.Dotted && p.r.InRange(tail) && !p.path.Contains(uint32(tail)) {
		next, ok := p.r.Load(tail).(heap.Cons)
		if !ok {
			break
		}
		p.path.Add(uint32(tail))
		added = append(added, uint32(tail))
		sb.WriteByte(' ')
		p.value(sb, next.Car, depth+1)
		tail = next.Cdr
	}

	if p.opts.Dotted || !p.isNil(tail) {
		sb.WriteString(" . ")
		p.value(sb, tail, depth+1)
	}
	sb.WriteByte(')')

	for _, r := range added {
		p.path.Remove(r)
	}
}

func (p *printer) atom(ref heap.Ref, c heap.Atom) string {
	if c.Blank() {
		return "#<blank>"
	}
	text, ok := p.r.TextAt(c.Offset)
	if !ok || text == "" {
		return marker("bad-text", ref)
	}
	return Atom(text)
}

func (p *printer) isNil(ref heap.Ref) bool {
	if !p.r.InRange(ref) {
		return false
	}
	c, ok := p.r.Load(ref).(heap.Atom)
	if !ok || c.Blank() {
		return false
	}
	text, ok := p.r.TextAt(c.Offset)
	return ok && text == format.NilAtom
}

func marker(kind string, ref heap.Ref) string {
	return fmt.Sprintf("#<%s %d>", kind, ref)
}
