package printer

import (
	"encoding/json"
	"io"

	"github.com/joshuapare/conskit/heap"
)

// jsonCell represents one cell in JSON format.
type jsonCell struct {
	Index int32     `json:"index"`
	Tag   string    `json:"tag"`
	Atom  *string   `json:"atom,omitempty"`
	Car   *jsonCell `json:"car,omitempty"`
	Cdr   *jsonCell `json:"cdr,omitempty"`
	Cycle bool      `json:"cycle,omitempty"`
	Trunc bool      `json:"truncated,omitempty"`
}

func (p *printer) json(w io.Writer, ref heap.Ref) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p.jsonValue(ref, 0))
}

func (p *printer) jsonValue(ref heap.Ref, depth int) *jsonCell {
	out := &jsonCell{Index: int32(ref)}
	if !p.r.InRange(ref) {
		out.Tag = "bad"
		return out
	}

	c := p.r.Load(ref)
	out.Tag = c.Tag().String()
	switch v := c.(type) {
	case heap.Atom:
		if !v.Blank() {
			if text, ok := p.r.TextAt(v.Offset); ok {
				out.Atom = &text
			}
		}
	case heap.Cons:
		switch {
		case p.path.Contains(uint32(ref)):
			out.Cycle = true
		case p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth:
			out.Trunc = true
		default:
			p.path.Add(uint32(ref))
			out.Car = p.jsonValue(v.Car, depth+1)
			out.Cdr = p.jsonValue(v.Cdr, depth+1)
			p.path.Remove(uint32(ref))
		}
	}
	return out
}
