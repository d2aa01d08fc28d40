package heap

import (
	"math"

	"github.com/joshuapare/conskit/internal/buf"
	"github.com/joshuapare/conskit/internal/format"
)

// slot is the raw storage of one cell. Only GetField and SetField read or
// write it.
type slot struct {
	car  int32
	cdr  int32
	tag  format.Tag
	refs int32
}

// Arena is fixed-capacity storage for cells and atom text.
type Arena struct {
	cells []slot

	// text holds every atom string back to back, each null terminated.
	// textLen is the first free byte.
	text    []byte
	textLen int
}

// NewArena allocates zeroed storage for cells cells and textBytes bytes of
// atom text. Every cell starts out Uninit with a reference count of zero.
// Non-positive sizes are a fault.
func NewArena(cells, textBytes int) *Arena {
	if cells <= 0 || cells > math.MaxInt32 {
		Faultf("new", NoCell, "invalid cell count: %d", cells)
	}
	if textBytes <= 0 {
		Faultf("new", NoCell, "invalid text buffer size: %d", textBytes)
	}
	return &Arena{
		cells: make([]slot, cells),
		text:  make([]byte, textBytes),
	}
}

// CellCount returns the number of cells, fixed at construction.
func (a *Arena) CellCount() int { return len(a.cells) }

// InRange reports whether i addresses a cell of this arena.
func (a *Arena) InRange(i Ref) bool {
	return i >= 0 && int(i) < len(a.cells)
}

func (a *Arena) slot(op string, i Ref) *slot {
	if !a.InRange(i) {
		Faultf(op, i, "index out of range [0, %d)", len(a.cells))
	}
	return &a.cells[i]
}

// GetField returns the raw value of field f of cell i.
func (a *Arena) GetField(i Ref, f format.Field) int32 {
	s := a.slot("getfield", i)
	if !f.Valid() {
		Faultf("getfield", i, "unrecognized field number: %d", int(f))
	}
	switch f {
	case format.FieldCar:
		return s.car
	case format.FieldCdr:
		return s.cdr
	case format.FieldTag:
		return int32(s.tag)
	}
	return s.refs
}

// SetField overwrites field f of cell i. Writing a value outside the known
// tags to FieldTag is a fault.
func (a *Arena) SetField(i Ref, f format.Field, v int32) {
	s := a.slot("setfield", i)
	if !f.Valid() {
		Faultf("setfield", i, "unrecognized field number: %d", int(f))
	}
	switch f {
	case format.FieldCar:
		s.car = v
	case format.FieldCdr:
		s.cdr = v
	case format.FieldTag:
		if !format.Tag(v).Valid() {
			Faultf("setfield", i, "unrecognized tag code: %d", v)
		}
		s.tag = format.Tag(v)
	case format.FieldRefCount:
		s.refs = v
	}
}

// Tag returns the tag of cell i.
func (a *Arena) Tag(i Ref) format.Tag {
	return format.Tag(a.GetField(i, format.FieldTag))
}

// Refs returns the incoming reference count of cell i.
func (a *Arena) Refs(i Ref) int32 {
	return a.GetField(i, format.FieldRefCount)
}

// SetRefs overwrites the incoming reference count of cell i.
func (a *Arena) SetRefs(i Ref, n int32) {
	a.SetField(i, format.FieldRefCount, n)
}

// Load decodes cell i.
func (a *Arena) Load(i Ref) Cell {
	switch tag := a.Tag(i); tag {
	case format.TagAtom:
		return Atom{Offset: a.GetField(i, format.FieldCar)}
	case format.TagCons:
		return Cons{
			Car: Ref(a.GetField(i, format.FieldCar)),
			Cdr: Ref(a.GetField(i, format.FieldCdr)),
		}
	case format.TagFreed:
		return Freed{Next: Ref(a.GetField(i, format.FieldCar))}
	default:
		return Uninit{}
	}
}

// Store writes c into cell i. Payload words a variant does not use are
// zeroed. The reference count is left untouched.
func (a *Arena) Store(i Ref, c Cell) {
	var car, cdr int32
	switch v := c.(type) {
	case Uninit:
	case Atom:
		car = v.Offset
	case Cons:
		car, cdr = int32(v.Car), int32(v.Cdr)
	case Freed:
		car = int32(v.Next)
	default:
		Faultf("store", i, "unknown cell variant %T", c)
	}
	a.SetField(i, format.FieldTag, int32(c.Tag()))
	a.SetField(i, format.FieldCar, car)
	a.SetField(i, format.FieldCdr, cdr)
}

// TextCap returns the size of the atom text buffer.
func (a *Arena) TextCap() int { return len(a.text) }

// TextLen returns the number of bytes of the text buffer in use.
func (a *Arena) TextLen() int { return a.textLen }

// Text returns the used prefix of the text buffer. The slice aliases arena
// storage and must not be modified.
func (a *Arena) Text() []byte { return a.text[:a.textLen] }

// TextAt returns the null-terminated string starting at off. ok is false
// when off does not fall inside the used region.
func (a *Arena) TextAt(off int32) (string, bool) {
	if off < 0 || int(off) >= a.textLen {
		return "", false
	}
	b, ok := buf.CString(a.Text(), int(off), format.TextTerminator)
	if !ok {
		return "", false
	}
	return string(b), true
}

// AppendText copies s and a terminator to the end of the used region and
// returns the offset of its first byte. ok is false, and nothing is written,
// when the remaining capacity is smaller than len(s)+1.
func (a *Arena) AppendText(s string) (off int32, ok bool) {
	if !buf.Fits(a.textLen, len(s)+1, len(a.text)) {
		return format.NoCell, false
	}
	off = int32(a.textLen)
	n := copy(a.text[a.textLen:], s)
	a.text[a.textLen+n] = format.TextTerminator
	a.textLen += n + 1
	return off, true
}

// TextStart reports whether off is the first byte of a stored string rather
// than the middle of one.
func (a *Arena) TextStart(off int32) bool {
	if off < 0 || int(off) >= a.textLen {
		return false
	}
	return off == 0 || a.text[off-1] == format.TextTerminator
}
