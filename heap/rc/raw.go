package rc

import (
	"fmt"

	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/internal/format"
)

// The operations in this file write cell fields directly and do not keep
// reference counts in step. They exist for maintenance and debugging; a
// heap touched by them should be checked with heap/verify.

// Field returns the raw value of field f of cell i.
func (h *Heap) Field(i heap.Ref, f format.Field) int32 {
	return h.a.GetField(i, f)
}

// SetField overwrites field f of cell i.
func (h *Heap) SetField(i heap.Ref, f format.Field, v int32) {
	h.log.Debug("raw field write", "index", i, "field", f.String(), "value", v)
	h.a.SetField(i, f, v)
}

// SetTag overwrites the tag of cell i, leaving car and cdr as they are.
func (h *Heap) SetTag(i heap.Ref, tag format.Tag) {
	h.SetField(i, format.FieldTag, int32(tag))
}

// SetAtomRaw interns text and makes cell i an atom pointing at it. Whatever
// cell i referenced before keeps its reference count.
func (h *Heap) SetAtomRaw(i heap.Ref, text string) error {
	if !h.a.InRange(i) {
		heap.Faultf("setatom", i, "index out of range [0, %d)", h.a.CellCount())
	}
	off, err := h.atoms.Intern(text)
	if err != nil {
		return fmt.Errorf("set atom at %d: %w", i, err)
	}
	h.SetField(i, format.FieldTag, int32(format.TagAtom))
	h.SetField(i, format.FieldCar, off)
	return nil
}
