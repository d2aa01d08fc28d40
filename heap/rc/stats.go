package rc

import (
	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/internal/format"
)

// Stats is a point-in-time census of a heap.
type Stats struct {
	Cells        int // total cells
	Atoms        int // cells tagged atom, blank ones included
	Conses       int
	Uninit       int // includes never-allocated cells
	Freed        int
	Referenced   int // live cells with at least one incoming edge
	Boundary     int // first never-allocated cell
	Available    int // successful Alloc calls left
	TextCap      int
	TextUsed     int
	Strings      int // distinct interned strings
	Utilization  float64
	TextFraction float64
}

// Stats walks every cell and reports counts by tag along with text buffer
// usage.
func (h *Heap) Stats() Stats {
	s := Stats{
		Cells:     h.a.CellCount(),
		Boundary:  int(h.fl.Boundary()),
		Available: h.fl.Available(),
		TextCap:   h.a.TextCap(),
		TextUsed:  h.a.TextLen(),
		Strings:   h.atoms.Len(),
	}

	for i := 0; i < s.Cells; i++ {
		tag := h.a.Tag(heap.Ref(i))
		switch tag {
		case format.TagAtom:
			s.Atoms++
		case format.TagCons:
			s.Conses++
		case format.TagFreed:
			s.Freed++
		default:
			s.Uninit++
		}
		if tag.Live() && h.a.Refs(heap.Ref(i)) > 0 {
			s.Referenced++
		}
	}

	s.Utilization = float64(s.Atoms+s.Conses) / float64(s.Cells)
	s.TextFraction = float64(s.TextUsed) / float64(s.TextCap)
	return s
}
