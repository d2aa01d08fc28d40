package verify

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/heap/intern"
	"github.com/joshuapare/conskit/internal/format"
)

// FreeList is the allocator state the free-list check needs.
type FreeList interface {
	Head() heap.Ref
	Boundary() heap.Ref
	FreeCount() int
}

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Index   int // offending cell, -1 if N/A
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s at cell %d: %s", e.Type, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants runs every check in turn.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(a *heap.Arena, fl FreeList) error {
	if err := ConsEdges(a); err != nil {
		return err
	}
	if err := RefCounts(a); err != nil {
		return err
	}
	if err := FreeListStructure(a, fl); err != nil {
		return err
	}
	return AtomText(a)
}

// ConsEdges validates that every cons names two live cells, neither of which
// is the cons itself.
func ConsEdges(a *heap.Arena) error {
	for i, n := 0, a.CellCount(); i < n; i++ {
		ref := heap.Ref(i)
		c, ok := a.Load(ref).(heap.Cons)
		if !ok {
			continue
		}
		for _, edge := range [...]struct {
			name string
			to   heap.Ref
		}{{"car", c.Car}, {"cdr", c.Cdr}} {
			switch {
			case !a.InRange(edge.to):
				return &ValidationError{
					Type:    "ConsEdges",
					Message: fmt.Sprintf("%s %d out of range", edge.name, edge.to),
					Index:   i,
				}
			case edge.to == ref:
				return &ValidationError{
					Type:    "ConsEdges",
					Message: fmt.Sprintf("%s is a self-reference", edge.name),
					Index:   i,
				}
			case !a.Tag(edge.to).Live():
				return &ValidationError{
					Type:    "ConsEdges",
					Message: fmt.Sprintf("%s %d is %s", edge.name, edge.to, a.Tag(edge.to)),
					Index:   i,
				}
			}
		}
	}
	return nil
}

// RefCounts validates that each cell's reference count is non-negative and
// equals the number of cons edges pointing at it. Out-of-range edges are
// ignored here; ConsEdges reports them.
func RefCounts(a *heap.Arena) error {
	incoming := make([]int32, a.CellCount())
	for i, n := 0, a.CellCount(); i < n; i++ {
		c, ok := a.Load(heap.Ref(i)).(heap.Cons)
		if !ok {
			continue
		}
		if a.InRange(c.Car) {
			incoming[c.Car]++
		}
		if a.InRange(c.Cdr) {
			incoming[c.Cdr]++
		}
	}

	for i, want := range incoming {
		got := a.Refs(heap.Ref(i))
		if got < 0 {
			return &ValidationError{
				Type:    "RefCounts",
				Message: fmt.Sprintf("negative reference count %d", got),
				Index:   i,
			}
		}
		if got != want {
			return &ValidationError{
				Type:    "RefCounts",
				Message: fmt.Sprintf("reference count %d, but %d incoming edges", got, want),
				Index:   i,
			}
		}
	}
	return nil
}

// FreeListStructure walks the free stack and validates that it contains
// exactly the cells tagged Freed, each once, all below the bump boundary,
// and that no cell at or above the boundary has been touched.
func FreeListStructure(a *heap.Arena, fl FreeList) error {
	boundary := fl.Boundary()
	if boundary < 0 || int(boundary) > a.CellCount() {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("boundary %d outside [0, %d]", boundary, a.CellCount()),
			Index:   -1,
		}
	}

	onList := roaring.New()
	for ref := fl.Head(); ref != heap.NoCell; {
		if !a.InRange(ref) {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("link to %d out of range", ref),
				Index:   -1,
			}
		}
		if !onList.CheckedAdd(uint32(ref)) {
			return &ValidationError{
				Type:    "FreeList",
				Message: "cell appears twice on the free stack",
				Index:   int(ref),
			}
		}
		f, ok := a.Load(ref).(heap.Freed)
		if !ok {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("cell on the free stack is tagged %s", a.Tag(ref)),
				Index:   int(ref),
			}
		}
		if ref >= boundary {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("cell on the free stack is above the boundary %d", boundary),
				Index:   int(ref),
			}
		}
		ref = f.Next
	}

	tagged := roaring.New()
	for i, n := 0, a.CellCount(); i < n; i++ {
		ref := heap.Ref(i)
		tag := a.Tag(ref)
		if tag == format.TagFreed {
			tagged.Add(uint32(i))
		}
		if ref >= boundary && (tag != format.TagUninit || a.Refs(ref) != 0) {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("never-allocated cell is tagged %s", tag),
				Index:   i,
			}
		}
	}

	if missing := roaring.AndNot(tagged, onList); !missing.IsEmpty() {
		return &ValidationError{
			Type:    "FreeList",
			Message: "freed cell is not on the free stack",
			Index:   int(missing.ToArray()[0]),
		}
	}
	if n := int(onList.GetCardinality()); n != fl.FreeCount() {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("free stack holds %d cells, allocator counts %d", n, fl.FreeCount()),
			Index:   -1,
		}
	}
	return nil
}

// AtomText validates that every non-blank atom points at the start of a
// non-empty stored string and that the text buffer holds no duplicates.
func AtomText(a *heap.Arena) error {
	used := a.Text()
	if len(used) > 0 && used[len(used)-1] != format.TextTerminator {
		return &ValidationError{
			Type:    "AtomText",
			Message: "text buffer does not end with a terminator",
			Index:   -1,
		}
	}

	var dup *ValidationError
	seen := make(map[string]int32)
	intern.New(a).Each(func(off int32, text string) bool {
		if first, ok := seen[text]; ok {
			dup = &ValidationError{
				Type:    "AtomText",
				Message: fmt.Sprintf("%q stored at offsets %d and %d", text, first, off),
				Index:   -1,
			}
			return false
		}
		seen[text] = off
		return true
	})
	if dup != nil {
		return dup
	}

	for i, n := 0, a.CellCount(); i < n; i++ {
		c, ok := a.Load(heap.Ref(i)).(heap.Atom)
		if !ok || c.Blank() {
			continue
		}
		if !a.TextStart(c.Offset) {
			return &ValidationError{
				Type:    "AtomText",
				Message: fmt.Sprintf("offset %d is not the start of a stored string", c.Offset),
				Index:   i,
			}
		}
		if s, _ := a.TextAt(c.Offset); s == "" {
			return &ValidationError{
				Type:    "AtomText",
				Message: fmt.Sprintf("offset %d holds an empty string", c.Offset),
				Index:   i,
			}
		}
	}
	return nil
}
