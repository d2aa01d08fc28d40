package alloc

import (
	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/internal/format"
)

// FreeList allocates cells from a LIFO stack of freed cells and, when that
// is empty, from never-used cells above a bump boundary.
type FreeList struct {
	a *heap.Arena

	// head is the most recently freed cell, or heap.NoCell.
	head heap.Ref

	// boundary is the first cell never handed out. It only grows.
	boundary heap.Ref

	freed int
}

// New returns a FreeList over a. Every cell of a must still be Uninit.
func New(a *heap.Arena) *FreeList {
	return &FreeList{a: a, head: heap.NoCell}
}

// Alloc returns a cell reset to a blank atom with no references. It returns
// heap.NoCell and ErrNoSpace, touching nothing, when no cell is available.
func (fl *FreeList) Alloc() (heap.Ref, error) {
	var ref heap.Ref
	switch {
	case fl.head != heap.NoCell:
		ref = fl.head
		f, ok := fl.a.Load(ref).(heap.Freed)
		if !ok {
			heap.Faultf("alloc", ref, "free-list head is tagged %s", fl.a.Tag(ref))
		}
		fl.head = f.Next
		fl.freed--
	case int(fl.boundary) < fl.a.CellCount():
		ref = fl.boundary
		fl.boundary++
	default:
		return heap.NoCell, ErrNoSpace
	}

	fl.a.Store(ref, heap.Atom{Offset: format.NoCell})
	fl.a.SetRefs(ref, 0)
	return ref, nil
}

// Release pushes ref on the free stack. The cell must currently hold an
// atom or a cons; whatever it held is overwritten.
func (fl *FreeList) Release(ref heap.Ref) {
	switch fl.a.Tag(ref) {
	case format.TagFreed:
		heap.Faultf("release", ref, "double free")
	case format.TagUninit:
		heap.Faultf("release", ref, "cell is uninitialized")
	}
	if ref >= fl.boundary {
		heap.Faultf("release", ref, "cell was never allocated")
	}

	fl.a.Store(ref, heap.Freed{Next: fl.head})
	fl.head = ref
	fl.freed++
}

// Head returns the top of the free stack, or heap.NoCell.
func (fl *FreeList) Head() heap.Ref { return fl.head }

// Boundary returns the first never-allocated cell.
func (fl *FreeList) Boundary() heap.Ref { return fl.boundary }

// FreeCount returns the number of cells on the free stack.
func (fl *FreeList) FreeCount() int { return fl.freed }

// Available returns how many Alloc calls can succeed before ErrNoSpace.
func (fl *FreeList) Available() int {
	return fl.freed + fl.a.CellCount() - int(fl.boundary)
}
