package heap

import "github.com/joshuapare/conskit/internal/format"

// Ref is the index of a cell within an Arena.
type Ref int32

// NoCell is the "none" sentinel for free-list links, blank atoms and failed
// allocations.
const NoCell Ref = format.NoCell

// Cell is the decoded content of one arena slot. It is implemented by
// exactly four types: Uninit, Atom, Cons and Freed.
type Cell interface {
	Tag() format.Tag
	cell()
}

// Uninit is a cell that holds no data.
type Uninit struct{}

// Atom is a cell holding interned text. Offset is the start of the text in
// the arena's text buffer, or NoCell for a blank atom fresh out of the
// allocator.
type Atom struct {
	Offset int32
}

// Cons is a pair naming two other cells.
type Cons struct {
	Car Ref
	Cdr Ref
}

// Freed is a cell on the free-list. Next is the cell below it on the stack,
// or NoCell.
type Freed struct {
	Next Ref
}

func (Uninit) Tag() format.Tag { return format.TagUninit }
func (Atom) Tag() format.Tag   { return format.TagAtom }
func (Cons) Tag() format.Tag   { return format.TagCons }
func (Freed) Tag() format.Tag  { return format.TagFreed }

func (Uninit) cell() {}
func (Atom) cell()   {}
func (Cons) cell()   {}
func (Freed) cell()  {}

// Blank reports whether the atom has no text yet.
func (a Atom) Blank() bool { return a.Offset == format.NoCell }
