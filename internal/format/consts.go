// Package format houses the low-level encodings shared by the heap packages:
// tag and field codes for arena cells and their printable names. It has no
// knowledge of reference counting or allocation so every layer above can
// depend on it.
package format

// Tag is the discriminator stored in a cell's tag field.
//
// The zero value is TagUninit so freshly allocated arena storage starts out
// in the uninitialized state without an explicit pass.
type Tag int32

const (
	// TagUninit marks a cell that holds no data. Both payload fields are unused.
	TagUninit Tag = 0

	// TagAtom marks a cell whose car is a byte offset into the atom text
	// buffer. A car of NoCell means the atom is blank (allocated, no text yet).
	TagAtom Tag = 1

	// TagCons marks a cell whose car and cdr are indices of two other cells.
	TagCons Tag = 2

	// TagFreed marks a cell on the free-list. Its car links to the next freed
	// cell, or NoCell at the bottom of the stack.
	TagFreed Tag = 3
)

// Field selects one of the four raw fields of a cell.
type Field int

const (
	FieldCar      Field = 0
	FieldCdr      Field = 1
	FieldTag      Field = 2
	FieldRefCount Field = 3
)

const (
	// NoCell is the "none" sentinel used for free-list links, blank atoms and
	// failed allocations.
	NoCell = -1

	// TextTerminator ends every string stored in the atom text buffer.
	TextTerminator = 0x00

	// NilAtom is the atom text that presentation layers render as "()".
	NilAtom = "nil"
)

// Tag names as accepted by settag and printed by gettag.
const (
	TagNameUninit = "uninit"
	TagNameAtom   = "atom"
	TagNameCons   = "cons"
	TagNameFreed  = "freed"
)
