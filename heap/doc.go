// Package heap provides the fixed-capacity cell arena that backs the conskit
// symbolic data store.
//
// # Overview
//
// An Arena owns two regions that are sized once at construction and never
// grow:
//
//   - a slice of cells, each holding a tag, two payload words (car and cdr)
//     and an incoming reference count
//   - a byte buffer holding the null-terminated text of every atom
//
// Cells are addressed by Ref, a small integer index into the cell slice.
// There are no pointers between cells; a cons cell names its children by
// index.
//
// # Raw and Typed Access
//
// GetField and SetField are the only primitives that touch cell storage.
// They are bounds checked and otherwise trust the caller completely: no
// ownership or reference semantics are enforced here.
//
// Load and Store wrap those primitives with a typed view. Load decodes a slot
// into exactly one of Uninit, Atom, Cons or Freed, so a cons child can never
// be read out of an atom by accident:
//
//	switch c := a.Load(ref).(type) {
//	case heap.Cons:
//	    fmt.Println(c.Car, c.Cdr)
//	case heap.Atom:
//	    fmt.Println(c.Offset)
//	}
//
// # Faults
//
// Programmer errors (an out-of-range index, an unknown field code, an
// invalid tag value) panic with a *Fault. Faults mean an invariant is already
// broken; they are not meant to be recovered and retried. Recoverable
// conditions such as running out of cells are reported as errors by the
// packages layered on top (heap/alloc, heap/intern, heap/rc).
//
// # Thread Safety
//
// Arena is not safe for concurrent use. A multi-owner setup must serialize
// every entry point of heap/rc externally.
//
// # Related Packages
//
//   - github.com/joshuapare/conskit/heap/intern: deduplicated atom text
//   - github.com/joshuapare/conskit/heap/alloc: free-list allocation of cells
//   - github.com/joshuapare/conskit/heap/rc: reference-counted mutation
package heap
