// Package rc is the reference-counted mutation layer over a heap.Arena.
//
// A Heap composes the arena, the atom interning store and the free-list
// allocator, and is the only component that should build or change
// structure. It keeps one invariant between every pair of calls: a cell's
// reference count equals the number of cons cells naming it as car or cdr.
// References held by callers outside the arena are not counted; callers
// track which indices they consider theirs.
//
// Typical use:
//
//	h, err := rc.New(1024, 4096)
//	red, _ := h.AllocAtom("red")
//	nilAtom, _ := h.AllocAtom("nil")
//	pair, _ := h.AllocCons(red, nilAtom) // red and nil now have one reference each
//	_ = h.WriteAtom(pair, "orange")       // and none again
//
// # Errors
//
// Running out of cells or atom text, and freeing a cell that is still
// referenced, are returned as errors. Everything else that would break the
// invariant (erasing a referenced cell, a self-referential cons, referencing
// a cell that holds no value, reading a non-atom as text) panics with a
// *heap.Fault.
//
// # Cycles
//
// WriteCons can close a cycle through other cells. Cells on a cycle never
// drop to zero references and cannot be freed; their slots leak until the
// heap is discarded.
package rc
