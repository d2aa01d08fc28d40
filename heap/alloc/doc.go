// Package alloc hands out and reclaims cell slots of a heap.Arena.
//
// # Overview
//
// FreeList combines two sources of free cells:
//
//   - a LIFO stack of cells tagged Freed, linked through their car field
//   - a bump boundary below which every cell has been handed out at least
//     once; cells at or above it have never been touched
//
// Alloc pops the stack first and only advances the boundary when the stack
// is empty, so the most recently released cell is always the next one
// reused:
//
//	fl := alloc.New(arena)
//	ref, err := fl.Alloc()
//	if errors.Is(err, alloc.ErrNoSpace) {
//	    // every cell is in use
//	}
//	...
//	fl.Release(ref)
//
// A freshly allocated cell is a blank atom (car = -1) with a reference count
// of zero.
//
// # Faults
//
// Releasing a cell that is Uninit or already Freed, or one the allocator
// never handed out, panics with a *heap.Fault. These are caller bugs, not
// conditions to retry.
//
// # Thread Safety
//
// FreeList is not safe for concurrent use; two concurrent Alloc calls could
// pop the same head.
package alloc
