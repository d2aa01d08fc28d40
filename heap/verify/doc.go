// Package verify checks the structural invariants of a heap arena.
//
// # Overview
//
// The mutation layer in heap/rc keeps these invariants on its own; the raw
// maintenance operations (setcar, settag, ...) do not. This package is used
// by tests and by the shell's check command to find out whether a heap is
// still consistent.
//
// Validation categories:
//   - ConsEdges: every cons names two live cells other than itself
//   - RefCounts: counts are non-negative and equal the number of incoming edges
//   - FreeList: the free stack holds exactly the Freed cells, once each
//   - AtomText: atoms point at string starts and no string is stored twice
//
// # Quick Start
//
//	if err := verify.AllInvariants(h.Arena(), h.FreeList()); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s (cell %d): %s\n", verr.Type, verr.Index, verr.Message)
//	    }
//	}
//
// Checks never panic on a corrupted arena: indices read out of cells are
// range checked before they are followed.
package verify
