package rc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/conskit/heap"
)

var (
	// ErrBadSize indicates a non-positive cell count or text buffer size.
	ErrBadSize = errors.New("rc: invalid cell count or text buffer size")

	// ErrReferenced indicates an attempt to free a cell other cells still reference.
	ErrReferenced = errors.New("rc: cell has references")
)

// ReferencedError reports a Free refused because of incoming references.
// It matches ErrReferenced with errors.Is.
type ReferencedError struct {
	Index heap.Ref
	Refs  int32
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("rc: the cell at index %d has %d references to it", e.Index, e.Refs)
}

func (e *ReferencedError) Is(target error) bool { return target == ErrReferenced }
