package alloc

import "errors"

// ErrNoSpace indicates that every cell is in use.
var ErrNoSpace = errors.New("alloc: no free cells")
