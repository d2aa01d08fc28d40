package heap

import "fmt"

// Fault describes a violated heap invariant. It is only ever delivered via
// panic, never returned as an error.
type Fault struct {
	Op    string // operation that detected the violation
	Index Ref    // offending cell, or NoCell when not cell specific
	Msg   string
}

func (f *Fault) Error() string {
	if f.Index == NoCell {
		return fmt.Sprintf("heap: %s: %s", f.Op, f.Msg)
	}
	return fmt.Sprintf("heap: %s: cell %d: %s", f.Op, f.Index, f.Msg)
}

// Faultf panics with a *Fault built from its arguments.
func Faultf(op string, index Ref, format string, args ...any) {
	panic(&Fault{Op: op, Index: index, Msg: fmt.Sprintf(format, args...)})
}

// AsFault reports whether v, typically the result of recover(), is a *Fault.
func AsFault(v any) (*Fault, bool) {
	f, ok := v.(*Fault)
	return f, ok
}
