// Package buf holds bounds-checked helpers for the fixed-size byte regions
// owned by the heap. Every helper reports failure instead of panicking so the
// caller decides whether an out-of-range access is fatal.
package buf

import (
	"bytes"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// CString returns the bytes starting at off up to, but not including, the
// next terminator byte. ok is false when off is out of range or no
// terminator follows it inside b.
func CString(b []byte, off int, term byte) ([]byte, bool) {
	tail, ok := Slice(b, off, len(b)-off)
	if !ok {
		return nil, false
	}
	n := bytes.IndexByte(tail, term)
	if n < 0 {
		return nil, false
	}
	return tail[:n], true
}

// Fits reports whether n more bytes can be appended after used bytes in a
// region of capacity bytes.
func Fits(used, n, capacity int) bool {
	if used < 0 || n < 0 {
		return false
	}
	end, ok := AddOverflowSafe(used, n)
	return ok && end <= capacity
}
