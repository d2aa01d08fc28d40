// Package testutil holds assertions shared by the heap packages' tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/conskit/heap"
)

// RequireFault runs fn and fails the test unless it panics with a
// *heap.Fault whose message contains want. The fault is returned for further
// inspection.
//
// Example:
//
//	f := testutil.RequireFault(t, "double free", func() { fl.Release(ref) })
//	require.Equal(t, ref, f.Index)
func RequireFault(t testing.TB, want string, fn func()) *heap.Fault {
	t.Helper()
	f := catchFault(t, fn)
	require.NotNil(t, f, "expected a heap fault containing %q", want)
	require.Contains(t, f.Error(), want)
	return f
}

func catchFault(t testing.TB, fn func()) (f *heap.Fault) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var ok bool
		f, ok = heap.AsFault(r)
		if !ok {
			panic(r)
		}
	}()
	fn()
	return nil
}
