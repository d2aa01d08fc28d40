package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// requireFault runs fn and asserts it panics with a *Fault whose message
// contains want.
func requireFault(t *testing.T, want string, fn func()) *Fault {
	t.Helper()
	var f *Fault
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a fault")
			var ok bool
			f, ok = AsFault(r)
			require.True(t, ok, "panic value %v is not a *Fault", r)
		}()
		fn()
	}()
	require.Contains(t, f.Error(), want)
	return f
}
