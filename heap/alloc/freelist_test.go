package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/internal/format"
	"github.com/joshuapare/conskit/internal/testutil"
)

func newFreeList(t *testing.T, cells int) (*heap.Arena, *FreeList) {
	t.Helper()
	a := heap.NewArena(cells, 16)
	return a, New(a)
}

func allocN(t *testing.T, fl *FreeList, n int) []heap.Ref {
	t.Helper()
	refs := make([]heap.Ref, 0, n)
	for i := 0; i < n; i++ {
		ref, err := fl.Alloc()
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	return refs
}

func TestAlloc_BumpOrder(t *testing.T) {
	a, fl := newFreeList(t, 3)

	require.Equal(t, []heap.Ref{0, 1, 2}, allocN(t, fl, 3))
	require.Equal(t, heap.Ref(3), fl.Boundary())

	for i := heap.Ref(0); i < 3; i++ {
		require.Equal(t, heap.Atom{Offset: format.NoCell}, a.Load(i))
		require.Zero(t, a.Refs(i))
	}
}

func TestAlloc_Exhausted(t *testing.T) {
	a, fl := newFreeList(t, 2)
	allocN(t, fl, 2)
	a.Store(0, heap.Atom{Offset: 3})

	ref, err := fl.Alloc()
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, heap.NoCell, ref)

	// Exhaustion leaves existing cells alone.
	require.Equal(t, heap.Atom{Offset: 3}, a.Load(0))
	require.Equal(t, heap.Atom{Offset: format.NoCell}, a.Load(1))
	require.Zero(t, fl.Available())
}

func TestRelease_LIFOReuse(t *testing.T) {
	_, fl := newFreeList(t, 3)
	allocN(t, fl, 3)

	fl.Release(0)
	fl.Release(2)
	fl.Release(1)
	require.Equal(t, 3, fl.FreeCount())

	require.Equal(t, []heap.Ref{1, 2, 0}, allocN(t, fl, 3))
	require.Zero(t, fl.FreeCount())

	_, err := fl.Alloc()
	require.ErrorIs(t, err, ErrNoSpace)
}

func TestRelease_ReverseOrder(t *testing.T) {
	_, fl := newFreeList(t, 3)
	allocN(t, fl, 3)

	fl.Release(1)
	fl.Release(2)
	fl.Release(0)

	require.Equal(t, []heap.Ref{0, 2, 1}, allocN(t, fl, 3))
}

func TestRelease_PrefersFreedOverBoundary(t *testing.T) {
	_, fl := newFreeList(t, 4)
	allocN(t, fl, 2)

	fl.Release(0)
	require.Equal(t, 3, fl.Available())

	ref, err := fl.Alloc()
	require.NoError(t, err)
	require.Equal(t, heap.Ref(0), ref)
	require.Equal(t, heap.Ref(2), fl.Boundary())
}

func TestRelease_LinksThroughCar(t *testing.T) {
	a, fl := newFreeList(t, 3)
	allocN(t, fl, 3)
	a.SetRefs(1, 2)

	fl.Release(2)
	fl.Release(1)

	require.Equal(t, heap.Ref(1), fl.Head())
	require.Equal(t, heap.Freed{Next: 2}, a.Load(1))
	require.Equal(t, heap.Freed{Next: heap.NoCell}, a.Load(2))

	// Reallocation resets the reference count.
	ref, err := fl.Alloc()
	require.NoError(t, err)
	require.Equal(t, heap.Ref(1), ref)
	require.Zero(t, a.Refs(1))
}

func TestRelease_Faults(t *testing.T) {
	a, fl := newFreeList(t, 4)
	allocN(t, fl, 2)

	fl.Release(0)
	f := testutil.RequireFault(t, "double free", func() { fl.Release(0) })
	require.Equal(t, heap.Ref(0), f.Index)

	a.Store(1, heap.Uninit{})
	testutil.RequireFault(t, "uninitialized", func() { fl.Release(1) })

	// Cell 3 was never handed out, even if someone tagged it by hand.
	a.Store(3, heap.Atom{Offset: 0})
	testutil.RequireFault(t, "never allocated", func() { fl.Release(3) })

	testutil.RequireFault(t, "index out of range", func() { fl.Release(9) })
}

func TestAlloc_CorruptHeadFaults(t *testing.T) {
	a, fl := newFreeList(t, 2)
	allocN(t, fl, 1)
	fl.Release(0)

	a.Store(0, heap.Atom{Offset: 0})
	testutil.RequireFault(t, "free-list head is tagged atom", func() { fl.Alloc() })
}
