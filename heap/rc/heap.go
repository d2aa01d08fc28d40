package rc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/heap/alloc"
	"github.com/joshuapare/conskit/heap/intern"
	"github.com/joshuapare/conskit/internal/format"
	"github.com/joshuapare/conskit/internal/logger"
)

// Heap is a reference-counted view of one arena. It is not safe for
// concurrent use.
type Heap struct {
	a     *heap.Arena
	atoms *intern.Store
	fl    *alloc.FreeList
	log   *slog.Logger
}

// New creates a heap of cells cells and textBytes bytes of atom text. The
// cell count must fit a cell reference.
func New(cells, textBytes int, opts ...Option) (*Heap, error) {
	if cells <= 0 || cells > math.MaxInt32 || textBytes <= 0 {
		return nil, fmt.Errorf("%w: cells=%d text_bytes=%d", ErrBadSize, cells, textBytes)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Discard()
	}

	a := heap.NewArena(cells, textBytes)
	h := &Heap{
		a:     a,
		atoms: intern.New(a),
		fl:    alloc.New(a),
		log:   o.logger,
	}
	return h, nil
}

// Arena returns the underlying arena for read access and raw maintenance.
func (h *Heap) Arena() *heap.Arena { return h.a }

// FreeList returns the allocator backing the heap.
func (h *Heap) FreeList() *alloc.FreeList { return h.fl }

// Atoms returns the interning store backing the heap.
func (h *Heap) Atoms() *intern.Store { return h.atoms }

// CellCount returns the fixed number of cells.
func (h *Heap) CellCount() int { return h.a.CellCount() }

// InRange reports whether i addresses a cell of this heap.
func (h *Heap) InRange(i heap.Ref) bool { return h.a.InRange(i) }

// Load decodes cell i.
func (h *Heap) Load(i heap.Ref) heap.Cell { return h.a.Load(i) }

// Tag returns the tag of cell i.
func (h *Heap) Tag(i heap.Ref) format.Tag { return h.a.Tag(i) }

// Refs returns the incoming reference count of cell i.
func (h *Heap) Refs(i heap.Ref) int32 { return h.a.Refs(i) }

// IsLive reports whether cell i holds an atom or a cons and may therefore be
// referenced by a new cons.
func (h *Heap) IsLive(i heap.Ref) bool {
	return h.a.Tag(i).Live()
}

// IsUnreferenced reports whether no cons cell names i. A negative count is
// a fault.
func (h *Heap) IsUnreferenced(i heap.Ref) bool {
	n := h.a.Refs(i)
	if n < 0 {
		heap.Faultf("refcount", i, "reference count %d is negative", n)
	}
	return n == 0
}

// Erase clears cell i back to Uninit, releasing the edges of a cons. The
// slot stays with the caller; it is not put on the free-list. Erasing a cell
// that is still referenced, one on the free-list, or one the allocator never
// handed out is a fault.
func (h *Heap) Erase(i heap.Ref) {
	h.requireWritable("erase", i)
	h.releaseChildren(i)
	h.a.Store(i, heap.Uninit{})
}

// Free erases cell i and pushes it on the free-list for reuse. It returns a
// *ReferencedError, changing nothing, while other cells still reference i.
// Freeing a cell that is not live is a fault.
func (h *Heap) Free(i heap.Ref) error {
	if tag := h.a.Tag(i); !tag.Live() {
		heap.Faultf("free", i, "cell is %s", tag)
	}
	if !h.IsUnreferenced(i) {
		return &ReferencedError{Index: i, Refs: h.a.Refs(i)}
	}

	h.releaseChildren(i)
	h.fl.Release(i)
	h.log.Debug("free", "index", i)
	return nil
}

// WriteAtom makes cell i an atom holding text, releasing any cons edges it
// had. The write is atomic: if text cannot be interned the error is returned
// and cell i is unchanged.
func (h *Heap) WriteAtom(i heap.Ref, text string) error {
	h.requireWritable("write_atom", i)

	off, err := h.atoms.Intern(text)
	if err != nil {
		return fmt.Errorf("write atom at %d: %w", i, err)
	}

	h.Erase(i)
	h.a.Store(i, heap.Atom{Offset: off})
	return nil
}

// WriteCons makes cell i a cons of car and cdr and counts the two new edges.
// Self-reference and references to cells that hold no value are faults.
func (h *Heap) WriteCons(i, car, cdr heap.Ref) {
	h.requireWritable("write_cons", i)
	if car == i {
		heap.Faultf("write_cons", i, "car is a self-reference")
	}
	if cdr == i {
		heap.Faultf("write_cons", i, "cdr is a self-reference")
	}
	h.requireLive("write_cons", car)
	h.requireLive("write_cons", cdr)

	h.Erase(i)
	h.a.Store(i, heap.Cons{Car: car, Cdr: cdr})
	h.incRef(car)
	h.incRef(cdr)
}

// Alloc takes a cell from the free-list. The cell is a blank atom with no
// references.
func (h *Heap) Alloc() (heap.Ref, error) {
	ref, err := h.fl.Alloc()
	if err != nil {
		h.log.Debug("allocation failed", "error", err)
		return heap.NoCell, err
	}
	h.log.Debug("alloc", "index", ref)
	return ref, nil
}

// AllocAtom allocates a cell and writes text into it. When no cell is free
// nothing is interned. When the text does not fit the cell goes straight
// back to the free-list and the interning error is returned.
func (h *Heap) AllocAtom(text string) (heap.Ref, error) {
	ref, err := h.Alloc()
	if err != nil {
		return heap.NoCell, err
	}
	if err := h.WriteAtom(ref, text); err != nil {
		h.fl.Release(ref)
		return heap.NoCell, err
	}
	return ref, nil
}

// AllocCons allocates a cell and makes it a cons of car and cdr. Both
// targets are checked before anything is allocated.
func (h *Heap) AllocCons(car, cdr heap.Ref) (heap.Ref, error) {
	h.requireLive("alloc_cons", car)
	h.requireLive("alloc_cons", cdr)

	ref, err := h.Alloc()
	if err != nil {
		return heap.NoCell, err
	}
	h.WriteCons(ref, car, cdr)
	return ref, nil
}

// HasText reports whether cell i is an atom with readable text.
func (h *Heap) HasText(i heap.Ref) bool {
	c, ok := h.a.Load(i).(heap.Atom)
	if !ok || c.Blank() || !h.a.TextStart(c.Offset) {
		return false
	}
	s, ok := h.a.TextAt(c.Offset)
	return ok && s != ""
}

// Text returns the text of atom i. Reading anything but an atom with text
// is a fault.
func (h *Heap) Text(i heap.Ref) string {
	if !h.HasText(i) {
		heap.Faultf("read_text", i, "cell is not a valid atom")
	}
	s, _ := h.a.TextAt(h.a.Load(i).(heap.Atom).Offset)
	return s
}

func (h *Heap) requireWritable(op string, i heap.Ref) {
	tag := h.a.Tag(i)
	if i >= h.fl.Boundary() {
		heap.Faultf(op, i, "cell was never allocated")
	}
	if tag == format.TagFreed {
		heap.Faultf(op, i, "cell is on the free-list")
	}
	if !h.IsUnreferenced(i) {
		heap.Faultf(op, i, "cell has %d references to it", h.a.Refs(i))
	}
}

func (h *Heap) requireLive(op string, i heap.Ref) {
	if !h.IsLive(i) {
		heap.Faultf(op, i, "cannot reference cell %d, which doesn't contain a value", i)
	}
}

func (h *Heap) releaseChildren(i heap.Ref) {
	if c, ok := h.a.Load(i).(heap.Cons); ok {
		h.decRef(c.Car)
		h.decRef(c.Cdr)
	}
}

func (h *Heap) incRef(i heap.Ref) {
	h.a.SetRefs(i, h.a.Refs(i)+1)
}

func (h *Heap) decRef(i heap.Ref) {
	n := h.a.Refs(i) - 1
	if n < 0 {
		heap.Faultf("refcount", i, "reference count would become %d", n)
	}
	h.a.SetRefs(i, n)
}
