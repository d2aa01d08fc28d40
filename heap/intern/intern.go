// Package intern deduplicates atom text inside a heap.Arena's text buffer.
//
// Lookups scan the buffer linearly, one null-terminated string at a time.
// The buffer is small and fixed, so the scan is bounded and the store keeps
// no index of its own: the arena's bytes are the only state.
package intern

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/internal/format"
)

var (
	// ErrEmptyText indicates an attempt to intern the empty string.
	ErrEmptyText = errors.New("intern: empty atom text")

	// ErrInvalidText indicates text containing the terminator byte.
	ErrInvalidText = errors.New("intern: atom text contains a NUL byte")

	// ErrNoSpace indicates the text buffer cannot hold the new string.
	ErrNoSpace = errors.New("intern: atom text buffer full")
)

// Store interns text into an arena's text buffer.
type Store struct {
	a *heap.Arena
}

// New returns a Store over a's text buffer.
func New(a *heap.Arena) *Store {
	return &Store{a: a}
}

// Intern returns the offset of text in the buffer, appending it first if no
// identical string is stored yet. Offsets are stable for the arena's
// lifetime.
func (s *Store) Intern(text string) (int32, error) {
	if err := check(text); err != nil {
		return format.NoCell, err
	}
	if off, ok := s.Lookup(text); ok {
		return off, nil
	}
	off, ok := s.a.AppendText(text)
	if !ok {
		return format.NoCell, fmt.Errorf("%w: need %d bytes, %d free", ErrNoSpace, len(text)+1, s.Free())
	}
	return off, nil
}

// Lookup returns the offset of text without modifying the buffer.
func (s *Store) Lookup(text string) (int32, bool) {
	if text == "" {
		return format.NoCell, false
	}
	found := int32(format.NoCell)
	s.each(func(off int, b []byte) bool {
		if string(b) == text {
			found = int32(off)
			return false
		}
		return true
	})
	return found, found != format.NoCell
}

// Len returns the number of distinct strings stored.
func (s *Store) Len() int {
	n := 0
	s.each(func(int, []byte) bool {
		n++
		return true
	})
	return n
}

// Free returns the number of unused bytes left in the buffer.
func (s *Store) Free() int {
	return s.a.TextCap() - s.a.TextLen()
}

// Each calls fn for every stored string in buffer order until fn returns false.
func (s *Store) Each(fn func(off int32, text string) bool) {
	s.each(func(off int, b []byte) bool {
		return fn(int32(off), string(b))
	})
}

func (s *Store) each(fn func(off int, b []byte) bool) {
	used := s.a.Text()
	off := 0
	for off < len(used) {
		n := bytes.IndexByte(used[off:], format.TextTerminator)
		if n < 0 {
			return
		}
		if !fn(off, used[off:off+n]) {
			return
		}
		off += n + 1
	}
}

func check(text string) error {
	if text == "" {
		return ErrEmptyText
	}
	if strings.IndexByte(text, format.TextTerminator) >= 0 {
		return ErrInvalidText
	}
	return nil
}
