package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/conskit/heap/rc"
	"github.com/joshuapare/conskit/internal/testutil"
)

type session struct {
	t   *testing.T
	sh  *Shell
	out *bytes.Buffer
	err *bytes.Buffer
}

func newSession(t *testing.T, cells, textBytes int, opts Options) *session {
	t.Helper()
	h, err := rc.New(cells, textBytes)
	require.NoError(t, err)
	s := &session{t: t, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	s.sh = New(h, s.out, s.err, opts)
	return s
}

// run executes script and returns what it wrote to each stream, clearing
// both buffers.
func (s *session) run(script string) (string, string) {
	s.t.Helper()
	require.NoError(s.t, s.sh.Run(strings.NewReader(script)))
	out, errOut := s.out.String(), s.err.String()
	s.out.Reset()
	s.err.Reset()
	return out, errOut
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestShell_Walkthrough(t *testing.T) {
	s := newSession(t, 16, 256, Options{})

	out, errOut := s.run(`
atom red
atom nil
cons 0 1
getcar 2
getcdr 2
gettag 2
getatom 0
getatom 1
getrefs 0
print 2
`)
	require.Empty(t, errOut)
	require.Equal(t, lines("0", "1", "2", "0", "1", "cons", "red", "()", "1", "(red)"), out)

	out, errOut = s.run("free 0\nfree 2\ngetrefs 0\nfree 0\nalloc\ngettag 0\ngetatom 0\n")
	require.Equal(t, lines("The cell at index 0 has references to it", "The cell at index 0 is not an atom"), errOut)
	require.Equal(t, lines("0", "0", "atom"), out)
}

func TestShell_ArgumentErrors(t *testing.T) {
	s := newSession(t, 4, 64, Options{})

	tests := []struct {
		line string
		want string
	}{
		{"getcar", "Too few arguments to getcar"},
		{"getcar 1 2", "Too many arguments to getcar"},
		{"getcar x", "Invalid number: x"},
		{"getcar 12abc", "Invalid number: 12abc"},
		{"getcar 99999999999", "Invalid number: 99999999999"},
		{"setcar x", "Invalid number: x"},
		{"setcar 1", "Too few arguments to setcar"},
		{"setcar 1 y", "Invalid number: y"},
		{"settag 1", "Too few arguments to settag"},
		{"alloc 1", "Too many arguments to alloc"},
		{"print", "Too few arguments to print"},
		{"print 0 json extra", "Too many arguments to print"},
		{"atom a b", "Too many arguments to atom"},
		{"frob 1", "Unrecognized command: frob"},
		{"getcar 4", "Index out of range: 4"},
		{"getcdr -1", "Index out of range: -1"},
		{"gettag 10", "Index out of range: 10"},
		{"getatom 10", "Index out of range: 10"},
		{"setcar 10 1", "Index out of range: 10"},
		{"setatom 10 a", "Index out of range: 10"},
		{"print 10", "Index out of range: 10"},
		{"settag 0 bogus", "Unrecognized tag: bogus"},
		{"settag 0 2", "Unrecognized tag: 2"},
		{"reinit 0", "Invalid cell count: 0"},
		{"reinit -3", "Invalid cell count: -3"},
		{"print 0 yaml", "Unrecognized format: yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out, errOut := s.run(tt.line + "\n")
			require.Empty(t, out)
			require.Equal(t, tt.want+"\n", errOut)
		})
	}
}

func TestShell_BlankAndCommentLines(t *testing.T) {
	s := newSession(t, 4, 64, Options{})
	out, errOut := s.run("\n   \n# a comment\n\tcellcount  \r\n")
	require.Empty(t, errOut)
	require.Equal(t, "4\n", out)
}

func TestShell_InvalidIndex(t *testing.T) {
	s := newSession(t, 8, 64, Options{})
	s.run("atom a\n")

	_, errOut := s.run("cons 0 3\ncons 99 0\nfree 3\nfree -1\n")
	require.Equal(t, lines(
		"Invalid index: 3",
		"Invalid index: 99",
		"Invalid index: 3",
		"Invalid index: -1",
	), errOut)

	// A cell on the free-list is not a value either.
	_, errOut = s.run("free 0\nfree 0\ncons 0 0\nerase 0\n")
	require.Equal(t, lines("Invalid index: 0", "Invalid index: 0", "Invalid index: 0"), errOut)

	// Nor is a cell the allocator has not reached yet.
	_, errOut = s.run("erase 7\n")
	require.Equal(t, lines("Invalid index: 7"), errOut)
}

func TestShell_NoFreeCells(t *testing.T) {
	s := newSession(t, 2, 64, Options{})

	out, errOut := s.run("atom a\natom b\natom c\nalloc\ncons 0 1\n")
	require.Equal(t, lines("0", "1"), out)
	require.Equal(t, lines("No free cells", "No free cells", "No free cells"), errOut)
}

func TestShell_OutOfAtomSpace(t *testing.T) {
	s := newSession(t, 4, 4, Options{})

	out, errOut := s.run("atom abc\natom de\natom abc\nsetatom 2 xy\nalloc\n")
	require.Equal(t, lines("Out of atom space", "Out of atom space"), errOut)
	// Cell 1 went back to the free-list when "de" did not fit, so the
	// second "abc" reuses it.
	require.Equal(t, lines("0", "1", "2"), out)
}

func TestShell_RawWrites(t *testing.T) {
	s := newSession(t, 8, 64, Options{})

	out, errOut := s.run(`
atom a
setcar 0 42
getcar 0
setcdr 0 -7
getcdr 0
settag 5 cons
gettag 5
setatom 6 hello
gettag 6
getatom 6
getrefs 6
`)
	require.Empty(t, errOut)
	require.Equal(t, lines("0", "42", "-7", "cons", "atom", "hello", "0"), out)
}

func TestShell_EraseAndCheck(t *testing.T) {
	s := newSession(t, 8, 64, Options{})

	out, errOut := s.run("atom a\natom b\ncons 0 1\nerase 0\ncheck\nerase 2\ngettag 2\ngetrefs 0\ncheck\n")
	require.Equal(t, "The cell at index 0 has references to it\n", errOut)
	require.Equal(t, lines("0", "1", "2", "OK", "uninit", "0", "OK"), out)

	// Raw writes can leave counts that no longer match the edges.
	out, errOut = s.run("cons 0 1\nsetcar 3 1\ncheck\n")
	require.Equal(t, "3\n", out)
	require.Contains(t, errOut, "RefCounts")
}

func TestShell_Reinit(t *testing.T) {
	s := newSession(t, 8, 100, Options{})

	out, errOut := s.run("atom a\nreinit 3\ncellcount\ngettag 0\natom b\n")
	require.Empty(t, errOut)
	require.Equal(t, lines("0", "3", "uninit", "0"), out)
	require.Equal(t, 100, s.sh.Heap().Arena().TextCap())
	require.Equal(t, 3, s.sh.Heap().CellCount())
}

func TestShell_Print(t *testing.T) {
	s := newSession(t, 16, 128, Options{})

	out, errOut := s.run(`
atom a
atom b
atom nil
cons 1 2
cons 0 3
print 4
print 4 text
cons 0 1
print 5
alloc
print 6
`)
	require.Empty(t, errOut)
	require.Equal(t, lines("0", "1", "2", "3", "4", "(a b)", "(a b)", "5", "(a . b)", "6", "#<blank>"), out)

	out, errOut = s.run("print 0 json\n")
	require.Empty(t, errOut)
	require.Contains(t, out, `"atom": "a"`)
}

func TestShell_StatsAndHelp(t *testing.T) {
	s := newSession(t, 10, 64, Options{})
	s.run("atom a\natom b\ncons 0 1\n")

	out, _ := s.run("stats\n")
	require.Contains(t, out, "cells:       10 (2 atom, 1 cons, 7 uninit, 0 freed)")
	require.Contains(t, out, "referenced:  2")
	require.Contains(t, out, "boundary:    3")
	require.Contains(t, out, "text:        4/64 bytes, 2 strings")

	out, _ = s.run("help\n")
	for _, usage := range []string{"getcar <index>", "cons <car> <cdr>", "reinit <count>", "quit"} {
		require.Contains(t, out, usage)
	}
}

func TestShell_Exit(t *testing.T) {
	s := newSession(t, 4, 64, Options{})
	out, _ := s.run("atom a\nexit\natom b\n")
	require.Equal(t, "0\n", out)
	require.True(t, s.sh.Done())
}

func TestShell_Prompt(t *testing.T) {
	s := newSession(t, 4, 64, Options{Prompt: true})
	out, errOut := s.run("cellcount\ncellcount\n")
	require.Equal(t, lines("4", "4"), out)
	require.Equal(t, Prompt+Prompt+Prompt, errOut)
}

func TestShell_Encodings(t *testing.T) {
	for _, enc := range []string{"windows-1252", "latin1"} {
		t.Run(enc, func(t *testing.T) {
			s := newSession(t, 4, 64, Options{Encoding: enc})
			out, errOut := s.run("atom caf\xe9\ngetatom 0\n")
			require.Empty(t, errOut)
			require.Equal(t, lines("0", "café"), out)
		})
	}

	s := newSession(t, 4, 64, Options{})
	out, _ := s.run("atom café\ngetatom 0\n")
	require.Equal(t, lines("0", "café"), out)

	s = newSession(t, 4, 64, Options{Encoding: "ebcdic"})
	err := s.sh.Run(strings.NewReader("cellcount\n"))
	require.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestShell_FaultsPropagate(t *testing.T) {
	s := newSession(t, 16, 64, Options{})
	s.run("atom a\natom b\ncons 0 1\nsetcar 2 7\n")

	f := testutil.RequireFault(t, "reference count would become -1", func() {
		s.sh.Exec("free 2")
	})
	require.EqualValues(t, 7, f.Index)
}
