package shell

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joshuapare/conskit/heap/alloc"
	"github.com/joshuapare/conskit/heap/intern"
	"github.com/joshuapare/conskit/heap/printer"
	"github.com/joshuapare/conskit/heap/rc"
	"github.com/joshuapare/conskit/heap/verify"
	"github.com/joshuapare/conskit/internal/format"
)

type argKind int

const (
	argIndex argKind = iota
	argNumber
	argWord
	argOptWord
)

func (k argKind) numeric() bool { return k == argIndex || k == argNumber }

type command struct {
	args  []argKind
	usage string
	help  string
	run   func(s *Shell, a args)
}

func (c command) required() int {
	n := 0
	for _, k := range c.args {
		if k != argOptWord {
			n++
		}
	}
	return n
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"getcar": {
			args: []argKind{argIndex}, usage: "getcar <index>",
			help: "Print the car field of a cell",
			run:  func(s *Shell, a args) { s.getField(a, format.FieldCar) },
		},
		"getcdr": {
			args: []argKind{argIndex}, usage: "getcdr <index>",
			help: "Print the cdr field of a cell",
			run:  func(s *Shell, a args) { s.getField(a, format.FieldCdr) },
		},
		"gettag": {
			args: []argKind{argIndex}, usage: "gettag <index>",
			help: "Print the tag of a cell",
			run:  (*Shell).getTag,
		},
		"getrefs": {
			args: []argKind{argIndex}, usage: "getrefs <index>",
			help: "Print the reference count of a cell",
			run:  func(s *Shell, a args) { s.getField(a, format.FieldRefCount) },
		},
		"getatom": {
			args: []argKind{argIndex}, usage: "getatom <index>",
			help: "Print the text of an atom",
			run:  (*Shell).getAtom,
		},
		"setcar": {
			args: []argKind{argIndex, argNumber}, usage: "setcar <index> <value>",
			help: "Overwrite the car field (reference counts are not updated)",
			run:  func(s *Shell, a args) { s.setField(a, format.FieldCar) },
		},
		"setcdr": {
			args: []argKind{argIndex, argNumber}, usage: "setcdr <index> <value>",
			help: "Overwrite the cdr field (reference counts are not updated)",
			run:  func(s *Shell, a args) { s.setField(a, format.FieldCdr) },
		},
		"settag": {
			args: []argKind{argIndex, argWord}, usage: "settag <index> <tag>",
			help: "Overwrite the tag: uninit, atom, cons or freed",
			run:  (*Shell).setTag,
		},
		"setatom": {
			args: []argKind{argIndex, argWord}, usage: "setatom <index> <text>",
			help: "Make a cell an atom (reference counts are not updated)",
			run:  (*Shell).setAtom,
		},
		"alloc": {
			usage: "alloc",
			help:  "Allocate a blank cell and print its index",
			run:   (*Shell).alloc,
		},
		"atom": {
			args: []argKind{argWord}, usage: "atom <text>",
			help: "Allocate an atom and print its index",
			run:  (*Shell).allocAtom,
		},
		"cons": {
			args: []argKind{argIndex, argIndex}, usage: "cons <car> <cdr>",
			help: "Allocate a cons and print its index",
			run:  (*Shell).allocCons,
		},
		"free": {
			args: []argKind{argIndex}, usage: "free <index>",
			help: "Return an unreferenced cell to the free-list",
			run:  (*Shell).free,
		},
		"erase": {
			args: []argKind{argIndex}, usage: "erase <index>",
			help: "Reset an unreferenced cell to uninit without freeing it",
			run:  (*Shell).erase,
		},
		"print": {
			args: []argKind{argIndex, argOptWord}, usage: "print <index> [text|json]",
			help: "Print the structure rooted at a cell",
			run:  (*Shell).printCell,
		},
		"cellcount": {
			usage: "cellcount",
			help:  "Print the number of cells",
			run:   func(s *Shell, _ args) { s.print(s.h.CellCount()) },
		},
		"reinit": {
			args: []argKind{argNumber}, usage: "reinit <count>",
			help: "Replace the heap with an empty one of count cells",
			run:  (*Shell).reinit,
		},
		"check": {
			usage: "check",
			help:  "Verify heap invariants",
			run:   (*Shell).check,
		},
		"stats": {
			usage: "stats",
			help:  "Print cell and text buffer usage",
			run:   (*Shell).stats,
		},
		"help": {
			usage: "help",
			help:  "List commands",
			run:   (*Shell).help,
		},
		"exit": {
			usage: "exit",
			help:  "Stop reading commands",
			run:   func(s *Shell, _ args) { s.done = true },
		},
	}
	quit := commands["exit"]
	quit.usage = "quit"
	commands["quit"] = quit
}

func (s *Shell) getField(a args, f format.Field) {
	i := a.ref(0)
	if !s.inRange(i) {
		return
	}
	s.print(s.h.Field(i, f))
}

func (s *Shell) setField(a args, f format.Field) {
	i := a.ref(0)
	if !s.inRange(i) {
		return
	}
	s.h.SetField(i, f, a.nums[1])
}

func (s *Shell) getTag(a args) {
	i := a.ref(0)
	if !s.inRange(i) {
		return
	}
	s.print(s.h.Tag(i))
}

func (s *Shell) setTag(a args) {
	i := a.ref(0)
	if !s.inRange(i) {
		return
	}
	tag, err := format.ParseTag(a.words[1])
	if err != nil {
		s.fail("Unrecognized tag: %s", a.words[1])
		return
	}
	s.h.SetTag(i, tag)
}

func (s *Shell) getAtom(a args) {
	i := a.ref(0)
	if !s.inRange(i) {
		return
	}
	if !s.h.HasText(i) {
		s.fail("The cell at index %d is not an atom", i)
		return
	}
	s.print(printer.Atom(s.h.Text(i)))
}

func (s *Shell) setAtom(a args) {
	i := a.ref(0)
	if !s.inRange(i) {
		return
	}
	if err := s.h.SetAtomRaw(i, a.words[1]); err != nil {
		s.textError(err, a.words[1])
	}
}

func (s *Shell) alloc(args) {
	i, err := s.h.Alloc()
	if err != nil {
		s.fail("No free cells")
		return
	}
	s.print(i)
}

func (s *Shell) allocAtom(a args) {
	i, err := s.h.AllocAtom(a.words[0])
	switch {
	case errors.Is(err, alloc.ErrNoSpace):
		s.fail("No free cells")
	case err != nil:
		s.textError(err, a.words[0])
	default:
		s.print(i)
	}
}

func (s *Shell) textError(err error, text string) {
	switch {
	case errors.Is(err, intern.ErrNoSpace):
		s.fail("Out of atom space")
	case errors.Is(err, intern.ErrInvalidText):
		s.fail("Invalid atom text: %q", text)
	default:
		s.fail("%v", err)
	}
}

func (s *Shell) allocCons(a args) {
	car, cdr := a.ref(0), a.ref(1)
	if !s.live(car) || !s.live(cdr) {
		return
	}
	i, err := s.h.AllocCons(car, cdr)
	if err != nil {
		s.fail("No free cells")
		return
	}
	s.print(i)
}

func (s *Shell) free(a args) {
	i := a.ref(0)
	if !s.live(i) {
		return
	}
	if err := s.h.Free(i); err != nil {
		var refErr *rc.ReferencedError
		if errors.As(err, &refErr) {
			s.fail("The cell at index %d has references to it", i)
			return
		}
		s.fail("%v", err)
	}
}

func (s *Shell) erase(a args) {
	i := a.ref(0)
	if !s.inRange(i) {
		return
	}
	if i >= s.h.FreeList().Boundary() || s.h.Tag(i) == format.TagFreed {
		s.fail("Invalid index: %d", i)
		return
	}
	if !s.h.IsUnreferenced(i) {
		s.fail("The cell at index %d has references to it", i)
		return
	}
	s.h.Erase(i)
}

func (s *Shell) printCell(a args) {
	i := a.ref(0)
	if !s.inRange(i) {
		return
	}
	opts := printer.DefaultOptions()
	if len(a.words) > 1 {
		switch f := printer.Format(a.words[1]); f {
		case printer.FormatText, printer.FormatJSON:
			opts.Format = f
		default:
			s.fail("Unrecognized format: %s", a.words[1])
			return
		}
	}
	if err := printer.Fprint(s.out, s.h.Arena(), i, opts); err != nil {
		s.fail("%v", err)
	}
}

func (s *Shell) reinit(a args) {
	n := int(a.nums[0])
	if n <= 0 {
		s.fail("Invalid cell count: %d", n)
		return
	}
	h, err := rc.New(n, s.h.Arena().TextCap(), rc.WithLogger(s.log))
	if err != nil {
		s.fail("%v", err)
		return
	}
	s.h = h
	s.log.Info("heap reinitialized", "cells", n)
}

func (s *Shell) check(args) {
	if err := verify.AllInvariants(s.h.Arena(), s.h.FreeList()); err != nil {
		s.fail("%v", err)
		return
	}
	s.print("OK")
}

func (s *Shell) stats(args) {
	st := s.h.Stats()
	fmt.Fprintf(s.out, "cells:       %d (%d atom, %d cons, %d uninit, %d freed)\n",
		st.Cells, st.Atoms, st.Conses, st.Uninit, st.Freed)
	fmt.Fprintf(s.out, "referenced:  %d\n", st.Referenced)
	fmt.Fprintf(s.out, "boundary:    %d\n", st.Boundary)
	fmt.Fprintf(s.out, "available:   %d\n", st.Available)
	fmt.Fprintf(s.out, "utilization: %.1f%%\n", st.Utilization*100)
	fmt.Fprintf(s.out, "text:        %d/%d bytes, %d strings\n", st.TextUsed, st.TextCap, st.Strings)
}

func (s *Shell) help(args) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(&sb, "  %-28s %s\n", c.usage, c.help)
	}
	fmt.Fprint(s.out, sb.String())
}
