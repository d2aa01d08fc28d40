// Package shell implements the line-oriented heap command language.
//
// Each line is one command: a name followed by space separated arguments.
// Results go to the output writer and user errors to the error writer, one
// per line. Heap faults raised by a command are not recovered here.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/transform"

	"github.com/joshuapare/conskit/heap"
	"github.com/joshuapare/conskit/heap/rc"
	"github.com/joshuapare/conskit/internal/logger"
)

// Prompt is written to the error writer before each line when prompting
// is enabled.
const Prompt = "> "

// maxLine bounds the length of one input line.
const maxLine = 1 << 20

// Options configures a Shell.
type Options struct {
	// Prompt enables the "> " prompt.
	Prompt bool

	// Encoding names the input encoding (see LookupEncoding).
	// Default: utf-8
	Encoding string

	// Logger receives command level events. Default: discard.
	Logger *slog.Logger
}

// Shell executes commands against one heap. It is not safe for concurrent
// use.
type Shell struct {
	h    *rc.Heap
	out  io.Writer
	errw io.Writer
	opts Options
	log  *slog.Logger
	done bool
}

// New creates a Shell over h.
func New(h *rc.Heap, out, errOut io.Writer, opts Options) *Shell {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Shell{h: h, out: out, errw: errOut, opts: opts, log: log}
}

// Heap returns the current heap. reinit replaces it.
func (s *Shell) Heap() *rc.Heap { return s.h }

// Done reports whether an exit command has been run.
func (s *Shell) Done() bool { return s.done }

// Run executes every line of r until EOF or an exit command.
func (s *Shell) Run(r io.Reader) error {
	enc, err := LookupEncoding(s.opts.Encoding)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(transform.NewReader(r, enc.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 4096), maxLine)

	for !s.done {
		if s.opts.Prompt {
			io.WriteString(s.errw, Prompt)
		}
		if !scanner.Scan() {
			break
		}
		s.Exec(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// Exec runs one command line. Blank lines and lines starting with '#' are
// ignored.
func (s *Shell) Exec(line string) {
	words := strings.Fields(line)
	if len(words) == 0 || strings.HasPrefix(words[0], "#") {
		return
	}

	name := words[0]
	cmd, ok := commands[name]
	if !ok {
		s.fail("Unrecognized command: %s", name)
		return
	}

	a, ok := s.parseArgs(name, cmd, words[1:])
	if !ok {
		return
	}
	cmd.run(s, a)
}

// args holds the parsed arguments of one command. nums[i] is only
// meaningful when the i-th argument is numeric.
type args struct {
	words []string
	nums  []int32
}

func (a args) ref(i int) heap.Ref { return heap.Ref(a.nums[i]) }

// parseArgs checks arity and numbers left to right, so the first problem
// in the line is the one reported.
func (s *Shell) parseArgs(name string, cmd command, words []string) (args, bool) {
	a := args{words: words, nums: make([]int32, len(words))}
	for i, kind := range cmd.args {
		if i >= len(words) {
			if i < cmd.required() {
				s.fail("Too few arguments to %s", name)
				return a, false
			}
			break
		}
		if kind.numeric() {
			n, err := strconv.ParseInt(words[i], 10, 32)
			if err != nil {
				s.fail("Invalid number: %s", words[i])
				return a, false
			}
			a.nums[i] = int32(n)
		}
	}
	if len(words) > len(cmd.args) {
		s.fail("Too many arguments to %s", name)
		return a, false
	}
	return a, true
}

func (s *Shell) print(v any) {
	fmt.Fprintln(s.out, v)
}

func (s *Shell) fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.log.Debug("command failed", "error", msg)
	fmt.Fprintln(s.errw, msg)
}

// inRange reports whether i names a cell, complaining when it does not.
func (s *Shell) inRange(i heap.Ref) bool {
	if !s.h.InRange(i) {
		s.fail("Index out of range: %d", i)
		return false
	}
	return true
}

// live reports whether i names a cell holding a value, complaining when it
// does not.
func (s *Shell) live(i heap.Ref) bool {
	if !s.h.InRange(i) || !s.h.IsLive(i) {
		s.fail("Invalid index: %d", i)
		return false
	}
	return true
}
