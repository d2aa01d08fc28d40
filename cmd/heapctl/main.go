package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/conskit/heap"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitFault = 2
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command line and maps the outcome to an exit code. A
// heap fault ends the run: it is reported and never resumed.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		f, ok := heap.AsFault(r)
		if !ok {
			panic(r)
		}
		fmt.Fprintf(stderr, "PANIC: %v\n", f)
		code = exitFault
	}()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
