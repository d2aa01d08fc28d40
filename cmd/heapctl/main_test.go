package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile writes content to name inside a fresh temp dir and returns its
// path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCLI executes heapctl with args and stdin, returning the exit code and
// both output streams.
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	var in io.Reader = strings.NewReader(stdin)
	code := execute(args, in, &out, &errb)
	return code, out.String(), errb.String()
}

func TestExecute_Stdin(t *testing.T) {
	code, out, errOut := runCLI(t, "atom red\natom nil\ncons 0 1\nprint 2\ncellcount\n", "--cells", "8")
	require.Equal(t, exitOK, code)
	require.Empty(t, errOut, "no prompt when stdin is not a terminal")
	require.Equal(t, "0\n1\n2\n(red)\n8\n", out)
}

func TestExecute_PromptAlways(t *testing.T) {
	code, _, errOut := runCLI(t, "cellcount\n", "--cells", "2", "--prompt", "always")
	require.Equal(t, exitOK, code)
	require.Equal(t, "> > ", errOut)
}

func TestExecute_RunScript(t *testing.T) {
	script := writeFile(t, "list.txt", `# build (a b)
atom a
atom b
atom nil
cons 1 2
cons 0 3
print 4
bogus
`)
	code, out, errOut := runCLI(t, "", "run", script, "--cells", "16", "--text-bytes", "32")
	require.Equal(t, exitOK, code)
	require.Equal(t, "0\n1\n2\n3\n4\n(a b)\n", out)
	require.Equal(t, "Unrecognized command: bogus\n", errOut)
}

func TestExecute_RunMissingScript(t *testing.T) {
	code, _, errOut := runCLI(t, "", "run", filepath.Join(t.TempDir(), "nope.txt"))
	require.Equal(t, exitError, code)
	require.Contains(t, errOut, "failed to open script")
}

func TestExecute_Fault(t *testing.T) {
	code, out, errOut := runCLI(t, "atom a\natom b\ncons 0 1\nsetcar 2 7\nfree 2\ncellcount\n", "--cells", "16")
	require.Equal(t, exitFault, code)
	require.Equal(t, "0\n1\n2\n", out, "nothing runs after a fault")
	require.Contains(t, errOut, "PANIC: heap: refcount: cell 7: reference count would become -1")
}

func TestExecute_ConfigFile(t *testing.T) {
	cfg := writeFile(t, "heapctl.toml", "[heap]\ncells = 5\ntext_bytes = 16\n\n[shell]\nencoding = \"latin1\"\n")

	code, out, _ := runCLI(t, "cellcount\natom caf\xe9\ngetatom 0\n", "--config", cfg)
	require.Equal(t, exitOK, code)
	require.Equal(t, "5\n0\ncafé\n", out)

	code, out, _ = runCLI(t, "cellcount\n", "--config", cfg, "--cells", "6")
	require.Equal(t, exitOK, code)
	require.Equal(t, "6\n", out, "flags override the file")
}

func TestExecute_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"prompt", []string{"--prompt", "sometimes"}, "shell.prompt"},
		{"cells", []string{"--cells", "0"}, "heap.cells"},
		{"huge cells", []string{"--cells", "3000000000"}, "heap.cells"},
		{"encoding", []string{"--encoding", "ebcdic"}, "shell.encoding"},
		{"log level", []string{"--log-level", "loud"}, "log.level"},
		{"config", []string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, "cannot read"},
		{"extra arg", []string{"stray"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, "", tt.args...)
			require.Equal(t, exitError, code)
			require.Contains(t, errOut, tt.want)
		})
	}
}

func TestExecute_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "heapctl.log")
	code, out, _ := runCLI(t, "atom a\nfree 0\nreinit 4\n", "--cells", "8", "--log-level", "debug", "--log-file", logPath)
	require.Equal(t, exitOK, code)
	require.Equal(t, "0\n", out)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	logged := string(data)
	require.Contains(t, logged, "heap created")
	require.Contains(t, logged, "msg=free")
	require.Contains(t, logged, "heap reinitialized")
}

func TestExecute_Version(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	require.Equal(t, exitOK, code)
	require.Contains(t, out, "heapctl dev")
	require.Contains(t, out, "commit: none")
}
