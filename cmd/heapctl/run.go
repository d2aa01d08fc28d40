package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Run the commands in a script file",
		Long: `The run command executes a file of heap commands as if it had been
typed at the prompt. Lines starting with # are comments.

Example:
  heapctl run build-list.txt
  heapctl run --cells 64 --log-level debug build-list.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()
			return runShell(cmd, g, f)
		},
	}
}
