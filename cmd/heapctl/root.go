package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/conskit/heap/rc"
	"github.com/joshuapare/conskit/internal/config"
	"github.com/joshuapare/conskit/internal/logger"
	"github.com/joshuapare/conskit/internal/shell"
	"github.com/joshuapare/conskit/internal/term"
)

// globalFlags are the persistent flags shared by every command. Each one
// overrides the matching key of the config file when set.
type globalFlags struct {
	config    string
	cells     int
	textBytes int
	encoding  string
	prompt    string
	logLevel  string
	logFile   string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "heapctl",
		Short: "Drive a reference-counted cons cell heap from the command line",
		Long: `heapctl reads heap commands, one per line, from standard input and
runs them against a fixed-size heap of cons cells and interned atoms.

Example:
  heapctl --cells 1024
  echo "atom red" | heapctl
  heapctl run script.txt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, &g, cmd.InOrStdin())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.config, "config", "", "Config file (default ./"+config.FileName+" if present)")
	pf.IntVar(&g.cells, "cells", config.DefaultCells, "Number of cells in the heap")
	pf.IntVar(&g.textBytes, "text-bytes", config.DefaultTextBytes, "Size of the atom text buffer in bytes")
	pf.StringVar(&g.encoding, "encoding", config.DefaultEncoding, "Input encoding: utf-8, windows-1252 or latin1")
	pf.StringVar(&g.prompt, "prompt", config.PromptAuto, "Show the prompt: auto, always or never")
	pf.StringVar(&g.logLevel, "log-level", config.DefaultLogLevel, "Enable logging at this level")
	pf.StringVar(&g.logFile, "log-file", "", "Enable logging to this file instead of stderr")

	cmd.AddCommand(newRunCmd(&g))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig reads the config file and applies any flags the user set.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.config != "" {
		cfg, err = config.Load(g.config)
	} else {
		cfg, err = config.LoadOptional(config.FileName)
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("cells") {
		cfg.Heap.Cells = g.cells
	}
	if f.Changed("text-bytes") {
		cfg.Heap.TextBytes = g.textBytes
	}
	if f.Changed("encoding") {
		cfg.Shell.Encoding = g.encoding
	}
	if f.Changed("prompt") {
		cfg.Shell.Prompt = g.prompt
	}
	if f.Changed("log-level") {
		cfg.Log.Enabled = true
		cfg.Log.Level = g.logLevel
	}
	if f.Changed("log-file") {
		cfg.Log.Enabled = true
		cfg.Log.Path = g.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runShell builds the heap described by the configuration and feeds it
// every line of in.
func runShell(cmd *cobra.Command, g *globalFlags, in io.Reader) error {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}

	log, closer, err := logger.New(cfg.LoggerOptions(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	h, err := rc.New(cfg.Heap.Cells, cfg.Heap.TextBytes, rc.WithLogger(log))
	if err != nil {
		return err
	}
	log.Info("heap created", "cells", cfg.Heap.Cells, "text_bytes", cfg.Heap.TextBytes)

	sh := shell.New(h, cmd.OutOrStdout(), cmd.ErrOrStderr(), shell.Options{
		Prompt:   showPrompt(cfg.Shell.Prompt, in),
		Encoding: cfg.Shell.Encoding,
		Logger:   log,
	})
	if err := sh.Run(in); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}

func showPrompt(mode string, in io.Reader) bool {
	switch mode {
	case config.PromptAlways:
		return true
	case config.PromptNever:
		return false
	default:
		f, ok := in.(*os.File)
		return ok && term.IsTerminal(f)
	}
}
