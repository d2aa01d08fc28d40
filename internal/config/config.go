// Package config handles heapctl.toml configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/joshuapare/conskit/internal/logger"
)

// FileName is the configuration file looked up when no path is given.
const FileName = "heapctl.toml"

const (
	DefaultCells     = 1024 * 1024
	DefaultTextBytes = 64 * 1024
	DefaultEncoding  = "utf-8"
	DefaultLogLevel  = "info"

	// MaxCells is the largest cell count a cell reference can address.
	MaxCells = math.MaxInt32
)

// Prompt modes.
const (
	PromptAuto   = "auto"
	PromptAlways = "always"
	PromptNever  = "never"
)

// Encodings accepted for shell input.
var Encodings = []string{"utf-8", "windows-1252", "latin1"}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config represents a heapctl.toml file.
type Config struct {
	Heap  Heap  `toml:"heap"`
	Shell Shell `toml:"shell"`
	Log   Log   `toml:"log"`
}

// Heap sizes the arena.
type Heap struct {
	Cells     int `toml:"cells"`
	TextBytes int `toml:"text_bytes"`
}

// Shell configures the command loop.
type Shell struct {
	Prompt   string `toml:"prompt"`
	Encoding string `toml:"encoding"`
}

// Log configures logging.
type Log struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	Format  string `toml:"format"`
	Path    string `toml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Heap: Heap{
			Cells:     DefaultCells,
			TextBytes: DefaultTextBytes,
		},
		Shell: Shell{
			Prompt:   PromptAuto,
			Encoding: DefaultEncoding,
		},
		Log: Log{
			Level:  DefaultLogLevel,
			Format: logger.FormatText,
		},
	}
}

// Load parses the file at path over the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s in %s", ErrInvalid, undecoded[0], path)
	}
	return c, nil
}

// LoadOptional is Load, except that a missing file yields Default.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate rejects out-of-range sizes and unknown enumerations.
func (c *Config) Validate() error {
	if c.Heap.Cells <= 0 || c.Heap.Cells > MaxCells {
		return fmt.Errorf("%w: heap.cells must be in [1, %d], got %d", ErrInvalid, MaxCells, c.Heap.Cells)
	}
	if c.Heap.TextBytes <= 0 {
		return fmt.Errorf("%w: heap.text_bytes must be positive, got %d", ErrInvalid, c.Heap.TextBytes)
	}

	switch c.Shell.Prompt {
	case PromptAuto, PromptAlways, PromptNever:
	default:
		return fmt.Errorf("%w: shell.prompt %q", ErrInvalid, c.Shell.Prompt)
	}
	if !knownEncoding(c.Shell.Encoding) {
		return fmt.Errorf("%w: shell.encoding %q", ErrInvalid, c.Shell.Encoding)
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// LoggerOptions converts the [log] section. Call Validate first.
func (c *Config) LoggerOptions() logger.Options {
	level, _ := logger.ParseLevel(c.Log.Level)
	return logger.Options{
		Enabled: c.Log.Enabled,
		Level:   level,
		Format:  c.Log.Format,
		Path:    c.Log.Path,
	}
}

func knownEncoding(name string) bool {
	for _, e := range Encodings {
		if e == name {
			return true
		}
	}
	return false
}
