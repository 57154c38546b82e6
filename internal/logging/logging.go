// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects where and how much to log.
type Options struct {
	Level string // trace, debug, info, warn, error; empty means info
	Debug bool   // forces debug level
	File  string // log file; empty means the XDG state dir
	// Console logs human-readable lines to stderr instead of a file.
	// The TUI owns the terminal, so only plain commands use it.
	Console bool
}

// DefaultFile returns the default log file location.
func DefaultFile() (string, error) {
	return xdg.StateFile(filepath.Join("eddy", "eddy.log"))
}

func parseLevel(opts Options) (zerolog.Level, error) {
	if opts.Debug {
		return zerolog.DebugLevel, nil
	}
	if opts.Level == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", opts.Level, err)
	}
	return level, nil
}

// Setup points the global logger at the configured output. The returned
// closer releases the log file.
func Setup(opts Options) (io.Closer, error) {
	level, err := parseLevel(opts)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(level)

	if opts.Console {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
		return io.NopCloser(nil), nil
	}

	path := opts.File
	if path == "" {
		if path, err = DefaultFile(); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}
