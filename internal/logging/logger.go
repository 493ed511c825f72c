// SPDX-License-Identifier: EPL-2.0

// Package logging builds the structured logger shared by the CLI and the
// pipeline. Records go to stderr and, when configured, to an append-only
// log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ik5/mp32cdda/internal/config"
)

// App is attached to every record.
const App = "mp32cdda"

// Logger is a slog.Logger with an optional file sink. Call Close when done
// if LogFile was set.
type Logger struct {
	*slog.Logger

	mu   sync.Mutex
	file *os.File
}

// NewLogger logs to stderr at INFO, or DEBUG when cfg.Verbose is set, and
// additionally appends to cfg.LogFile when it is not empty.
func NewLogger(cfg *config.Config) (*Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg *config.Config, console io.Writer) (*Logger, error) {
	l := &Logger{}
	out := console

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		out = io.MultiWriter(console, f)
	}

	l.Logger = New(out, cfg.Verbose)
	return l, nil
}

// New returns a text logger writing to w.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("app", App)
}

// Discard returns a logger that drops everything, for tests and library
// callers that pass no logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
