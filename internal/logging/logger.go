// Package logging builds the logrus logger shared by the command-line
// front ends.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	// Level is a logrus level name: debug, info, warn, error.
	Level string

	// Verbose forces the debug level.
	Verbose bool

	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer

	// File, when set, receives a plain copy of every line (append mode).
	File string
}

// Logger wraps a logrus.Logger and owns the optional log file.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New creates a Logger. Colors are enabled only when Output is a terminal
// and NO_COLOR is unset. Call Close when done if File was set.
func New(opts Options) (*Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	if opts.Verbose {
		level = logrus.DebugLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	l := &Logger{Logger: logrus.New()}
	l.SetLevel(level)

	color := isTerminal(out) && os.Getenv("NO_COLOR") == ""
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     color,
		DisableColors:   !color,
	})

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		if color {
			// Keep escape codes out of the file.
			l.SetFormatter(&logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05",
				DisableColors:   true,
			})
		}
		out = io.MultiWriter(out, f)
	}
	l.SetOutput(out)

	return l, nil
}

// Discard returns a logger that drops everything. Used by tests and the TUI.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
