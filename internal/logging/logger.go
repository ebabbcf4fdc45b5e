// Package logging provides the leveled console logger shared by the batch
// driver and job runner. Console lines are optionally colored; when a log
// file is configured every line is also appended there through an hclog
// sink. The logger is created once in main and closed when the batch ends.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/backmassage/colorbatch/internal/config"
	"github.com/backmassage/colorbatch/internal/term"
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu      sync.Mutex
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
	sink    hclog.Logger
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile for appending. Call Close when the batch is done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	l := &Logger{
		verbose: cfg.Verbose,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		level := hclog.Info
		if cfg.Verbose {
			level = hclog.Debug
		}
		l.file = f
		l.sink = hclog.New(&hclog.LoggerOptions{
			Name:       "colorbatch",
			Level:      level,
			Output:     f,
			Color:      hclog.ColorOff,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}
	return l, nil
}

// New returns a console-only logger writing to w. Used by tests and by
// callers that manage their own output streams.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{verbose: verbose, stdout: w, stderr: w}
}

// Writer returns the console stream used for non-error output. Progress
// bars write here so they interleave correctly with log lines.
func (l *Logger) Writer() io.Writer { return l.stdout }

// Close flushes and closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.sink = nil
	return err
}

func (l *Logger) line(level hclog.Level, label, color, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.stdout
	if level == hclog.Error {
		out = l.stderr
	}
	if color != "" {
		_, _ = io.WriteString(out, ts+" "+color+"["+label+"]"+term.NC+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, ts+" ["+label+"] "+text+"\n")
	}
	if l.sink != nil {
		l.sink.Log(level, text)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(hclog.Info, "INFO", term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green). The file sink records it as INFO.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(hclog.Info, "SUCCESS", term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(hclog.Warn, "WARN", term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(hclog.Error, "ERROR", term.Red, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line(hclog.Debug, "DEBUG", term.Cyan, fmt.Sprintf(format, args...))
}
