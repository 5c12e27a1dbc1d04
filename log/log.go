// Package log configures structured logging for the PeerDAS commitment
// library and its tooling. The cryptographic core itself never logs;
// the trusted-setup loader reports load progress and the daskzg CLI
// reports command outcomes, both through module-scoped slog loggers
// configured here.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

// Format selects the handler encoding.
type Format string

const (
	// FormatJSON emits one JSON object per record; the default for
	// services scraping stderr.
	FormatJSON Format = "json"
	// FormatText emits human-readable key=value lines; the default for
	// interactive CLI use.
	FormatText Format = "text"
)

// Config describes a logger destination. The zero value logs JSON at
// Info to stderr.
type Config struct {
	// Level is the minimum record level.
	Level slog.Level
	// Format picks the handler encoding; unknown values fall back to JSON.
	Format Format
	// Output receives the records; nil means stderr.
	Output io.Writer
}

// Logger embeds slog.Logger, so every slog method is available
// directly; the additions below are module scoping and configuration.
type Logger struct {
	*slog.Logger
}

// defaultLogger is swapped atomically so goroutines that log (the setup
// loader, the CLI) can do so while the CLI reconfigures verbosity.
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(Config{}))
}

// New builds a Logger from a Config.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// SetDefault replaces the process-wide logger. A nil argument is ignored.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// Default returns the current process-wide logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// Module returns a child logger tagged with a "module" attribute
// (kzg, daskzg, ...).
func (l *Logger) Module(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("module", name))}
}

// Module returns a module-tagged child of the default logger.
func Module(name string) *Logger {
	return Default().Module(name)
}

// VerbosityLevel maps a CLI -verbosity integer onto a slog level:
// 0 silences everything below Error, 1 warns, 2 informs (the default),
// and 3 or more enables debug output.
func VerbosityLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelWarn
	case v == 2:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Elapsed renders the time since start as a duration attribute; the
// trusted-setup loader uses it to report how long a load took.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}
