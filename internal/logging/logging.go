// Package logging builds the application's zerolog loggers and carries them,
// together with a per-command trace id, through contexts.
package logging

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config controls logger construction.
type Config struct {
	Level  string
	Format string
	// File, when set, receives logs instead of stderr.
	File string
	// Caller adds file:line to every event.
	Caller bool
}

// LogPathResult is the logger built by NewLoggerWithPath and where it writes.
type LogPathResult struct {
	Logger         zerolog.Logger
	FilePath       string
	UsingFile      bool
	FallbackUsed   bool
	FallbackReason string

	file *os.File
}

// Close closes the log file, if any.
func (r *LogPathResult) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ParseLevel parses level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLogger builds a logger writing to w.
func NewLogger(cfg Config, w io.Writer) zerolog.Logger {
	if cfg.Format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// NewLoggerWithPath builds the logger described by cfg. When the log file
// cannot be opened it falls back to stderr and says why.
func NewLoggerWithPath(cfg Config) LogPathResult {
	if cfg.File == "" {
		return LogPathResult{Logger: NewLogger(cfg, os.Stderr)}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return fallback(cfg, fmt.Sprintf("creating log directory: %v", err))
	}
	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fallback(cfg, fmt.Sprintf("opening log file: %v", err))
	}

	// Files always get JSON; warnings and errors still reach the terminal.
	fileCfg := cfg
	fileCfg.Format = FormatJSON
	multi := zerolog.MultiLevelWriter(f, levelFilter{
		w:   zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339},
		min: zerolog.WarnLevel,
	})
	return LogPathResult{
		Logger:    NewLogger(fileCfg, multi),
		FilePath:  cfg.File,
		UsingFile: true,
		file:      f,
	}
}

func fallback(cfg Config, reason string) LogPathResult {
	cfg.File = ""
	return LogPathResult{
		Logger:         NewLogger(cfg, os.Stderr),
		FallbackUsed:   true,
		FallbackReason: reason,
	}
}

// levelFilter passes events at or above min to w.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

// PrintLogPathMessage tells the user where logs go.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user file logging is off and why.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: logging to stderr: %s\n", reason)
}

// ComponentLogger tags l with a component name.
func ComponentLogger(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// FromContext returns the context's logger, or a disabled one. The trace id
// is attached when present.
func FromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return l
	}
	if id := TraceIDFromContext(ctx); id != "" {
		withTrace := l.With().Str("trace_id", id).Logger()
		return &withTrace
	}
	return l
}

type traceIDKey struct{}

// ContextWithTraceID stores id in ctx.
func ContextWithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext returns the trace id stored in ctx, if any.
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// GetOrGenerateTraceID returns ctx's trace id, or a new ULID.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return NewTraceID()
}

// NewTraceID returns a new ULID string.
func NewTraceID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
