// FILE: lixenwraith/reflector/xlog/logger.go
package xlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger is the printf-style logging surface used across the module.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
	// Write logs at an explicit level
	Write(level Level, format string, args ...any)
	// Enabled reports whether a line at level would be written
	Enabled(level Level) bool
}

// Config configures New. Output is not loaded from settings.
type Config struct {
	Level     Level         `toml:"level"`
	Format    string        `toml:"format"` // text or json
	AddSource bool          `toml:"add_source"`
	UTCOffset time.Duration `toml:"utc_offset"`
	Component string        `toml:"component"`
	Output    io.Writer     `toml:"-"`
}

// DefaultConfig returns a text logger at info level writing to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// SlogLogger writes formatted lines through a slog.Handler.
type SlogLogger struct {
	logger    *slog.Logger
	level     Level
	offset    time.Duration
	component string
}

var _ Logger = (*SlogLogger)(nil)

// New builds a SlogLogger from cfg. A nil Output falls back to stderr.
func New(cfg Config) *SlogLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slogLevel(), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return &SlogLogger{
		logger:    slog.New(handler),
		level:     cfg.Level,
		offset:    cfg.UTCOffset,
		component: cfg.Component,
	}
}

// NewSlogAdapter wraps an existing *slog.Logger. Every level is forwarded and slog's
// handler decides what to keep.
func NewSlogAdapter(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger, level: LevelAll}
}

// WithComponent returns a copy tagging every line with component.
func (l *SlogLogger) WithComponent(component string) *SlogLogger {
	nl := *l
	nl.component = component
	return &nl
}

func (l *SlogLogger) Enabled(level Level) bool {
	return level != LevelOff && level >= l.level && l.level != LevelOff
}

func (l *SlogLogger) Write(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := Format(format, l.offset, args...)
	if l.component != "" {
		l.logger.LogAttrs(context.Background(), level.slogLevel(), msg, slog.String("component", l.component))
		return
	}
	l.logger.LogAttrs(context.Background(), level.slogLevel(), msg)
}

func (l *SlogLogger) Debug(format string, args ...any) { l.Write(LevelDebug, format, args...) }
func (l *SlogLogger) Info(format string, args ...any)  { l.Write(LevelInfo, format, args...) }
func (l *SlogLogger) Warn(format string, args ...any)  { l.Write(LevelWarn, format, args...) }
func (l *SlogLogger) Error(format string, args ...any) { l.Write(LevelError, format, args...) }
func (l *SlogLogger) Fatal(format string, args ...any) { l.Write(LevelFatal, format, args...) }

// Null discards everything.
var Null Logger = nullLogger{}

type nullLogger struct{}

func (nullLogger) Debug(string, ...any)        {}
func (nullLogger) Info(string, ...any)         {}
func (nullLogger) Warn(string, ...any)         {}
func (nullLogger) Error(string, ...any)        {}
func (nullLogger) Fatal(string, ...any)        {}
func (nullLogger) Write(Level, string, ...any) {}
func (nullLogger) Enabled(Level) bool          { return false }
