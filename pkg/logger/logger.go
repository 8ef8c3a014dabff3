// Package logger provides slog-based structured logging helpers: a factory
// producing configured *slog.Logger instances and typed attribute
// constructors for the keys used across the module.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for production log aggregation.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for development debugging.
	FormatText Format = "text"
)

// Config describes logger settings, typically populated from the
// environment via pkg/config.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format Format `env:"LOG_FORMAT" envDefault:"json"`
}

type options struct {
	level  slog.Level
	format Format
	output io.Writer
}

// Option configures logger creation.
type Option func(*options)

// WithLevel sets the minimum level the logger emits.
func WithLevel(l slog.Level) Option {
	return func(o *options) { o.level = l }
}

// WithFormat sets the output format. Invalid formats panic to enforce
// fail-fast initialization.
func WithFormat(f Format) Option {
	return func(o *options) {
		switch f {
		case FormatJSON, FormatText:
			o.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

// WithOutput redirects log output, mostly useful in tests.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// New creates a configured *slog.Logger. Defaults: info level, JSON format,
// stderr output.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: o.level}
	var h slog.Handler
	switch o.format {
	case FormatText:
		h = slog.NewTextHandler(o.output, hopts)
	default:
		h = slog.NewJSONHandler(o.output, hopts)
	}
	return slog.New(h)
}

// NewFromConfig creates a logger from an environment-driven Config.
func NewFromConfig(cfg Config) *slog.Logger {
	return New(WithLevel(parseLevel(cfg.Level)), WithFormat(cfg.Format))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
