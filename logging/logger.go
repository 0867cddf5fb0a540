package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents logging levels
type LogLevel string

const (
	// LogLevelDebug enables all logs
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo enables info, warn, and error logs
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn enables warn and error logs
	LogLevelWarn LogLevel = "warn"
	// LogLevelError enables only error logs
	LogLevelError LogLevel = "error"
)

// Format selects the slog handler used for output.
type Format string

const (
	// FormatJSON writes one JSON object per line
	FormatJSON Format = "json"
	// FormatText writes colored, human readable lines for the operator console
	FormatText Format = "text"
)

type traceIDKey struct{}

// Logger is the application's custom logger
type Logger struct {
	*slog.Logger
}

// Options configures NewLoggerWithOptions.
type Options struct {
	Level  LogLevel
	Format Format
	Output io.Writer
	// File enables a rotating log file next to Output when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewLogger creates a new JSON logger with the specified level and output
func NewLogger(level LogLevel, output io.Writer) *Logger {
	return NewLoggerWithOptions(Options{Level: level, Format: FormatJSON, Output: output})
}

// NewLoggerWithOptions builds a logger for the given format, optionally
// tee'ing every record to a rotating file.
func NewLoggerWithOptions(opts Options) *Logger {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	noColor := false
	if opts.File != "" {
		output = io.MultiWriter(output, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 7),
		})
		noColor = true
	}

	logLevel := parseLevel(opts.Level)

	var handler slog.Handler
	switch opts.Format {
	case FormatText:
		handler = tint.NewHandler(output, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
			NoColor:    noColor,
		})
	default:
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: logLevel,
		})
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

func parseLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ContextWithTraceID stores a trace id that WithContext attaches to log records.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID returns the trace id stored in ctx, if any.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// WithContext adds context values to the logger
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id := TraceID(ctx)
	if id == "" {
		return l
	}

	return &Logger{
		Logger: l.Logger.With("trace_id", id),
	}
}

// WithFields adds structured fields to the logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	if len(fields) == 0 {
		return l
	}

	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}

	return &Logger{
		Logger: l.Logger.With(attrs...),
	}
}

// Default returns a default logger with info level directed to stdout
func Default() *Logger {
	return NewLogger(LogLevelInfo, os.Stdout)
}
