// Package logger configures structured slog logging for the flow kernel
// and its demo binary. Loggers are built with New and injected into the
// engines; the package-level Log and helpers exist for top-level code such
// as main functions.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide default logger. It starts as a no-op and is
// replaced by Init or InitWithConfig.
var Log = slog.New(slog.NewTextHandler(io.Discard, nil))

// Config describes the logger output.
type Config struct {
	Level      string
	Format     string // json, text
	Output     string // stdout, stderr, file
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Init installs a JSON stdout logger at the given level as the package
// default.
func Init(level string) {
	InitWithConfig(Config{
		Level:  level,
		Format: "json",
		Output: "stdout",
	})
}

// InitWithConfig installs a fully configured logger as the package default.
func InitWithConfig(cfg Config) {
	Log = New(cfg)
}

// New builds a logger from the config without touching the package default.
// Engines take a logger through their options, so callers that want
// isolated logging (tests, embedded use) build one here and pass it down.
func New(cfg Config) *slog.Logger {
	var lvl slog.Level
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var writer io.Writer
	switch cfg.Output {
	case "stderr":
		writer = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			cfg.FilePath = "logs/flowkit.log"
		}
		dir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			writer = os.Stdout
		} else {
			// lumberjack handles rotation.
			writer = &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
		}
	default:
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler)
}

// WithRunID returns the default logger annotated with a solve run ID.
func WithRunID(runID string) *slog.Logger {
	return Log.With("run_id", runID)
}

// WithComponent returns the default logger annotated with a component name.
func WithComponent(component string) *slog.Logger {
	return Log.With("component", component)
}

// Debug logs a debug message through the package default.
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Info logs an info message through the package default.
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Warn logs a warning through the package default.
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

// Error logs an error message through the package default.
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Fatal logs an error message and exits the process.
func Fatal(msg string, args ...any) {
	Log.Error(msg, args...)
	os.Exit(1)
}
