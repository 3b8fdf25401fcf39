// Package logging builds the structured file logger used by devteam.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// Options configures a logger.
type Options struct {
	// Level is a zap level name such as "debug" or "warn".
	Level string
	// File is the log file path. An empty path disables logging.
	File string
}

// DefaultFile returns the log file path for a project root.
func DefaultFile(root string) string {
	return filepath.Join(root, ".devteam", "logs", "devteam.log")
}

// New builds a JSON logger that appends to opts.File.
// The terminal is never written to, so the logger is safe to use under the TUI.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.File == "" {
		return zap.NewNop(), nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "json"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{opts.File}
	config.ErrorOutputPaths = []string{opts.File}
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// ForProject builds a logger writing to the project's log file.
// It falls back to a no-op logger when the file cannot be opened.
func ForProject(root, level string) *zap.Logger {
	logger, err := New(Options{Level: level, File: DefaultFile(root)})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ParseLevel parses a level name. An empty name gives DefaultLevel.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = DefaultLevel
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
