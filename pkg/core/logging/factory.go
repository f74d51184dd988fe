// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers from configuration
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	mdwlog "github.com/msto63/rungc/foundation/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Logger name shown in text output
	Name string

	// Log level (trace, debug, info, warn, error, fatal)
	Level string

	// Output format: "json", "text" or "console" (default: text)
	Format string

	// Primary output (default: os.Stderr)
	Output io.Writer

	// Additional outputs, e.g. a log file writer
	AdditionalOutputs []io.Writer

	// Caller information in every entry
	EnableCaller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "info",
		Format: "text",
	}
}

// NewLogger creates a new Foundation logger
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:        parseLevel(cfg.Level),
		Format:       parseFormat(cfg.Format),
		Output:       output,
		Name:         cfg.Name,
		EnableCaller: cfg.EnableCaller,
	})
}

// NewSimpleLogger creates a text logger at info level writing to stderr
func NewSimpleLogger(name string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(name))
}

// parseLevel converts a string level, falling back to info
func parseLevel(level string) mdwlog.Level {
	parsed, err := mdwlog.ParseLevel(level)
	if err != nil {
		return mdwlog.LevelInfo
	}
	return parsed
}

// parseFormat converts a string format, falling back to text
func parseFormat(format string) mdwlog.Format {
	parsed, err := mdwlog.ParseFormat(format)
	if err != nil {
		return mdwlog.FormatText
	}
	return parsed
}
