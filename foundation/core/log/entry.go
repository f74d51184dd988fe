// File: entry.go
// Title: Log Entry Structure
// Description: Defines the entry handed to formatters: level, message,
//              build ID, fields, error and optional duration and caller.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive log entry structure
// - 2026-10-14 v0.2.0: BuildID context, field helpers reduced
// - 2026-10-14 v0.3.0: Field helpers removed, caller reduced to file and line

package log

import (
	"time"
)

// Fields holds the key-value pairs of a structured entry
type Fields map[string]interface{}

// Entry is a single log message
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Logger    string

	// BuildID correlates every entry of one compilation run
	BuildID string

	Fields   Fields
	Error    error
	Duration time.Duration
	Caller   *CallerInfo
}

// CallerInfo is the source position of the logging call
type CallerInfo struct {
	File string
	Line int
}

// NewEntry creates an entry stamped with the current time
func NewEntry(level Level, message string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    make(Fields),
	}
}
