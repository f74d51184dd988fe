// File: level.go
// Title: Log Level Definitions
// Description: Defines log levels with their long, short and console color
//              renderings and parses them from configuration strings.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with standard log levels
// - 2026-10-14 v0.2.0: Dropped audit level
// - 2026-10-14 v0.3.0: Table driven names, short aliases removed

package log

import (
	"strings"
)

// Level represents the importance level of a log message
type Level int

const (
	// LevelTrace is the most verbose level, e.g. every token
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError

	// LevelFatal exits the program after logging
	LevelFatal
)

var levelNames = [...]struct {
	name  string
	short string
	color string
}{
	LevelTrace: {"trace", "TRC", "\033[37m"},
	LevelDebug: {"debug", "DBG", "\033[36m"},
	LevelInfo:  {"info", "INF", "\033[32m"},
	LevelWarn:  {"warn", "WRN", "\033[33m"},
	LevelError: {"error", "ERR", "\033[31m"},
	LevelFatal: {"fatal", "FTL", "\033[35m"},
}

func (l Level) valid() bool {
	return l >= LevelTrace && l <= LevelFatal
}

// String returns the configuration name of the level
func (l Level) String() string {
	if !l.valid() {
		return "unknown"
	}
	return levelNames[l].name
}

// ShortString returns the three letter tag used by the text formatter
func (l Level) ShortString() string {
	if !l.valid() {
		return "???"
	}
	return levelNames[l].short
}

// Color returns the ANSI color of the level for console output
func (l Level) Color() string {
	if !l.valid() {
		return "\033[0m"
	}
	return levelNames[l].color
}

// ShouldLog returns true if this level should be logged given the minimum level
func (l Level) ShouldLog(minLevel Level) bool {
	return l >= minLevel
}

// ParseLevel parses a level name; "warning" is accepted for warn
func ParseLevel(level string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		return LevelWarn, nil
	}
	for l, n := range levelNames {
		if n.name == name {
			return Level(l), nil
		}
	}
	return LevelInfo, &ParseError{Input: level, Type: "level"}
}

// ParseError reports an unknown level or format name
type ParseError struct {
	Input string
	Type  string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return "invalid " + e.Type + ": " + e.Input
}
