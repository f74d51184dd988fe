// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors. The logger maps severities
//              to log levels, the CLI uses them to choose diagnostic styling.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-10-14 v0.2.0: Severity mapping for compiler codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a problem in user input, e.g. a source diagnostic
	SeverityLow Severity = iota

	// SeverityMedium indicates an error with an obvious workaround
	SeverityMedium

	// SeverityHigh indicates a failure of the environment (files, database)
	SeverityHigh

	// SeverityCritical indicates an internal invariant violation
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Level returns the numeric level of the severity (0-3)
func (s Severity) Level() int {
	return int(s)
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical
	case CodeIO, CodeStorage:
		return SeverityHigh
	case CodeLexical, CodeSyntax, CodeScope, CodeSymbol, CodeConstraint,
		CodeInvalidInput, CodeNotFound, CodeInvalidConfig:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
