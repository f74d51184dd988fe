// File: codes.go
// Title: Error Code Definitions
// Description: Defines standardized error codes for consistent error classification
//              across rungc. Compiler diagnostics use the compile codes, the
//              surrounding tooling uses the io, configuration and storage codes.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-14 v0.2.0: Replaced service codes with compiler codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Compiler diagnostics
	CodeLexical    Code = "LEXICAL"
	CodeSyntax     Code = "SYNTAX"
	CodeScope      Code = "SCOPE"
	CodeSymbol     Code = "SYMBOL"
	CodeConstraint Code = "CONSTRAINT"

	// Input and output
	CodeIO Code = "IO_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Persistence
	CodeStorage Code = "STORAGE_ERROR"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput,
		CodeLexical, CodeSyntax, CodeScope, CodeSymbol, CodeConstraint,
		CodeIO, CodeConfigError, CodeInvalidConfig, CodeStorage:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeLexical, CodeSyntax, CodeScope, CodeSymbol, CodeConstraint:
		return "compile"
	case CodeIO:
		return "io"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	case CodeStorage:
		return "storage"
	default:
		return "generic"
	}
}

// IsCompile reports whether the code describes a problem in the compiled source
func (c Code) IsCompile() bool {
	return c.Category() == "compile"
}
