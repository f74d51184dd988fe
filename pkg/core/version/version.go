// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     version
// Description: Central version management for the compiler and its stores
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for rungc components
const (
	// Release version
	Release = "0.3.0"

	// Component versions
	Compiler = "0.3.0"
	History  = "1.0.0"
	Watch    = "0.2.0"
	Preview  = "0.1.0"
)

// Build metadata, set via -ldflags "-X github.com/msto63/rungc/pkg/core/version.Commit=..."
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "compiler":
		return Compiler
	case "history":
		return History
	case "watch":
		return Watch
	case "preview":
		return Preview
	default:
		return Release
	}
}

// String returns the one-line version banner
func String() string {
	return fmt.Sprintf("rungc %s (commit %s, built %s, %s %s/%s)",
		Release, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
