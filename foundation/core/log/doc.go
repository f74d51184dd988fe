// Package log provides structured logging for rungc.
//
// Package: log
// Title: rungc Structured Logging Framework
// Description: Implements leveled, structured logging with JSON, text and
//              console formats, persistent context fields, build IDs for
//              correlating all lines of one compilation run, and timers for
//              measuring compiler phases. Integrates with the rungc error
//              package so coded errors log at a severity-derived level.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-14 v0.2.0: Build IDs replace request/user IDs, async mode removed
//
// Usage:
//   import mdwlog "github.com/msto63/rungc/foundation/core/log"
//
//   logger := mdwlog.New().
//     WithFormat(mdwlog.FormatText).
//     WithBuildID(buildID)
//
//   timer := logger.StartTimer("compile")
//   // ... run the compiler
//   timer.Stop()
package log
