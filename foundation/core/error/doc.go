// Package error provides structured error handling for rungc.
//
// Package: error
// Title: rungc Error Handling Framework
// Description: Implements a coded error type carrying severity, operation and
//              key-value details. Every compiler diagnostic, configuration and
//              storage failure in rungc is represented by this type so the CLI
//              and the logger can classify it without string matching.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-14 v0.2.0: Compiler code set (lexical, syntax, scope, symbol, constraint)
//
// Usage:
//   import mdwerror "github.com/msto63/rungc/foundation/core/error"
//
//   err := mdwerror.New("Missing matching RUNG").
//     WithCode(mdwerror.CodeScope).
//     WithDetail("line", 12)
//
//   if mdwerror.IsCompileError(err) {
//     // user-facing diagnostic, not an internal failure
//   }
package error
