// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     compiler
// Description: In-memory compilation entry point
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

// Package compiler ties lexer, parser, generator and sink together.
package compiler

import (
	mdwlog "github.com/msto63/rungc/foundation/core/log"
	"github.com/msto63/rungc/internal/compiler/emitter"
	"github.com/msto63/rungc/internal/compiler/lexer"
	"github.com/msto63/rungc/internal/compiler/parser"
)

// Compile translates source into the target program without touching the
// filesystem. On error the partial output is discarded.
func Compile(source string) (string, parser.Summary, error) {
	buf := emitter.NewBuffer()
	summary, err := CompileInto(source, buf, mdwlog.Discard())
	if err != nil {
		return "", summary, err
	}
	return buf.String(), summary, nil
}

// CompileInto parses source into sink. The sink is flushed only when the
// whole program compiled.
func CompileInto(source string, sink emitter.Sink, logger *mdwlog.Logger) (parser.Summary, error) {
	p, err := parser.New(lexer.New(source), sink, parser.Options{Logger: logger})
	if err != nil {
		return parser.Summary{}, err
	}
	err = p.Program()
	return p.Summary(), err
}
