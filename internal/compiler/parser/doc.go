// Package parser implements the single-pass analysis of ladder programs.
//
// The parser pulls tokens on demand, validates scope nesting with an
// explicit stack, keeps the tag table and the declared routine and event
// sets, and forwards every rung instruction to the code generator.
// References made by JSR and EMIT are collected and resolved only after the
// whole source was read, so routines and events may be declared later.
//
// Usage:
//
//	sink := emitter.NewBuffer()
//	p, err := parser.New(lexer.New(source), sink, parser.Options{})
//	if err != nil {
//		return err
//	}
//	if err := p.Program(); err != nil {
//		return err
//	}
//	fmt.Print(sink.String())
package parser
