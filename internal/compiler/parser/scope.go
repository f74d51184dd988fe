// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     parser
// Description: Scope stack enforcing TASK > ROUTINE > RUNG nesting
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package parser

// Scope marks an open block
type Scope int

const (
	// ScopeNone is returned for an empty stack
	ScopeNone Scope = iota
	ScopeTask
	ScopeRoutine
	ScopeRung
)

// String returns the keyword that opens the scope
func (s Scope) String() string {
	switch s {
	case ScopeTask:
		return "TASK"
	case ScopeRoutine:
		return "ROUTINE"
	case ScopeRung:
		return "RUNG"
	default:
		return "NONE"
	}
}

func (p *Parser) push(s Scope) {
	p.scopes = append(p.scopes, s)
}

// pop removes the innermost scope, ScopeNone when nothing is open
func (p *Parser) pop() Scope {
	if len(p.scopes) == 0 {
		return ScopeNone
	}
	s := p.scopes[len(p.scopes)-1]
	p.scopes = p.scopes[:len(p.scopes)-1]
	return s
}

func (p *Parser) top() Scope {
	if len(p.scopes) == 0 {
		return ScopeNone
	}
	return p.scopes[len(p.scopes)-1]
}

// Depth returns the number of open scopes
func (p *Parser) Depth() int {
	return len(p.scopes)
}
