// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     codegen
// Description: Rung translator rendering routines into target script text
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

// Package codegen renders the routines of one task into an indentation
// structured script. Each rung becomes a boolean entry variable that is
// narrowed by its contact instructions and then guards its outputs in an
// if/else block. The generator knows nothing about the source grammar.
package codegen

import (
	"fmt"
	"strings"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
)

// Op names a rung instruction
type Op string

const (
	OpXIC  Op = "XIC"
	OpXIO  Op = "XIO"
	OpOTE  Op = "OTE"
	OpOTL  Op = "OTL"
	OpOTU  Op = "OTU"
	OpJSR  Op = "JSR"
	OpRET  Op = "RET"
	OpEMIT Op = "EMIT"
)

// IsInput reports whether the op is a contact check
func (o Op) IsInput() bool {
	return o == OpXIC || o == OpXIO
}

// IsOutput reports whether the op is a coil, latch, call, return or event
func (o Op) IsOutput() bool {
	switch o {
	case OpOTE, OpOTL, OpOTU, OpJSR, OpRET, OpEMIT:
		return true
	}
	return false
}

// EntryRoutine is invoked at the end of every finished block
const EntryRoutine = "Main"

const indentUnit = "\t"

// Generator accumulates the translated text of one task
type Generator struct {
	code   strings.Builder
	indent int

	rungVar    string
	rungCount  int
	outputSeen bool

	ifTrue  []string
	ifFalse []string
}

// New creates an empty generator
func New() *Generator {
	return &Generator{}
}

// StartRoutine emits the header of a routine and indents its body. Rung
// state left over from the previous routine is dropped.
func (g *Generator) StartRoutine(name string) {
	g.rungVar = ""
	g.rungCount = 0
	g.outputSeen = false
	g.ifTrue = nil
	g.ifFalse = nil

	g.writeLine(fmt.Sprintf("def %s():", name))
	g.indent++
}

// EndRoutine closes the current routine. A routine without rungs gets a
// pass statement so the body stays valid.
func (g *Generator) EndRoutine() {
	if g.rungCount == 0 {
		g.writeLine("pass")
	}
	if g.indent > 0 {
		g.indent--
	}
	g.rungCount = 0
}

// StartRung opens a rung. An empty name selects rung_<n>_entry from the
// zero-based rung counter; the counter advances either way.
func (g *Generator) StartRung(name string) {
	if name == "" {
		g.rungVar = fmt.Sprintf("rung_%d_entry", g.rungCount)
	} else {
		g.rungVar = fmt.Sprintf("rung_%s_entry", name)
	}
	g.rungCount++
	g.outputSeen = false

	g.writeLine(g.rungVar + " = True")
}

// AddInstruction dispatches op to AddInput or AddOutput
func (g *Generator) AddInstruction(op Op, target string) error {
	switch {
	case op.IsInput():
		return g.AddInput(op, target)
	case op.IsOutput():
		return g.AddOutput(op, target)
	default:
		return invalidInstruction(op)
	}
}

// AddInput narrows the rung variable by a contact check. Inputs must
// precede every output of the rung.
func (g *Generator) AddInput(op Op, target string) error {
	if !op.IsInput() {
		return invalidInstruction(op)
	}
	if g.outputSeen {
		return mdwerror.Newf("Input instruction %s appears after an output instruction", op).
			WithCode(mdwerror.CodeSyntax).
			WithOperation("codegen.AddInput")
	}

	if op == OpXIC {
		g.writeLine(fmt.Sprintf("%s &= %s", g.rungVar, target))
	} else {
		g.writeLine(fmt.Sprintf("%s &= not %s", g.rungVar, target))
	}
	return nil
}

// AddOutput queues a statement for the rung's if block, and for OTE also
// the matching reset for its else block.
func (g *Generator) AddOutput(op Op, target string) error {
	switch op {
	case OpRET:
		g.ifTrue = append(g.ifTrue, "return")
	case OpJSR:
		g.ifTrue = append(g.ifTrue, target+"()")
	case OpOTL:
		g.ifTrue = append(g.ifTrue, target+" = True")
	case OpOTU:
		g.ifTrue = append(g.ifTrue, target+" = False")
	case OpOTE:
		g.ifTrue = append(g.ifTrue, target+" = True")
		g.ifFalse = append(g.ifFalse, target+" = False")
	case OpEMIT:
		g.ifTrue = append(g.ifTrue, fmt.Sprintf("EmitEvent('%s')", target))
	default:
		return invalidInstruction(op)
	}
	g.outputSeen = true
	return nil
}

// EndRung drains the queued outputs in the order they were added
func (g *Generator) EndRung() {
	if len(g.ifTrue) > 0 {
		g.writeLine(fmt.Sprintf("if %s:", g.rungVar))
		g.writeBlock(g.ifTrue)
		g.ifTrue = g.ifTrue[:0]
	}

	if len(g.ifFalse) > 0 {
		g.writeLine("else:")
		g.writeBlock(g.ifFalse)
		g.ifFalse = g.ifFalse[:0]
	}

	g.outputSeen = false
}

// Finish appends the call of the entry routine and returns the block
// without its trailing newline. The generator is reset for the next task.
func (g *Generator) Finish() string {
	g.writeLine(EntryRoutine + "()")

	text := strings.TrimSuffix(g.code.String(), "\n")
	g.Reset()
	return text
}

// Reset discards all state
func (g *Generator) Reset() {
	g.code.Reset()
	g.indent = 0
	g.rungVar = ""
	g.rungCount = 0
	g.outputSeen = false
	g.ifTrue = nil
	g.ifFalse = nil
}

func (g *Generator) writeBlock(lines []string) {
	g.indent++
	for _, line := range lines {
		g.writeLine(line)
	}
	g.indent--
}

func (g *Generator) writeLine(line string) {
	g.code.WriteString(strings.Repeat(indentUnit, g.indent))
	g.code.WriteString(line)
	g.code.WriteByte('\n')
}

func invalidInstruction(op Op) error {
	return mdwerror.Newf("Invalid instruction %s", op).
		WithCode(mdwerror.CodeSyntax).
		WithOperation("codegen.AddInstruction")
}
