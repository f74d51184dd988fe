// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     parser
// Description: Recursive descent parser with embedded semantic analysis
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package parser

import (
	"errors"
	"fmt"
	"strconv"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
	mdwlog "github.com/msto63/rungc/foundation/core/log"
	"github.com/msto63/rungc/internal/compiler/codegen"
	"github.com/msto63/rungc/internal/compiler/emitter"
	"github.com/msto63/rungc/internal/compiler/lexer"
)

const (
	// MinimumPeriod is the smallest allowed PERIOD of a periodic task
	MinimumPeriod = 20

	// MaxTagNameLength limits the length of tag names
	MaxTagNameLength = 7
)

// TagDescriptor describes a declared tag; Length 0 is a scalar
type TagDescriptor struct {
	Name   string
	Length int
}

// IsArray reports whether the tag was declared with a length
func (t TagDescriptor) IsArray() bool {
	return t.Length > 0
}

// Summary counts what a compilation declared
type Summary struct {
	Tasks        int `json:"tasks" yaml:"tasks"`
	Routines     int `json:"routines" yaml:"routines"`
	Rungs        int `json:"rungs" yaml:"rungs"`
	Tags         int `json:"tags" yaml:"tags"`
	Instructions int `json:"instructions" yaml:"instructions"`
}

// Options configures parser behavior
type Options struct {
	Logger *mdwlog.Logger
}

// Parser consumes tokens through a previous/current/peek window, checks
// nesting and symbols, drives the generator and writes into the sink.
type Parser struct {
	lexer  *lexer.Lexer
	sink   emitter.Sink
	gen    *codegen.Generator
	logger *mdwlog.Logger

	previous lexer.Token
	current  lexer.Token
	peek     lexer.Token

	tags          []TagDescriptor
	routines      map[string]bool
	events        map[string]bool
	jumps         []string
	emittedEvents []string
	scopes        []Scope
	mainSeen      bool

	summary Summary
}

// New creates a parser reading from lex and writing into sink. The token
// window is primed here, so a lexical error in the first two tokens is
// returned immediately.
func New(lex *lexer.Lexer, sink emitter.Sink, opts Options) (*Parser, error) {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	p := &Parser{
		lexer:    lex,
		sink:     sink,
		gen:      codegen.New(),
		logger:   opts.Logger.WithField("component", "parser"),
		routines: make(map[string]bool),
		events:   make(map[string]bool),
	}

	for i := 0; i < 2; i++ {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Summary returns the counts gathered so far
func (p *Parser) Summary() Summary {
	return p.summary
}

// Tags returns the declared tags in declaration order
func (p *Parser) Tags() []TagDescriptor {
	out := make([]TagDescriptor, len(p.tags))
	copy(out, p.tags)
	return out
}

// Program parses statements until the end of input, resolves the deferred
// JSR and EMIT references and flushes the sink. The first error aborts and
// the sink is left unflushed.
func (p *Parser) Program() error {
	// Blank and comment lines before the first statement
	for p.check(lexer.NewLine) {
		if err := p.nextToken(); err != nil {
			return err
		}
	}

	for !p.check(lexer.EOF) {
		if err := p.statement(); err != nil {
			return err
		}
	}

	for _, event := range p.emittedEvents {
		if !p.events[event] {
			return p.fail(mdwerror.CodeSymbol, "Emitted event %s does not correspond to a task", event)
		}
	}

	for _, jump := range p.jumps {
		if !p.routines[jump] {
			return p.fail(mdwerror.CodeSymbol, "Routine %s does not exist", jump)
		}
	}

	p.logger.Debug("Program parsed", mdwlog.Fields{
		"tasks":        p.summary.Tasks,
		"routines":     p.summary.Routines,
		"rungs":        p.summary.Rungs,
		"tags":         p.summary.Tags,
		"instructions": p.summary.Instructions,
	})

	return p.sink.Flush()
}

func (p *Parser) statement() error {
	handler := p.handlerFor(p.current.Kind)
	if handler == nil {
		return p.fail(mdwerror.CodeSyntax, "Invalid statement at %s (%s)", p.current.Text, p.current.Kind)
	}

	if err := p.nextToken(); err != nil {
		return err
	}
	if err := handler(); err != nil {
		return err
	}

	// All statements end in a newline
	return p.newLine()
}

// handlerFor returns the statement parser for a leading token, or nil
func (p *Parser) handlerFor(kind lexer.Kind) func() error {
	switch {
	case kind == lexer.Task:
		return p.task
	case kind == lexer.Routine:
		return p.routine
	case kind == lexer.Rung:
		return p.rung
	case kind.IsInstruction():
		return p.instruction
	case kind == lexer.EndRung:
		return p.endRung
	case kind == lexer.EndRoutine:
		return p.endRoutine
	case kind == lexer.EndTask:
		return p.endTask
	case kind == lexer.Tag:
		return p.tag
	default:
		return nil
	}
}

func (p *Parser) task() error {
	if len(p.scopes) > 0 {
		return p.fail(mdwerror.CodeScope, "Tasks may not be inside of other structures")
	}
	p.push(ScopeTask)
	p.sink.Append("TASK ")

	if err := p.taskType(); err != nil {
		return err
	}

	if err := p.match(lexer.Identifier); err != nil {
		return err
	}
	p.sink.Append(" ")
	p.sink.AppendLine(p.previous.Text)
	p.sink.AppendLine("{")

	p.summary.Tasks++
	p.logger.Debug("Task opened", mdwlog.Fields{"task": p.previous.Text, "line": p.previous.Line})
	return nil
}

func (p *Parser) taskType() error {
	if err := p.match(lexer.OpenAngle); err != nil {
		return err
	}

	switch p.current.Kind {
	case lexer.Period:
		if err := p.periodType(); err != nil {
			return err
		}
	case lexer.Event:
		if err := p.eventType(); err != nil {
			return err
		}
	case lexer.Continuous:
		if err := p.match(lexer.Continuous); err != nil {
			return err
		}
		p.sink.Append("CONTINUOUS")
	default:
		return p.fail(mdwerror.CodeSyntax, "Invalid task type %s", p.current.Text)
	}

	return p.match(lexer.CloseAngle)
}

func (p *Parser) periodType() error {
	if err := p.match(lexer.Period); err != nil {
		return err
	}
	p.sink.Append("PERIOD ")

	if err := p.match(lexer.Eq); err != nil {
		return err
	}
	if err := p.match(lexer.Number); err != nil {
		return err
	}
	p.sink.Append(p.previous.Text)

	period, err := strconv.ParseFloat(p.previous.Text, 64)
	if err != nil {
		return p.fail(mdwerror.CodeSyntax, "Invalid number %s", p.previous.Text)
	}
	if period < MinimumPeriod {
		return p.fail(mdwerror.CodeConstraint, "Period below allowable limit %d", MinimumPeriod)
	}
	return nil
}

func (p *Parser) eventType() error {
	if err := p.match(lexer.Event); err != nil {
		return err
	}
	p.sink.Append("EVENT ")

	if err := p.match(lexer.Eq); err != nil {
		return err
	}
	if err := p.match(lexer.Identifier); err != nil {
		return err
	}
	p.sink.Append(p.previous.Text)

	p.events[p.previous.Text] = true
	return nil
}

func (p *Parser) routine() error {
	if p.top() != ScopeTask {
		return p.fail(mdwerror.CodeScope, "Routines must be defined inside of a task")
	}
	p.push(ScopeRoutine)

	if err := p.match(lexer.Identifier); err != nil {
		return err
	}
	name := p.previous.Text

	if name == codegen.EntryRoutine {
		if p.mainSeen {
			return p.fail(mdwerror.CodeSymbol, "There can only be one Main routine")
		}
		p.mainSeen = true
	}

	p.gen.StartRoutine(name)
	p.routines[name] = true
	p.summary.Routines++

	p.logger.Debug("Routine opened", mdwlog.Fields{"routine": name, "line": p.previous.Line})
	return nil
}

func (p *Parser) rung() error {
	if p.top() != ScopeRoutine {
		return p.fail(mdwerror.CodeScope, "Rungs must be defined inside of a routine")
	}
	p.push(ScopeRung)

	name := ""
	if p.check(lexer.Identifier) {
		if err := p.nextToken(); err != nil {
			return err
		}
		name = p.previous.Text
	}

	p.gen.StartRung(name)
	p.summary.Rungs++
	return nil
}

func (p *Parser) instruction() error {
	op := codegen.Op(p.previous.Kind.String())
	if p.top() != ScopeRung {
		return p.fail(mdwerror.CodeScope, "Instructions must be inside of a rung")
	}
	p.summary.Instructions++

	if op == codegen.OpRET {
		return p.annotate(p.gen.AddInstruction(op, ""))
	}

	if err := p.match(lexer.Identifier); err != nil {
		return err
	}
	target := p.previous.Text

	switch op {
	case codegen.OpJSR:
		p.jumps = append(p.jumps, target)
	case codegen.OpEMIT:
		p.emittedEvents = append(p.emittedEvents, target)
	default:
		indexed, err := p.tagOperand(target)
		if err != nil {
			return err
		}
		target = indexed
	}

	return p.annotate(p.gen.AddInstruction(op, target))
}

// tagOperand validates a tag reference and, for arrays, consumes the
// required ".<index>" suffix
func (p *Parser) tagOperand(name string) (string, error) {
	desc, ok := p.lookupTag(name)
	if !ok {
		return "", p.fail(mdwerror.CodeSymbol, "Referencing tag %s before assignment", name)
	}
	if !desc.IsArray() {
		return name, nil
	}

	if err := p.match(lexer.Indexer); err != nil {
		return "", err
	}
	if err := p.match(lexer.Number); err != nil {
		return "", err
	}
	text := p.previous.Text

	// Indexes beyond the integer range are out of bounds like any other
	index, err := strconv.ParseUint(text, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", p.fail(mdwerror.CodeSyntax, "Invalid whole number %s", text)
	}
	if err != nil || index >= uint64(desc.Length) {
		return "", p.fail(mdwerror.CodeSymbol, "Index %s is out of bounds for tag array of length %d", text, desc.Length)
	}

	return name + "." + text, nil
}

// lookupTag returns the first descriptor declared under name
func (p *Parser) lookupTag(name string) (TagDescriptor, bool) {
	for _, t := range p.tags {
		if t.Name == name {
			return t, true
		}
	}
	return TagDescriptor{}, false
}

func (p *Parser) endRung() error {
	if p.pop() != ScopeRung {
		return p.fail(mdwerror.CodeScope, "Missing matching RUNG")
	}
	p.gen.EndRung()
	return nil
}

func (p *Parser) endRoutine() error {
	if p.pop() != ScopeRoutine {
		return p.fail(mdwerror.CodeScope, "Missing matching ENDRUNG")
	}
	p.gen.EndRoutine()
	return nil
}

func (p *Parser) endTask() error {
	if len(p.scopes) == 0 {
		return p.fail(mdwerror.CodeScope, "Too many end statements")
	}
	if p.pop() != ScopeTask {
		return p.fail(mdwerror.CodeScope, "Missing matching ENDROUTINE")
	}
	if !p.mainSeen {
		return p.fail(mdwerror.CodeSymbol, "There must be a single Main routine")
	}
	p.mainSeen = false

	p.sink.AppendLine(p.gen.Finish())
	p.sink.AppendLine("}")

	p.logger.Debug("Task closed", mdwlog.Fields{"line": p.previous.Line})
	return nil
}

func (p *Parser) tag() error {
	length := 0
	if p.check(lexer.OpenBracket) {
		n, err := p.tagArray()
		if err != nil {
			return err
		}
		length = n
	} else {
		p.sink.Append("TAG ")
	}

	if err := p.match(lexer.Identifier); err != nil {
		return err
	}
	name := p.previous.Text
	p.sink.Append(name)

	if len(name) > MaxTagNameLength {
		return p.fail(mdwerror.CodeSymbol, "Tag name %s too long. The limit is %d characters", name, MaxTagNameLength)
	}

	p.tags = append(p.tags, TagDescriptor{Name: name, Length: length})
	p.summary.Tags++

	if err := p.match(lexer.Eq); err != nil {
		return err
	}

	if p.check(lexer.True) {
		if err := p.match(lexer.True); err != nil {
			return err
		}
		p.sink.AppendLine(" TRUE")
		return nil
	}

	if err := p.match(lexer.False); err != nil {
		return err
	}
	p.sink.AppendLine(" FALSE")
	return nil
}

func (p *Parser) tagArray() (int, error) {
	if err := p.match(lexer.OpenBracket); err != nil {
		return 0, err
	}
	if err := p.match(lexer.Number); err != nil {
		return 0, err
	}
	text := p.previous.Text

	length, err := p.wholeNumber(text)
	if err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, p.fail(mdwerror.CodeSymbol, "Length of tag array must be greater than zero")
	}

	p.sink.Append("TAG_ARRAY ")
	p.sink.Append(text)
	p.sink.Append(" ")

	if err := p.match(lexer.CloseBracket); err != nil {
		return 0, err
	}
	return length, nil
}

// newLine requires one line terminator and collapses any that follow
func (p *Parser) newLine() error {
	if err := p.match(lexer.NewLine); err != nil {
		return err
	}
	for p.check(lexer.NewLine) {
		if err := p.nextToken(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) wholeNumber(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, p.fail(mdwerror.CodeSyntax, "Invalid whole number %s", text)
	}
	return n, nil
}

func (p *Parser) check(kind lexer.Kind) bool {
	return p.current.Kind == kind
}

func (p *Parser) match(kind lexer.Kind) error {
	if !p.check(kind) {
		return p.fail(mdwerror.CodeSyntax, "Expected %s, but found %s %q", kind, p.current.Kind, p.current.Text)
	}
	return p.nextToken()
}

func (p *Parser) nextToken() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.previous = p.current
	p.current = p.peek
	p.peek = tok
	return nil
}

func (p *Parser) fail(code mdwerror.Code, format string, args ...interface{}) error {
	return mdwerror.New(fmt.Sprintf(format, args...)).
		WithCode(code).
		WithOperation("parser").
		WithDetail("line", p.current.Line).
		WithDetail("token", p.current.Text)
}

// annotate adds the position to errors raised by the generator
func (p *Parser) annotate(err error) error {
	if err == nil {
		return nil
	}
	var mdwErr *mdwerror.Error
	if errors.As(err, &mdwErr) {
		mdwErr.WithDetail("line", p.previous.Line).WithDetail("token", p.previous.Text)
	}
	return err
}
