// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     lexer
// Description: Token kinds and keyword table of the ladder language
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package lexer

import "fmt"

// Kind represents the type of a lexical token
type Kind int

const (
	// Special tokens
	EOF Kind = iota
	NewLine

	// Literals
	Number
	Identifier

	// Keywords
	Tag
	Task
	EndTask
	Period
	Event
	Continuous
	Routine
	EndRoutine
	Rung
	EndRung
	True
	False
	XIC
	XIO
	OTE
	OTL
	OTU
	JSR
	RET
	EMIT

	// Punctuation
	Eq           // =
	OpenAngle    // <
	CloseAngle   // >
	OpenBracket  // [
	CloseBracket // ]
	Indexer      // .
)

var kindNames = map[Kind]string{
	EOF:          "EOF",
	NewLine:      "NEWLINE",
	Number:       "NUMBER",
	Identifier:   "IDENTIFIER",
	Tag:          "TAG",
	Task:         "TASK",
	EndTask:      "ENDTASK",
	Period:       "PERIOD",
	Event:        "EVENT",
	Continuous:   "CONTINUOUS",
	Routine:      "ROUTINE",
	EndRoutine:   "ENDROUTINE",
	Rung:         "RUNG",
	EndRung:      "ENDRUNG",
	True:         "TRUE",
	False:        "FALSE",
	XIC:          "XIC",
	XIO:          "XIO",
	OTE:          "OTE",
	OTL:          "OTL",
	OTU:          "OTU",
	JSR:          "JSR",
	RET:          "RET",
	EMIT:         "EMIT",
	Eq:           "EQ",
	OpenAngle:    "OPEN_ANGLE",
	CloseAngle:   "CLOSE_ANGLE",
	OpenBracket:  "OPEN_BRACKET",
	CloseBracket: "CLOSE_BRACKET",
	Indexer:      "INDEXER",
}

// keywords maps the exact upper-case spelling to its kind
var keywords = map[string]Kind{
	"TAG":        Tag,
	"TASK":       Task,
	"ENDTASK":    EndTask,
	"PERIOD":     Period,
	"EVENT":      Event,
	"CONTINUOUS": Continuous,
	"ROUTINE":    Routine,
	"ENDROUTINE": EndRoutine,
	"RUNG":       Rung,
	"ENDRUNG":    EndRung,
	"TRUE":       True,
	"FALSE":      False,
	"XIC":        XIC,
	"XIO":        XIO,
	"OTE":        OTE,
	"OTL":        OTL,
	"OTU":        OTU,
	"JSR":        JSR,
	"RET":        RET,
	"EMIT":       EMIT,
}

// String returns the upper-case name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether the kind is a reserved word
func (k Kind) IsKeyword() bool {
	return k >= Tag && k <= EMIT
}

// IsInstruction reports whether the kind is a rung instruction
func (k Kind) IsInstruction() bool {
	return k >= XIC && k <= EMIT
}

// LookupIdent returns the keyword kind for text, or Identifier
func LookupIdent(text string) Kind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return Identifier
}

// Token represents a lexical token
type Token struct {
	Kind Kind   // Token kind
	Text string // Literal source text
	Line int    // Line the token starts on (1-based)
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case NewLine:
		return "NEWLINE"
	default:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	}
}
