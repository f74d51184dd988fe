// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     parser
// Description: Tests for parsing, semantic checks and emitted text
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package parser

import (
	"strings"
	"testing"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
	mdwlog "github.com/msto63/rungc/foundation/core/log"
	"github.com/msto63/rungc/internal/compiler/emitter"
	"github.com/msto63/rungc/internal/compiler/lexer"
)

func lines(l ...string) string {
	return strings.Join(l, "\n")
}

func parse(t *testing.T, source string) (*Parser, *emitter.Buffer, error) {
	t.Helper()
	sink := emitter.NewBuffer()
	p, err := New(lexer.New(source), sink, Options{Logger: mdwlog.Discard()})
	if err != nil {
		return nil, sink, err
	}
	return p, sink, p.Program()
}

// mainTask wraps body lines into a periodic task with a Main routine
func mainTask(body ...string) string {
	l := []string{"TASK<PERIOD=20> myTask", "ROUTINE Main"}
	l = append(l, body...)
	l = append(l, "ENDROUTINE", "ENDTASK")
	return lines(l...)
}

func TestParser_Program(t *testing.T) {
	source := lines(
		"# Example program",
		"TAG MyTag1 = FALSE",
		"TAG MyTag2 = TRUE",
		"TAG MyTag3 = FALSE",
		"TAG MyTag4 = FALSE",
		"TAG MyTag5 = FALSE",
		"",
		"TASK<PERIOD=20> myTask",
		"ROUTINE Main",
		"RUNG firstRung",
		"XIO MyTag1",
		"XIC MyTag2",
		"OTL MyTag3",
		"OTU MyTag4",
		"OTE MyTag5",
		"JSR other",
		"ENDRUNG",
		"ENDROUTINE",
		"ROUTINE other",
		"RUNG",
		"RET",
		"ENDRUNG",
		"ENDROUTINE",
		"ENDTASK",
	)

	p, sink, err := parse(t, source)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}

	want := "TAG MyTag1 FALSE\n" +
		"TAG MyTag2 TRUE\n" +
		"TAG MyTag3 FALSE\n" +
		"TAG MyTag4 FALSE\n" +
		"TAG MyTag5 FALSE\n" +
		"TASK PERIOD 20 myTask\n" +
		"{\n" +
		"def Main():\n" +
		"\trung_firstRung_entry = True\n" +
		"\trung_firstRung_entry &= not MyTag1\n" +
		"\trung_firstRung_entry &= MyTag2\n" +
		"\tif rung_firstRung_entry:\n" +
		"\t\tMyTag3 = True\n" +
		"\t\tMyTag4 = False\n" +
		"\t\tMyTag5 = True\n" +
		"\t\tother()\n" +
		"\telse:\n" +
		"\t\tMyTag5 = False\n" +
		"def other():\n" +
		"\trung_0_entry = True\n" +
		"\tif rung_0_entry:\n" +
		"\t\treturn\n" +
		"Main()\n" +
		"}\n"

	if got := sink.String(); got != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if !sink.Flushed() {
		t.Error("sink should be flushed after a successful compile")
	}

	wantSummary := Summary{Tasks: 1, Routines: 2, Rungs: 2, Tags: 5, Instructions: 7}
	if got := p.Summary(); got != wantSummary {
		t.Errorf("Summary() = %+v, want %+v", got, wantSummary)
	}
	if p.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", p.Depth())
	}
}

func TestParser_TaskHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"periodic", "TASK<PERIOD=20> t", "TASK PERIOD 20 t\n{\n"},
		{"fractional period", "TASK<PERIOD=20.5> t", "TASK PERIOD 20.5 t\n{\n"},
		{"event", "TASK<EVENT=start> t", "TASK EVENT start t\n{\n"},
		{"continuous", "TASK<CONTINUOUS> t", "TASK CONTINUOUS t\n{\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, sink, err := parse(t, lines(tt.header, "ROUTINE Main", "ENDROUTINE", "ENDTASK"))
			if err != nil {
				t.Fatalf("Program() error = %v", err)
			}
			want := tt.want + "def Main():\n\tpass\nMain()\n}\n"
			if got := sink.String(); got != want {
				t.Errorf("output = %q, want %q", got, want)
			}
		})
	}
}

func TestParser_TagArrays(t *testing.T) {
	_, sink, err := parse(t, lines(
		"TAG[10] arr = FALSE",
		mainTask("RUNG", "XIC arr.0", "OTE arr.9", "ENDRUNG"),
	))
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}

	out := sink.String()
	for _, want := range []string{
		"TAG_ARRAY 10 arr FALSE\n",
		"\trung_0_entry &= arr.0\n",
		"\t\tarr.9 = True\n",
		"\t\tarr.9 = False\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParser_ForwardReferences(t *testing.T) {
	source := lines(
		"TASK<PERIOD=50> first",
		"ROUTINE Main",
		"RUNG",
		"JSR later",
		"EMIT go",
		"ENDRUNG",
		"ENDROUTINE",
		"ROUTINE later",
		"ENDROUTINE",
		"ENDTASK",
		"TASK<EVENT=go> second",
		"ROUTINE Main",
		"ENDROUTINE",
		"ENDTASK",
	)

	_, sink, err := parse(t, source)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if !strings.Contains(sink.String(), "EmitEvent('go')") {
		t.Errorf("missing event emission in:\n%s", sink.String())
	}
}

func TestParser_DeferredChecksRunLast(t *testing.T) {
	// The undefined jump appears first, but the scope error is reported
	// because references are resolved only after the whole source.
	source := lines(
		"TASK<PERIOD=50> first",
		"ROUTINE Main",
		"RUNG",
		"JSR nowhere",
		"ENDRUNG",
		"ENDROUTINE",
		"ENDTASK",
		"ENDTASK",
	)

	_, _, err := parse(t, source)
	if err == nil || err.Error() != "Too many end statements" {
		t.Fatalf("error = %v, want Too many end statements", err)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
		code    mdwerror.Code
	}{
		{
			name:    "tag before declaration",
			source:  mainTask("RUNG", "XIC ghost", "ENDRUNG"),
			wantMsg: "Referencing tag ghost before assignment",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "index out of bounds",
			source:  lines("TAG[10] arr = FALSE", mainTask("RUNG", "XIC arr.10", "ENDRUNG")),
			wantMsg: "Index 10 is out of bounds for tag array of length 10",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "array without index",
			source:  lines("TAG[10] arr = FALSE", mainTask("RUNG", "XIC arr", "ENDRUNG")),
			wantMsg: `Expected INDEXER, but found NEWLINE "\n"`,
			code:    mdwerror.CodeSyntax,
		},
		{
			name:    "fractional index",
			source:  lines("TAG[10] arr = FALSE", mainTask("RUNG", "XIC arr.1.5", "ENDRUNG")),
			wantMsg: "Invalid whole number 1.5",
			code:    mdwerror.CodeSyntax,
		},
		{
			name:    "first declaration governs bounds",
			source:  lines("TAG[2] arr = FALSE", "TAG[10] arr = FALSE", mainTask("RUNG", "XIC arr.5", "ENDRUNG")),
			wantMsg: "Index 5 is out of bounds for tag array of length 2",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "index beyond integer range",
			source:  lines("TAG[10] arr = FALSE", mainTask("RUNG", "XIC arr.99999999999999999999", "ENDRUNG")),
			wantMsg: "Index 99999999999999999999 is out of bounds for tag array of length 10",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "output outside rung",
			source:  lines("TAG a = FALSE", mainTask("OTE a")),
			wantMsg: "Instructions must be inside of a rung",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "input outside rung",
			source:  lines("TAG a = FALSE", mainTask("XIC a")),
			wantMsg: "Instructions must be inside of a rung",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "instruction after endrung",
			source:  lines("TAG a = FALSE", mainTask("RUNG", "ENDRUNG", "RET")),
			wantMsg: "Instructions must be inside of a rung",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "instruction at top level",
			source:  lines("TAG a = FALSE", "XIO a"),
			wantMsg: "Instructions must be inside of a rung",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "undefined routine",
			source:  mainTask("RUNG", "JSR nowhere", "ENDRUNG"),
			wantMsg: "Routine nowhere does not exist",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "undefined event",
			source:  mainTask("RUNG", "EMIT nothing", "ENDRUNG"),
			wantMsg: "Emitted event nothing does not correspond to a task",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "period below minimum",
			source:  lines("TASK<PERIOD=19> t", "ROUTINE Main", "ENDROUTINE", "ENDTASK"),
			wantMsg: "Period below allowable limit 20",
			code:    mdwerror.CodeConstraint,
		},
		{
			name:    "fractional period below minimum",
			source:  lines("TASK<PERIOD=19.99> t", "ROUTINE Main", "ENDROUTINE", "ENDTASK"),
			wantMsg: "Period below allowable limit 20",
			code:    mdwerror.CodeConstraint,
		},
		{
			name:    "invalid task type",
			source:  lines("TASK<FOO> t", "ENDTASK"),
			wantMsg: "Invalid task type FOO",
			code:    mdwerror.CodeSyntax,
		},
		{
			name:    "missing Main",
			source:  lines("TASK<PERIOD=20> t", "ROUTINE helper", "ENDROUTINE", "ENDTASK"),
			wantMsg: "There must be a single Main routine",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "duplicate Main",
			source:  lines("TASK<PERIOD=20> t", "ROUTINE Main", "ENDROUTINE", "ROUTINE Main", "ENDROUTINE", "ENDTASK"),
			wantMsg: "There can only be one Main routine",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "nested task",
			source:  lines("TASK<PERIOD=20> a", "TASK<PERIOD=20> b"),
			wantMsg: "Tasks may not be inside of other structures",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "routine outside task",
			source:  lines("ROUTINE Main"),
			wantMsg: "Routines must be defined inside of a task",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "rung outside routine",
			source:  lines("TASK<PERIOD=20> t", "RUNG"),
			wantMsg: "Rungs must be defined inside of a routine",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "endrung without rung",
			source:  lines("TASK<PERIOD=20> t", "ROUTINE Main", "ENDRUNG"),
			wantMsg: "Missing matching RUNG",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "endroutine with open rung",
			source:  lines("TASK<PERIOD=20> t", "ROUTINE Main", "RUNG", "ENDROUTINE"),
			wantMsg: "Missing matching ENDRUNG",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "endtask on empty stack",
			source:  lines("ENDTASK"),
			wantMsg: "Too many end statements",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "endtask with open routine",
			source:  lines("TASK<PERIOD=20> t", "ROUTINE Main", "ENDTASK"),
			wantMsg: "Missing matching ENDROUTINE",
			code:    mdwerror.CodeScope,
		},
		{
			name:    "tag name too long",
			source:  lines("TAG toolongname = TRUE"),
			wantMsg: "Tag name toolongname too long. The limit is 7 characters",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "zero length array",
			source:  lines("TAG[0] arr = TRUE"),
			wantMsg: "Length of tag array must be greater than zero",
			code:    mdwerror.CodeSymbol,
		},
		{
			name:    "fractional array length",
			source:  lines("TAG[1.5] arr = TRUE"),
			wantMsg: "Invalid whole number 1.5",
			code:    mdwerror.CodeSyntax,
		},
		{
			name:    "tag value not boolean",
			source:  lines("TAG myTag = notAKeyword"),
			wantMsg: `Expected FALSE, but found IDENTIFIER "notAKeyword"`,
			code:    mdwerror.CodeSyntax,
		},
		{
			name:    "invalid statement",
			source:  lines("= x"),
			wantMsg: "Invalid statement at = (EQ)",
			code:    mdwerror.CodeSyntax,
		},
		{
			name:    "two statements on one line",
			source:  lines("TAG a = TRUE TAG b = TRUE"),
			wantMsg: `Expected NEWLINE, but found TAG "TAG"`,
			code:    mdwerror.CodeSyntax,
		},
		{
			name:    "input after output",
			source:  lines("TAG a = TRUE", "TAG b = TRUE", "TAG c = TRUE", mainTask("RUNG", "XIC a", "OTE b", "XIC c", "ENDRUNG")),
			wantMsg: "Input instruction XIC appears after an output instruction",
			code:    mdwerror.CodeSyntax,
		},
		{
			name:    "lexical error",
			source:  lines("TAG my_tag = TRUE"),
			wantMsg: "Unknown token: _",
			code:    mdwerror.CodeLexical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, sink, err := parse(t, tt.source)
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
			if got := mdwerror.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v", got, tt.code)
			}
			if sink.Flushed() {
				t.Error("sink must not be flushed after an error")
			}
		})
	}
}

func TestParser_MainPerTask(t *testing.T) {
	source := lines(
		"TASK<PERIOD=20> a",
		"ROUTINE Main",
		"ENDROUTINE",
		"ENDTASK",
		"TASK<CONTINUOUS> b",
		"ROUTINE Main",
		"ENDROUTINE",
		"ENDTASK",
	)

	p, sink, err := parse(t, source)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if got := strings.Count(sink.String(), "Main()\n}"); got != 2 {
		t.Errorf("expected one Main() call per task, found %d", got)
	}
	if p.Summary().Tasks != 2 {
		t.Errorf("Tasks = %d, want 2", p.Summary().Tasks)
	}
}

func TestParser_RedeclaredTagIsStored(t *testing.T) {
	p, _, err := parse(t, lines("TAG myTag = TRUE", "TAG myTag = FALSE"))
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}

	want := []TagDescriptor{{Name: "myTag"}, {Name: "myTag"}}
	got := p.Tags()
	if len(got) != len(want) {
		t.Fatalf("Tags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParser_ErrorDetails(t *testing.T) {
	_, _, err := parse(t, lines("TAG a = TRUE", "", "TASK<PERIOD=20> t", "ROUTINE Main", "RUNG", "XIC ghost"))
	if err == nil {
		t.Fatal("expected an error")
	}

	var details map[string]interface{}
	if e, ok := err.(*mdwerror.Error); ok {
		details = e.Details()
	} else {
		t.Fatalf("error type = %T, want *mdwerror.Error", err)
	}
	if details["line"] != 6 {
		t.Errorf("line = %v, want 6", details["line"])
	}
	if _, ok := details["token"]; !ok {
		t.Error("token detail missing")
	}
}

func TestParser_LeadingBlankAndCommentLinesAreSkipped(t *testing.T) {
	source := lines("", "# plant controller", "", "TAG a = FALSE", mainTask("RUNG", "XIC a", "ENDRUNG"))
	_, sink, err := parse(t, source)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if !strings.HasPrefix(sink.String(), "TAG a FALSE\nTASK PERIOD 20 myTask\n") {
		t.Errorf("output = %q", sink.String())
	}
}

func TestParser_StrayOutputStopsBeforeNextRoutine(t *testing.T) {
	source := lines(
		"TAG a = FALSE",
		"TASK<PERIOD=20> t",
		"ROUTINE Main",
		"OTE a",
		"ENDROUTINE",
		"ROUTINE other",
		"RUNG",
		"ENDRUNG",
		"ENDROUTINE",
		"ENDTASK",
	)
	_, sink, err := parse(t, source)
	if got := mdwerror.GetCode(err); got != mdwerror.CodeScope {
		t.Fatalf("code = %v, want %v (err = %v)", got, mdwerror.CodeScope, err)
	}

	e, ok := err.(*mdwerror.Error)
	if !ok {
		t.Fatalf("error type = %T, want *mdwerror.Error", err)
	}
	if line, _ := e.Detail("line"); line != 4 {
		t.Errorf("line = %v, want 4", line)
	}
	if sink.Flushed() {
		t.Error("sink must not be flushed after an error")
	}
}

func TestParser_BlankLinesAndComments(t *testing.T) {
	source := "\n\n# header\n\nTAG a = TRUE # trailing\n\n\n# between\nTAG b = FALSE\n\n"
	_, sink, err := parse(t, source)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if got, want := sink.String(), "TAG a TRUE\nTAG b FALSE\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestParser_EmptySource(t *testing.T) {
	_, sink, err := parse(t, "")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if sink.String() != "" || !sink.Flushed() {
		t.Errorf("empty source should flush empty output, got %q", sink.String())
	}
}

func TestNew_LexicalErrorWhilePriming(t *testing.T) {
	_, err := New(lexer.New("$"), emitter.NewBuffer(), Options{Logger: mdwlog.Discard()})
	if err == nil || err.Error() != "Unknown token: $" {
		t.Errorf("New() error = %v, want Unknown token: $", err)
	}
}
