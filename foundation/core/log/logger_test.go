// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, context fields, build IDs,
//              error logging and timers.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-14 v0.2.0: Build ID and coded error coverage

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
)

func newTestLogger(buf *bytes.Buffer, level Level) *Logger {
	return NewWithConfig(Config{
		Level:  level,
		Format: FormatText,
		Output: buf,
	}).WithFormatter(&TextFormatter{DisableTimestamp: true})
}

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		minimum Level
		log     func(*Logger)
		want    bool
	}{
		{"debug suppressed at info", LevelInfo, func(l *Logger) { l.Debug("x") }, false},
		{"info written at info", LevelInfo, func(l *Logger) { l.Info("x") }, true},
		{"warn written at info", LevelInfo, func(l *Logger) { l.Warn("x") }, true},
		{"trace written at trace", LevelTrace, func(l *Logger) { l.Trace("x") }, true},
		{"error suppressed at fatal", LevelFatal, func(l *Logger) { l.Error("x") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newTestLogger(&buf, tt.minimum))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("written = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestLoggerTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, LevelDebug).
		WithName("parser").
		WithField("component", "parser").
		WithBuildID("0123456789abcdef")

	logger.Info("rung closed", Fields{"rung": "firstRung"})

	want := "[INF] {parser} (build=01234567) rung closed [component=parser rung=firstRung]\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newTestLogger(&buf, LevelInfo)
	_ = parent.WithField("child", true)

	parent.Info("hello")
	if strings.Contains(buf.String(), "child") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}
}

func TestLogErrorLevels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"compile error is info", mdwerror.New("Too many end statements").WithCode(mdwerror.CodeScope), "[INF]"},
		{"config error is warn", mdwerror.New("bad file").WithCode(mdwerror.CodeConfigError), "[WRN]"},
		{"io error is error", mdwerror.New("disk").WithCode(mdwerror.CodeIO), "[ERR]"},
		{"plain error is error", errors.New("plain"), "[ERR]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newTestLogger(&buf, LevelTrace).LogError(tt.err)
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("output = %q, want prefix %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLogErrorFields(t *testing.T) {
	var buf bytes.Buffer
	err := mdwerror.New("Routine other does not exist").
		WithCode(mdwerror.CodeSymbol).
		WithDetail("line", 3)

	newTestLogger(&buf, LevelTrace).LogError(err)

	for _, want := range []string{"error_code=SYMBOL", "error_line=3", "error_severity=low"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q missing %q", buf.String(), want)
		}
	}
}

func TestLogErrorNil(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf, LevelTrace).LogError(nil)
	if buf.Len() != 0 {
		t.Errorf("LogError(nil) wrote %q", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf}).
		WithBuildID("build-1")

	logger.ErrorWithErr("compile failed", mdwerror.New("Invalid task type FOO").WithCode(mdwerror.CodeSyntax))

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if decoded["build_id"] != "build-1" {
		t.Errorf("build_id = %v", decoded["build_id"])
	}
	if decoded["level"] != "error" {
		t.Errorf("level = %v, want error", decoded["level"])
	}
	details, ok := decoded["error_details"].(map[string]interface{})
	if !ok {
		t.Fatalf("error_details missing in %v", decoded)
	}
	if details["code"] != "SYNTAX" {
		t.Errorf("error_details.code = %v, want SYNTAX", details["code"])
	}
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, LevelDebug)

	timer := logger.StartTimer("parse").WithField("file", "Program.txt")
	timer.Stop()
	if timer.Stop() != 0 {
		t.Error("second Stop() should return 0")
	}
	if timer.StopWithError(errors.New("late")) != 0 {
		t.Error("StopWithError() after Stop() should return 0")
	}

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", out)
	}
	for _, want := range []string{"[DBG]", "parse completed", "file=Program.txt", "operation=parse", "duration="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestTimerStopWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, LevelDebug)

	logger.StartTimer("flush").StopWithError(errors.New("disk full"))

	out := buf.String()
	for _, want := range []string{"[ERR]", "flush failed", "success=false", `error="disk full"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.IsLevelEnabled(LevelFatal) {
		t.Error("discard logger should not enable fatal")
	}
	logger.Error("nothing")
}

func TestDefaultLogger(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(newTestLogger(&buf, LevelInfo))
	GetDefault().Info("via default")

	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger did not write: %q", buf.String())
	}
}
