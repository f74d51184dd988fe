// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     tui
// Description: Renders compile errors as one-line diagnostics
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package tui

import (
	"errors"
	"fmt"
	"strings"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
)

// Diagnostic is the display form of an error
type Diagnostic struct {
	Code    mdwerror.Code
	Message string
	Line    int
	Token   string
	Path    string
}

// NewDiagnostic extracts code, message and location from err
func NewDiagnostic(err error) Diagnostic {
	d := Diagnostic{Code: mdwerror.GetCode(err), Message: err.Error()}

	var mdwErr *mdwerror.Error
	if !errors.As(err, &mdwErr) {
		return d
	}
	if line, ok := mdwErr.Detail("line"); ok {
		if n, ok := line.(int); ok {
			d.Line = n
		}
	}
	if token, ok := mdwErr.Detail("token"); ok {
		d.Token = fmt.Sprint(token)
	}
	if path, ok := mdwErr.Detail("path"); ok {
		d.Path = fmt.Sprint(path)
	}
	return d
}

// Plain renders the diagnostic without styling
func (d Diagnostic) Plain() string {
	return strings.Join(d.parts(fmt.Sprint, fmt.Sprint, fmt.Sprint), " ")
}

// Render renders the diagnostic with the shared palette
func (d Diagnostic) Render() string {
	return strings.Join(d.parts(
		func(a ...interface{}) string { return CodeStyle.Render(fmt.Sprint(a...)) },
		func(a ...interface{}) string { return LocationStyle.Render(fmt.Sprint(a...)) },
		func(a ...interface{}) string { return MessageStyle.Render(fmt.Sprint(a...)) },
	), " ")
}

func (d Diagnostic) parts(code, location, message func(...interface{}) string) []string {
	parts := []string{code(fmt.Sprintf("error[%s]", d.Code))}
	if d.Line > 0 {
		parts = append(parts, location(fmt.Sprintf("line %d:", d.Line)))
	} else if d.Path != "" {
		parts = append(parts, location(d.Path+":"))
	}
	return append(parts, message(d.Message))
}

// RenderDiagnostic renders err for stderr; nil renders as an empty string
func RenderDiagnostic(err error, styled bool) string {
	if err == nil {
		return ""
	}
	d := NewDiagnostic(err)
	if styled {
		return d.Render()
	}
	return d.Plain()
}
