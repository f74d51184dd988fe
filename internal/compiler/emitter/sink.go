// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     emitter
// Description: Sinks collecting generated text and persisting it once
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

// Package emitter provides the output sinks of the compiler. Text is only
// buffered while compiling; Flush commits it in one step, so a failed
// compilation never leaves a partial artifact behind.
package emitter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
)

// Sink receives generated text
type Sink interface {
	Append(text string)
	AppendLine(text string)
	Flush() error
}

// buffer is the shared accumulation part of all sinks
type buffer struct {
	sb strings.Builder
}

// Append adds text verbatim
func (b *buffer) Append(text string) {
	b.sb.WriteString(text)
}

// AppendLine adds text followed by a newline
func (b *buffer) AppendLine(text string) {
	b.sb.WriteString(text)
	b.sb.WriteByte('\n')
}

// String returns everything appended so far
func (b *buffer) String() string {
	return b.sb.String()
}

// Len returns the number of buffered bytes
func (b *buffer) Len() int {
	return b.sb.Len()
}

// FileSink writes the buffered text to a file on Flush
type FileSink struct {
	buffer
	path string
}

// NewFileSink creates a sink for path
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the destination file
func (s *FileSink) Path() string {
	return s.path
}

// Flush writes the buffer through a temporary file that is renamed over
// the destination. Missing directories are created.
func (s *FileSink) Flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ioError(err, "create output directory", s.path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return ioError(err, "create temporary file", s.path)
	}
	tmpName := tmp.Name()

	if _, err := io.WriteString(tmp, s.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ioError(err, "write output", s.path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ioError(err, "close output", s.path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return ioError(err, "set output permissions", s.path)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return ioError(err, "replace output", s.path)
	}

	return nil
}

// WriterSink writes the buffered text to an io.Writer on Flush
type WriterSink struct {
	buffer
	w io.Writer
}

// NewWriterSink creates a sink for w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Flush writes the buffer to the writer
func (s *WriterSink) Flush() error {
	if _, err := io.WriteString(s.w, s.String()); err != nil {
		return ioError(err, "write output", "writer")
	}
	return nil
}

// Buffer keeps the text in memory; Flush only records that it happened
type Buffer struct {
	buffer
	flushed bool
}

// NewBuffer creates an in-memory sink
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Flush marks the buffer as committed
func (b *Buffer) Flush() error {
	b.flushed = true
	return nil
}

// Flushed reports whether Flush was called
func (b *Buffer) Flushed() bool {
	return b.flushed
}

func ioError(err error, action, path string) error {
	return mdwerror.Wrap(err, fmt.Sprintf("failed to %s", action)).
		WithCode(mdwerror.CodeIO).
		WithOperation("emitter.Flush").
		WithDetail("path", path)
}
