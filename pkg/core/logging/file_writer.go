// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     logging
// Description: FileWriter batches log lines and appends them to a log file
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package logging

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
)

// FileWriter implements io.Writer and appends batched log lines to a file
type FileWriter struct {
	// Configuration
	path        string
	batchSize   int
	flushPeriod time.Duration

	// Destination
	file *os.File
	out  *bufio.Writer

	// Batching
	pending int
	mu      sync.Mutex
	flushCh chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	closed  bool
	lastErr error
}

// FileWriterConfig holds configuration for FileWriter
type FileWriterConfig struct {
	Path        string        // Log file path, parent directories are created
	BatchSize   int           // Number of lines to buffer (default: 100)
	FlushPeriod time.Duration // How often to flush (default: 2s)
}

// DefaultFileWriterConfig returns default configuration
func DefaultFileWriterConfig(path string) FileWriterConfig {
	return FileWriterConfig{
		Path:        path,
		BatchSize:   100,
		FlushPeriod: 2 * time.Second,
	}
}

// NewFileWriter opens the log file in append mode and starts the flush worker
func NewFileWriter(cfg FileWriterConfig) (*FileWriter, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushPeriod <= 0 {
		cfg.FlushPeriod = 2 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, openError(err, cfg.Path)
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, openError(err, cfg.Path)
	}

	w := &FileWriter{
		path:        cfg.Path,
		batchSize:   cfg.BatchSize,
		flushPeriod: cfg.FlushPeriod,
		file:        file,
		out:         bufio.NewWriter(file),
		flushCh:     make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	go w.flushWorker()

	return w, nil
}

// Write implements io.Writer
func (w *FileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	n, err := w.out.Write(p)
	w.pending++
	shouldFlush := w.pending >= w.batchSize
	w.mu.Unlock()

	if shouldFlush {
		select {
		case w.flushCh <- struct{}{}:
		default:
		}
	}

	return n, err
}

// flushWorker periodically flushes the buffer
func (w *FileWriter) flushWorker() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.flushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			w.Flush()
			return
		case <-w.flushCh:
			w.Flush()
		case <-ticker.C:
			w.Flush()
		}
	}
}

// Flush writes buffered lines to the file
func (w *FileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending == 0 {
		return w.lastErr
	}
	w.pending = 0
	if err := w.out.Flush(); err != nil {
		w.lastErr = err
	}
	return w.lastErr
}

// Close flushes remaining lines and closes the file
func (w *FileWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil && w.lastErr == nil {
		w.lastErr = err
	}
	return w.lastErr
}

// Path returns the log file path
func (w *FileWriter) Path() string {
	return w.path
}

func openError(err error, path string) error {
	return mdwerror.Wrap(err, "failed to open log file").
		WithCode(mdwerror.CodeIO).
		WithOperation("logging.NewFileWriter").
		WithDetail("path", path)
}
