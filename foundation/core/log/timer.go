// File: timer.go
// Title: Performance Timer
// Description: Measures a compiler phase and logs its duration as a single
//              entry when the phase completes or fails.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2026-10-14 v0.2.0: Duration recorded on the entry, checkpoints removed
// - 2026-10-14 v0.3.0: One shared stop path, level fixed to debug

package log

import (
	"time"
)

// Timer measures one operation; only the first Stop or StopWithError logs
type Timer struct {
	logger    *Logger
	operation string
	started   time.Time
	fields    Fields
	done      bool
}

// NewTimer starts timing operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		started:   time.Now(),
		fields:    Fields{"operation": operation},
	}
}

// WithField adds a field to the completion entry
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Stop logs "<operation> completed" at debug level and returns the elapsed time
func (t *Timer) Stop() time.Duration {
	return t.finish(LevelDebug, "completed", nil)
}

// StopWithError logs "<operation> failed" with err at error level
func (t *Timer) StopWithError(err error) time.Duration {
	t.fields["success"] = false
	return t.finish(LevelError, "failed", err)
}

func (t *Timer) finish(level Level, outcome string, err error) time.Duration {
	if t.done {
		return 0
	}
	t.done = true

	elapsed := time.Since(t.started)
	if t.logger != nil {
		t.logger.logTimed(level, t.operation+" "+outcome, err, elapsed, t.fields)
	}
	return elapsed
}
