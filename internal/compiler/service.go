// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     compiler
// Description: File based compilation with logging and run history
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package compiler

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
	mdwlog "github.com/msto63/rungc/foundation/core/log"
	"github.com/msto63/rungc/internal/compiler/emitter"
	"github.com/msto63/rungc/internal/compiler/parser"
	"github.com/msto63/rungc/internal/history/store"
	"github.com/msto63/rungc/pkg/core/cache"
)

// DefaultOutput is the output file used when neither request nor config name one
const DefaultOutput = "Program.out"

// Config holds configuration for the compile service
type Config struct {
	Output string

	// CacheEntries keeps the programs of that many distinct sources;
	// 0 disables the cache
	CacheEntries int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{Output: DefaultOutput}
}

// Request describes one compilation
type Request struct {
	Source   string
	Output   string
	ToStdout bool
	DryRun   bool

	// Stdout receives the program when ToStdout is set (default: os.Stdout)
	Stdout io.Writer
}

// Result describes a successful compilation
type Result struct {
	BuildID  string
	Summary  parser.Summary
	Output   string
	Program  string
	Duration time.Duration
	Cached   bool
}

// artifact is a compiled program kept by content hash
type artifact struct {
	program string
	summary parser.Summary
}

// Service compiles source files and records every run
type Service struct {
	logger *mdwlog.Logger
	store  store.Store
	cache  *cache.Cache[artifact]
	cfg    Config
}

// NewService creates a compile service. A nil store disables history.
func NewService(cfg Config, logger *mdwlog.Logger, st store.Store) *Service {
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	s := &Service{
		logger: logger.WithField("component", "compiler"),
		store:  st,
		cfg:    cfg,
	}
	if cfg.CacheEntries > 0 {
		s.cache = cache.New[artifact](cache.Config{MaxItems: cfg.CacheEntries})
	}
	return s
}

// CompileFile reads req.Source, compiles it into the requested destination
// and records the run. Compile diagnostics are returned unchanged.
func (s *Service) CompileFile(ctx context.Context, req Request) (*Result, error) {
	buildID := uuid.NewString()
	logger := s.logger.WithBuildID(buildID)

	sink, output := s.sinkFor(req)

	timer := logger.StartTimer("compile").WithField("source", req.Source)
	started := time.Now()

	summary, cached, err := s.compile(req.Source, sink, logger)
	duration := time.Since(started)

	s.record(ctx, logger, &store.Run{
		ID:           buildID,
		Timestamp:    started,
		Source:       req.Source,
		Output:       output,
		Success:      err == nil,
		ErrorCode:    errorCode(err),
		ErrorMessage: errorMessage(err),
		Tasks:        summary.Tasks,
		Routines:     summary.Routines,
		Rungs:        summary.Rungs,
		Tags:         summary.Tags,
		Instructions: summary.Instructions,
		DurationMS:   float64(duration.Nanoseconds()) / 1e6,
	})

	if err != nil {
		timer.WithField("error_code", errorCode(err)).StopWithError(err)
		return nil, err
	}
	timer.WithField("output", output).Stop()

	result := &Result{
		BuildID:  buildID,
		Summary:  summary,
		Output:   output,
		Duration: duration,
		Cached:   cached,
	}
	result.Program = text(sink)
	return result, nil
}

// compile reads path and compiles it into sink, reusing the cached program
// of identical content
func (s *Service) compile(path string, sink emitter.Sink, logger *mdwlog.Logger) (parser.Summary, bool, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return parser.Summary{}, false, mdwerror.Wrap(err, "failed to read source").
			WithCode(mdwerror.CodeIO).
			WithOperation("compiler.CompileFile").
			WithDetail("path", path)
	}

	if s.cache == nil {
		summary, err := CompileInto(string(source), sink, logger)
		return summary, false, err
	}

	key := cache.Key(source)
	if hit, ok := s.cache.Get(key); ok {
		logger.Debug("Source unchanged, reusing program", mdwlog.Fields{"source": path})
		sink.Append(hit.program)
		return hit.summary, true, sink.Flush()
	}

	summary, err := CompileInto(string(source), sink, logger)
	if err == nil {
		s.cache.Set(key, artifact{program: text(sink), summary: summary})
	}
	return summary, false, err
}

// text returns what was appended to sink; every emitter sink exposes it
func text(sink emitter.Sink) string {
	if t, ok := sink.(interface{ String() string }); ok {
		return t.String()
	}
	return ""
}

// sinkFor picks the destination; output is empty when nothing is written to disk
func (s *Service) sinkFor(req Request) (emitter.Sink, string) {
	switch {
	case req.DryRun:
		return emitter.NewBuffer(), ""
	case req.ToStdout:
		w := req.Stdout
		if w == nil {
			w = os.Stdout
		}
		return emitter.NewWriterSink(w), "-"
	}

	output := req.Output
	if output == "" {
		output = s.cfg.Output
	}
	return emitter.NewFileSink(output), output
}

// record stores a run; history failures never fail the compilation
func (s *Service) record(ctx context.Context, logger *mdwlog.Logger, run *store.Run) {
	if s.store == nil {
		return
	}
	if err := s.store.Record(ctx, run); err != nil {
		logger.WarnWithErr("Failed to record compilation run", err)
	}
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return mdwerror.GetCode(err).String()
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
