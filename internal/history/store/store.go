package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
)

// Run is one recorded compilation
type Run struct {
	ID           string    `json:"id" yaml:"id"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Source       string    `json:"source" yaml:"source"`
	Output       string    `json:"output,omitempty" yaml:"output,omitempty"`
	Success      bool      `json:"success" yaml:"success"`
	ErrorCode    string    `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Tasks        int       `json:"tasks" yaml:"tasks"`
	Routines     int       `json:"routines" yaml:"routines"`
	Rungs        int       `json:"rungs" yaml:"rungs"`
	Tags         int       `json:"tags" yaml:"tags"`
	Instructions int       `json:"instructions" yaml:"instructions"`
	DurationMS   float64   `json:"duration_ms" yaml:"duration_ms"`
}

// Filter defines criteria for listing runs
type Filter struct {
	Source     string
	OnlyFailed bool
	Since      time.Time
	Limit      int
	Offset     int
}

// Stats contains aggregated run statistics
type Stats struct {
	TotalRuns     int64            `json:"total_runs" yaml:"total_runs"`
	Succeeded     int64            `json:"succeeded" yaml:"succeeded"`
	Failed        int64            `json:"failed" yaml:"failed"`
	ErrorsByCode  map[string]int64 `json:"errors_by_code" yaml:"errors_by_code"`
	AvgDurationMS float64          `json:"avg_duration_ms" yaml:"avg_duration_ms"`
	LastRun       time.Time        `json:"last_run,omitempty" yaml:"last_run,omitempty"`
}

// Store defines the interface for compilation history persistence
type Store interface {
	Record(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, filter Filter) ([]*Run, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Config holds configuration for the SQLite store
type Config struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Path: "./data/history.db",
	}
}

// NewSQLiteStore opens (and creates if needed) the history database
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storageError(err, "failed to create directory")
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, storageError(err, "failed to open database")
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, storageError(err, "failed to initialize schema")
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		output TEXT,
		success INTEGER NOT NULL,
		error_code TEXT,
		error_message TEXT,
		tasks INTEGER NOT NULL DEFAULT 0,
		routines INTEGER NOT NULL DEFAULT 0,
		rungs INTEGER NOT NULL DEFAULT 0,
		tags INTEGER NOT NULL DEFAULT 0,
		instructions INTEGER NOT NULL DEFAULT 0,
		duration_ms REAL NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_success ON runs(success);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run. Missing IDs and timestamps are filled in.
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(run)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp, source, output, success, error_code, error_message,
			tasks, routines, rungs, tags, instructions, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Timestamp, run.Source, run.Output, run.Success, run.ErrorCode, run.ErrorMessage,
		run.Tasks, run.Routines, run.Rungs, run.Tags, run.Instructions, run.DurationMS)

	if err != nil {
		return storageError(err, "failed to insert run")
	}

	return nil
}

const selectRuns = `SELECT id, timestamp, source, output, success, error_code, error_message,
	tasks, routines, rungs, tags, instructions, duration_ms FROM runs`

// Get returns a single run by ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mdwerror.Newf("run %s not found", id).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("store.Get")
	}
	if err != nil {
		return nil, storageError(err, "failed to read run")
	}
	return run, nil
}

// List returns runs matching filter, newest first
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRuns + ` WHERE 1=1`
	var args []interface{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}
	if filter.OnlyFailed {
		query += " AND success = 0"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"

	// SQLite only accepts OFFSET after a LIMIT
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, storageError(err, "failed to scan run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "failed to iterate runs")
	}

	return runs, nil
}

// Stats aggregates all recorded runs
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ErrorsByCode: make(map[string]int64)}

	var avg sql.NullFloat64
	var succeeded sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(success), AVG(duration_ms) FROM runs`).
		Scan(&stats.TotalRuns, &succeeded, &avg)
	if err != nil {
		return nil, storageError(err, "failed to count runs")
	}
	stats.Succeeded = succeeded.Int64
	stats.Failed = stats.TotalRuns - stats.Succeeded
	stats.AvgDurationMS = avg.Float64

	rows, err := s.db.QueryContext(ctx,
		`SELECT error_code, COUNT(*) FROM runs WHERE success = 0 GROUP BY error_code`)
	if err != nil {
		return nil, storageError(err, "failed to group errors")
	}
	defer rows.Close()
	for rows.Next() {
		var code sql.NullString
		var count int64
		if err := rows.Scan(&code, &count); err != nil {
			return nil, storageError(err, "failed to scan error counts")
		}
		stats.ErrorsByCode[code.String] = count
	}

	// MAX() loses the column type, so order instead
	var last time.Time
	err = s.db.QueryRowContext(ctx, `SELECT timestamp FROM runs ORDER BY timestamp DESC LIMIT 1`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storageError(err, "failed to read last run")
	}
	stats.LastRun = last

	return stats, nil
}

// Prune removes runs older than the specified duration
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, storageError(err, "failed to prune runs")
	}
	deleted, _ := result.RowsAffected()

	return deleted, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var output, errorCode, errorMessage sql.NullString

	err := row.Scan(&run.ID, &run.Timestamp, &run.Source, &output, &run.Success, &errorCode, &errorMessage,
		&run.Tasks, &run.Routines, &run.Rungs, &run.Tags, &run.Instructions, &run.DurationMS)
	if err != nil {
		return nil, err
	}

	run.Output = output.String
	run.ErrorCode = errorCode.String
	run.ErrorMessage = errorMessage.String
	return &run, nil
}

func prepare(run *Run) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	run.Timestamp = run.Timestamp.UTC()
}

func storageError(err error, message string) error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeStorage).
		WithOperation("store")
}

// MemoryStore is an in-memory implementation for testing
type MemoryStore struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make([]*Run, 0),
	}
}

// Record stores a copy of run
func (s *MemoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(run)
	stored := *run
	s.runs = append(s.runs, &stored)
	return nil
}

// Get returns a single run by ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, run := range s.runs {
		if run.ID == id {
			found := *run
			return &found, nil
		}
	}
	return nil, mdwerror.Newf("run %s not found", id).
		WithCode(mdwerror.CodeNotFound).
		WithOperation("store.Get")
}

// List returns runs matching filter, newest first
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Run
	for _, run := range s.runs {
		if filter.Source != "" && run.Source != filter.Source {
			continue
		}
		if filter.OnlyFailed && run.Success {
			continue
		}
		if !filter.Since.IsZero() && run.Timestamp.Before(filter.Since) {
			continue
		}
		found := *run
		results = append(results, &found)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(results) {
		results = results[:filter.Limit]
	}

	return results, nil
}

// Stats aggregates all recorded runs
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ErrorsByCode: make(map[string]int64)}
	var total float64
	for _, run := range s.runs {
		stats.TotalRuns++
		total += run.DurationMS
		if run.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
			stats.ErrorsByCode[run.ErrorCode]++
		}
		if run.Timestamp.After(stats.LastRun) {
			stats.LastRun = run.Timestamp
		}
	}
	if stats.TotalRuns > 0 {
		stats.AvgDurationMS = total / float64(stats.TotalRuns)
	}

	return stats, nil
}

// Prune removes old runs
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		if run.Timestamp.After(cutoff) {
			kept = append(kept, run)
		} else {
			deleted++
		}
	}
	s.runs = kept

	return deleted, nil
}

// Close is a no-op for memory store
func (s *MemoryStore) Close() error {
	return nil
}

// String renders a one-line description of the run
func (r *Run) String() string {
	if r.Success {
		return fmt.Sprintf("%s %s ok", r.ID, r.Source)
	}
	return fmt.Sprintf("%s %s failed: %s", r.ID, r.Source, r.ErrorCode)
}
