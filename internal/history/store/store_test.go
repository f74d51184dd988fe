package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(Config{Path: filepath.Join(t.TempDir(), "data", "history.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// stores runs every test against both implementations
func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": newSQLite(t),
		"memory": NewMemoryStore(),
	}
}

func TestStore_RecordAndGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			run := &Run{
				Source:       "Program.txt",
				Output:       "Program.out",
				Success:      true,
				Tasks:        1,
				Routines:     2,
				Rungs:        3,
				Tags:         4,
				Instructions: 5,
				DurationMS:   1.5,
			}

			if err := s.Record(ctx, run); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			if run.ID == "" {
				t.Fatal("Record() should assign an ID")
			}
			if run.Timestamp.IsZero() {
				t.Fatal("Record() should assign a timestamp")
			}

			got, err := s.Get(ctx, run.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Source != run.Source || got.Output != run.Output || !got.Success {
				t.Errorf("Get() = %+v, want %+v", got, run)
			}
			if got.Rungs != 3 || got.Instructions != 5 || got.DurationMS != 1.5 {
				t.Errorf("summary fields lost: %+v", got)
			}
			if !got.Timestamp.Equal(run.Timestamp) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, run.Timestamp)
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "missing")
			if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
				t.Errorf("Get() error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().Add(-time.Hour)

			for i, src := range []string{"a.txt", "b.txt", "a.txt"} {
				run := &Run{
					ID:        src + string(rune('0'+i)),
					Timestamp: base.Add(time.Duration(i) * time.Minute),
					Source:    src,
					Success:   i != 1,
				}
				if !run.Success {
					run.ErrorCode = "SCOPE"
				}
				if err := s.Record(ctx, run); err != nil {
					t.Fatal(err)
				}
			}

			all, err := s.List(ctx, Filter{})
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 3 || all[0].ID != "a.txt2" || all[2].ID != "a.txt0" {
				t.Fatalf("List() order = %v", ids(all))
			}

			tests := []struct {
				name   string
				filter Filter
				want   []string
			}{
				{"by source", Filter{Source: "a.txt"}, []string{"a.txt2", "a.txt0"}},
				{"only failed", Filter{OnlyFailed: true}, []string{"b.txt1"}},
				{"limit", Filter{Limit: 1}, []string{"a.txt2"}},
				{"offset", Filter{Offset: 1}, []string{"b.txt1", "a.txt0"}},
				{"limit and offset", Filter{Limit: 1, Offset: 1}, []string{"b.txt1"}},
				{"since", Filter{Since: base.Add(90 * time.Second)}, []string{"a.txt2"}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := s.List(ctx, tt.filter)
					if err != nil {
						t.Fatal(err)
					}
					if g := ids(got); !equal(g, tt.want) {
						t.Errorf("List() = %v, want %v", g, tt.want)
					}
				})
			}
		})
	}
}

func TestStore_Stats(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := s.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats() on empty store error = %v", err)
			}
			if empty.TotalRuns != 0 {
				t.Errorf("TotalRuns = %d, want 0", empty.TotalRuns)
			}

			runs := []*Run{
				{Source: "a", Success: true, DurationMS: 2},
				{Source: "a", ErrorCode: "SYMBOL", DurationMS: 4},
				{Source: "b", ErrorCode: "SYMBOL", DurationMS: 6},
			}
			for _, r := range runs {
				if err := s.Record(ctx, r); err != nil {
					t.Fatal(err)
				}
			}

			stats, err := s.Stats(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if stats.TotalRuns != 3 || stats.Succeeded != 1 || stats.Failed != 2 {
				t.Errorf("Stats() = %+v", stats)
			}
			if stats.ErrorsByCode["SYMBOL"] != 2 {
				t.Errorf("ErrorsByCode = %v", stats.ErrorsByCode)
			}
			if stats.AvgDurationMS != 4 {
				t.Errorf("AvgDurationMS = %v, want 4", stats.AvgDurationMS)
			}
			if stats.LastRun.IsZero() {
				t.Error("LastRun should be set")
			}
		})
	}
}

func TestStore_Prune(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			old := &Run{Source: "old", Timestamp: time.Now().Add(-48 * time.Hour), Success: true}
			recent := &Run{Source: "recent", Success: true}
			for _, r := range []*Run{old, recent} {
				if err := s.Record(ctx, r); err != nil {
					t.Fatal(err)
				}
			}

			deleted, err := s.Prune(ctx, 24*time.Hour)
			if err != nil {
				t.Fatal(err)
			}
			if deleted != 1 {
				t.Errorf("Prune() deleted %d, want 1", deleted)
			}

			left, _ := s.List(ctx, Filter{})
			if len(left) != 1 || left[0].Source != "recent" {
				t.Errorf("List() after prune = %v", ids(left))
			}
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(Config{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, &Run{ID: "keep", Source: "x", Success: true}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(ctx, "keep"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}

func ids(runs []*Run) []string {
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
