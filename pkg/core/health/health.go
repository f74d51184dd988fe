package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a check
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusUnknown   Status = "unknown"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string                 `json:"name" yaml:"name"`
	Status    Status                 `json:"status" yaml:"status"`
	Message   string                 `json:"message,omitempty" yaml:"message,omitempty"`
	Duration  time.Duration          `json:"duration" yaml:"duration"`
	Timestamp time.Time              `json:"timestamp" yaml:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// Checker is an interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// NamedCheckFunc wraps a check function with a name
type NamedCheckFunc struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &NamedCheckFunc{name: name, fn: fn}
}

// Name returns the checker name
func (c *NamedCheckFunc) Name() string {
	return c.name
}

// Check runs the health check
func (c *NamedCheckFunc) Check(ctx context.Context) CheckResult {
	return c.fn(ctx)
}

// Registry manages multiple health checkers
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	name     string
	version  string
}

// NewRegistry creates a new health check registry
func NewRegistry(name, version string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		name:     name,
		version:  version,
	}
}

// Register adds a checker to the registry, replacing one with the same name
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// RegisterFunc adds a check function to the registry
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context) CheckResult) {
	r.Register(NewChecker(name, fn))
}

// Unregister removes a checker from the registry
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

// Check runs all health checks concurrently; results are sorted by name
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := &Report{
		Name:      r.name,
		Version:   r.version,
		Timestamp: time.Now(),
		Checks:    make([]CheckResult, 0, len(r.checkers)),
	}

	var wg sync.WaitGroup
	results := make(chan CheckResult, len(r.checkers))

	for _, checker := range r.checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			if result.Name == "" {
				result.Name = c.Name()
			}
			results <- result
		}(checker)
	}

	wg.Wait()
	close(results)

	overallStatus := StatusHealthy
	for result := range results {
		report.Checks = append(report.Checks, result)
		switch result.Status {
		case StatusUnhealthy:
			overallStatus = StatusUnhealthy
		case StatusDegraded:
			if overallStatus != StatusUnhealthy {
				overallStatus = StatusDegraded
			}
		}
	}
	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})

	report.Status = overallStatus
	return report
}

// CheckWithTimeout runs all health checks with a timeout
func (r *Registry) CheckWithTimeout(timeout time.Duration) *Report {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.Check(ctx)
}

// Report represents the overall health report
type Report struct {
	Name      string        `json:"name" yaml:"name"`
	Version   string        `json:"version" yaml:"version"`
	Status    Status        `json:"status" yaml:"status"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
	Checks    []CheckResult `json:"checks" yaml:"checks"`
}

// Healthy reports whether no check failed
func (r *Report) Healthy() bool {
	return r.Status != StatusUnhealthy
}

// String returns a string representation of the report
func (r *Report) String() string {
	return fmt.Sprintf("%s %s: %s, %d checks", r.Name, r.Version, r.Status, len(r.Checks))
}

// Common health checks

// ErrorCheck reports unhealthy with the error message when fn fails
func ErrorCheck(name string, fn func(ctx context.Context) error) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		if err := fn(ctx); err != nil {
			return CheckResult{Name: name, Status: StatusUnhealthy, Message: err.Error()}
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "ok"}
	})
}

// WritableDirCheck verifies that files can be created in dir. A missing
// directory is degraded since writers create it on demand.
func WritableDirCheck(name, dir string) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Status:  StatusHealthy,
			Details: map[string]interface{}{"dir": dir},
		}

		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			result.Status = StatusDegraded
			result.Message = "directory does not exist yet"
			return result
		case err != nil:
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		case !info.IsDir():
			result.Status = StatusUnhealthy
			result.Message = "not a directory"
			return result
		}

		probe, err := os.CreateTemp(dir, ".rungc-health-*")
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			return result
		}
		probe.Close()
		os.Remove(probe.Name())

		result.Message = "writable"
		return result
	})
}

// FileDirCheck checks the directory that will hold path
func FileDirCheck(name, path string) Checker {
	return WritableDirCheck(name, filepath.Dir(path))
}

// Disabled returns a checker for a switched off feature
func Disabled(name, reason string) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		return CheckResult{
			Name:    name,
			Status:  StatusDegraded,
			Message: reason,
		}
	})
}
