// Package health implements liveness and readiness checks for the server.
// Liveness is a constant "ok"; readiness aggregates registered component
// checks (audit storage, ruleset manager) with a per-check timeout.
package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc reports whether a component is healthy. A nil return means
// healthy; an error describes the problem.
type CheckFunc func(ctx context.Context) error

// Result is the outcome of a single component check.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Status is the aggregate health of the process.
type Status struct {
	Status    string            `json:"status"`
	Checks    map[string]Result `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Checker runs registered component checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// New creates a checker. A zero timeout defaults to 5 seconds per check.
func New(timeout time.Duration) *Checker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
	}
}

// Register adds a named component check, replacing any existing one.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Liveness reports that the process is running. It never fails.
func (c *Checker) Liveness(ctx context.Context) Status {
	return Status{Status: "ok", Timestamp: time.Now()}
}

// Readiness runs every registered check and aggregates the results.
// The overall status is "ready" only when every check passes.
func (c *Checker) Readiness(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := Status{
		Status:    "ready",
		Checks:    make(map[string]Result, len(checks)),
		Timestamp: time.Now(),
	}

	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := check(checkCtx)
		cancel()

		if err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = Result{Status: "unhealthy", Message: err.Error()}
			continue
		}
		status.Checks[name] = Result{Status: "ok"}
	}

	return status
}
