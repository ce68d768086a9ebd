package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Check is a named dependency check. Critical checks gate readiness.
// Detail, when set, adds a short status line to the detailed report.
type Check struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
	Detail   func() string
}

// LoadTracker reports when a cached dataset was last loaded
type LoadTracker interface {
	LoadedAt() time.Time
}

// PlayerPoolCheck fails until the pool has loaded and, with a positive
// maxAge, when the last refresh is older than maxAge
func PlayerPoolCheck(pool LoadTracker, maxAge time.Duration) Check {
	return Check{
		Name:     "players",
		Critical: true,
		Ping: func(context.Context) error {
			loaded := pool.LoadedAt()
			if loaded.IsZero() {
				return errors.New("player pool not loaded")
			}
			if age := time.Since(loaded); maxAge > 0 && age > maxAge {
				return fmt.Errorf("player pool is stale: last refresh %s ago", age.Round(time.Second))
			}
			return nil
		},
		Detail: func() string {
			if loaded := pool.LoadedAt(); !loaded.IsZero() {
				return "loaded at " + loaded.UTC().Format(time.RFC3339)
			}
			return ""
		},
	}
}

// Health serves the liveness, readiness and detailed health endpoints
type Health struct {
	checks  []Check
	timeout time.Duration
}

// NewHealth creates health handlers over the given checks
func NewHealth(checks ...Check) *Health {
	return &Health{checks: checks, timeout: 2 * time.Second}
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (h *Health) run(ctx context.Context) (map[string]checkResult, bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make(map[string]checkResult, len(h.checks))
	healthy, ready := true, true
	for _, c := range h.checks {
		var detail string
		if c.Detail != nil {
			detail = c.Detail()
		}
		if err := c.Ping(ctx); err != nil {
			results[c.Name] = checkResult{Status: "unhealthy", Error: err.Error(), Detail: detail}
			healthy = false
			if c.Critical {
				ready = false
			}
			continue
		}
		results[c.Name] = checkResult{Status: "healthy", Detail: detail}
	}
	return results, healthy, ready
}

// Details reports every check, 503 when any of them fails
func (h *Health) Details(w http.ResponseWriter, r *http.Request) {
	results, healthy, _ := h.run(r.Context())
	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    results,
	})
}

// Liveness returns 200 while the process is running; dependencies are not checked
func (h *Health) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// Readiness returns 200 when every critical dependency answers
func (h *Health) Readiness(w http.ResponseWriter, r *http.Request) {
	results, _, ready := h.run(r.Context())
	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "not_ready",
			"checks":    results,
			"timestamp": time.Now().Unix(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
