package daemon

import (
	"runtime"
	"sort"
	"sync"
	"time"
)

// HealthStatus is the result of running every registered check.
type HealthStatus struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	MemoryMB      float64       `json:"memory_mb"`
	Goroutines    int           `json:"goroutines"`
	LastCheck     time.Time     `json:"last_check"`
	Version       string        `json:"version,omitempty"`
	Checks        []CheckResult `json:"checks,omitempty"`
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthChecker runs named checks, such as free disk space under the save
// directory.
type HealthChecker struct {
	mu        sync.RWMutex
	startTime time.Time
	version   string
	checks    map[string]func() error
}

// NewHealthChecker creates a new health checker.
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		version:   version,
		checks:    make(map[string]func() error),
	}
}

// AddCheck adds a named health check.
func (h *HealthChecker) AddCheck(name string, check func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// RemoveCheck removes a health check.
func (h *HealthChecker) RemoveCheck(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.checks, name)
}

// Check runs every check and returns the combined status.
func (h *HealthChecker) Check() *HealthStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := &HealthStatus{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		MemoryMB:      float64(mem.Alloc) / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
		LastCheck:     time.Now(),
		Version:       h.version,
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result := CheckResult{Name: name, Healthy: true}
		if err := h.checks[name](); err != nil {
			result.Healthy = false
			result.Error = err.Error()
			status.Status = "unhealthy"
		}
		status.Checks = append(status.Checks, result)
	}
	h.mu.RUnlock()

	return status
}

// Uptime returns how long the daemon has been running.
func (h *HealthChecker) Uptime() time.Duration {
	return time.Since(h.startTime)
}
