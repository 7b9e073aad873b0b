// Package health checks the dependencies a session needs: the auth backend,
// the credentials store and the history database.
//
// Example usage:
//
//	manager := health.NewManager()
//	manager.AddChecker(health.NewBackendChecker(client, cfg.API.URL))
//	manager.AddChecker(health.NewCredentialsChecker(store, cfg.Credentials.Backend))
//
//	report := manager.Run(ctx)
//	for _, check := range report.Checks {
//	    logger.Info("health check", "name", check.Name, "status", check.Status)
//	}
package health

import (
	"context"
	"fmt"
	"time"
)

// Checker verifies one dependency.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "auth-backend".
	Name() string

	// Check must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	// StatusHealthy means the dependency works.
	StatusHealthy Status = "healthy"

	// StatusDegraded means sessions still work but something is off,
	// e.g. history cannot be written or the backend answers 5xx.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means sign-in or restore cannot work.
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Worse returns whichever of s and other is less healthy.
func (s Status) Worse(other Status) Status {
	if other.severity() > s.severity() {
		return other
	}
	return s
}

// Result is what a Checker reports. Details end up in doctor --json.
type Result struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Latency time.Duration          `json:"latency"`
}

// NewResult creates a result with an empty detail map.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail and returns r for chaining.
func (r *Result) WithDetail(key string, value interface{}) *Result {
	r.Details[key] = value
	return r
}

// WithError records err under the "error" detail. A nil err is ignored.
func (r *Result) WithError(err error) *Result {
	if err == nil {
		return r
	}
	return r.WithDetail("error", err.Error())
}

// Err returns the recorded error detail, or "".
func (r *Result) Err() string {
	if v, ok := r.Details["error"]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// WithLatency sets the latency and returns r for chaining.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

// Healthy creates a healthy result.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
