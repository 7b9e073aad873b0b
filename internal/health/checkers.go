package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/sessionkit/internal/credentials"
	"github.com/felixgeelhaar/sessionkit/internal/history"
)

// Prober reports the HTTP status of an unauthenticated backend request.
type Prober interface {
	Probe(ctx context.Context) (int, error)
}

// BackendChecker checks that the auth backend answers.
type BackendChecker struct {
	prober Prober
	url    string
}

// NewBackendChecker creates a checker probing p. url is only reported.
func NewBackendChecker(p Prober, url string) *BackendChecker {
	return &BackendChecker{prober: p, url: url}
}

// Name returns the name of this health check.
func (c *BackendChecker) Name() string {
	return "auth-backend"
}

// Check is healthy for any non-5xx response. An unauthenticated probe
// normally gets 401.
func (c *BackendChecker) Check(ctx context.Context) *Result {
	status, err := c.prober.Probe(ctx)
	if err != nil {
		return Unhealthy("auth backend unreachable").
			WithDetail("url", c.url).
			WithError(err)
	}

	if status >= http.StatusInternalServerError {
		return Degraded(fmt.Sprintf("auth backend returned %d", status)).
			WithDetail("url", c.url).
			WithDetail("status", status)
	}
	return Healthy("auth backend reachable").
		WithDetail("url", c.url).
		WithDetail("status", status)
}

// CredentialsChecker checks that the stored token can be read.
type CredentialsChecker struct {
	store   credentials.Store
	backend string
}

// NewCredentialsChecker creates a checker reading from store.
func NewCredentialsChecker(store credentials.Store, backend string) *CredentialsChecker {
	return &CredentialsChecker{store: store, backend: backend}
}

// Name returns the name of this health check.
func (c *CredentialsChecker) Name() string {
	return "credentials-store"
}

// Check is healthy whether or not a token is stored.
func (c *CredentialsChecker) Check(ctx context.Context) *Result {
	rec, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, credentials.ErrNotFound):
		return Healthy("no stored token").
			WithDetail("backend", c.backend)
	case err != nil:
		return Unhealthy("credentials store unreadable").
			WithDetail("backend", c.backend).
			WithError(err)
	}

	return Healthy("token stored").
		WithDetail("backend", c.backend).
		WithDetail("email", rec.Email).
		WithDetail("fingerprint", rec.Fingerprint()).
		WithDetail("saved_at", rec.SavedAt)
}

// HistoryChecker checks that the history database answers queries.
type HistoryChecker struct {
	store *history.Store
}

// NewHistoryChecker creates a checker for store.
func NewHistoryChecker(store *history.Store) *HistoryChecker {
	return &HistoryChecker{store: store}
}

// Name returns the name of this health check.
func (c *HistoryChecker) Name() string {
	return "history-db"
}

// Check reads the newest entry.
func (c *HistoryChecker) Check(ctx context.Context) *Result {
	entries, err := c.store.Recent(ctx, 1)
	if err != nil {
		return Degraded("history unavailable").
			WithError(err)
	}
	if len(entries) == 0 {
		return Healthy("history is empty")
	}

	last := entries[0]
	return Healthy("history readable").
		WithDetail("last_operation", last.Operation).
		WithDetail("last_outcome", last.Outcome).
		WithDetail("last_recorded_at", last.RecordedAt)
}
