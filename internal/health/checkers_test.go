package health

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/sessionkit/internal/credentials"
	"github.com/felixgeelhaar/sessionkit/internal/history"
)

type stubProber struct {
	status int
	err    error
}

func (p stubProber) Probe(context.Context) (int, error) {
	return p.status, p.err
}

func TestBackendChecker(t *testing.T) {
	tests := []struct {
		name   string
		prober stubProber
		want   Status
	}{
		{"unauthorized is reachable", stubProber{status: http.StatusUnauthorized}, StatusHealthy},
		{"ok", stubProber{status: http.StatusOK}, StatusHealthy},
		{"server error", stubProber{status: http.StatusBadGateway}, StatusDegraded},
		{"unreachable", stubProber{err: errors.New("connection refused")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBackendChecker(tt.prober, "https://auth.example.com")
			if c.Name() != "auth-backend" {
				t.Errorf("Name() = %q", c.Name())
			}

			result := c.Check(context.Background())
			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", result.Status, tt.want, result.Message)
			}
			if result.Details["url"] != "https://auth.example.com" {
				t.Errorf("Details[url] = %v", result.Details["url"])
			}
		})
	}
}

type failingStore struct{ credentials.Store }

func (failingStore) Load(context.Context) (credentials.Record, error) {
	return credentials.Record{}, errors.New("permission denied")
}

func TestCredentialsChecker(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewMemoryStore()
	c := NewCredentialsChecker(store, credentials.BackendMemory)

	result := c.Check(ctx)
	if result.Status != StatusHealthy || result.Message != "no stored token" {
		t.Errorf("empty store: %v %q", result.Status, result.Message)
	}

	if err := store.Save(ctx, credentials.Record{Token: "abc", Email: "a@x.com", SavedAt: time.Now()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	result = c.Check(ctx)
	if result.Status != StatusHealthy || result.Message != "token stored" {
		t.Errorf("stored token: %v %q", result.Status, result.Message)
	}
	if result.Details["email"] != "a@x.com" {
		t.Errorf("Details[email] = %v", result.Details["email"])
	}
	if result.Details["fingerprint"] != credentials.Fingerprint("abc") {
		t.Errorf("Details[fingerprint] = %v", result.Details["fingerprint"])
	}

	result = NewCredentialsChecker(failingStore{}, credentials.BackendFile).Check(ctx)
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusUnhealthy)
	}
}

func TestHistoryChecker(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	c := NewHistoryChecker(store)
	if result := c.Check(ctx); result.Status != StatusHealthy || result.Message != "history is empty" {
		t.Errorf("empty history: %v %q", result.Status, result.Message)
	}

	if _, err := store.Record(ctx, history.Entry{Operation: "login", Outcome: history.OutcomeSuccess}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	result := c.Check(ctx)
	if result.Status != StatusHealthy || result.Details["last_operation"] != "login" {
		t.Errorf("history: %v %v", result.Status, result.Details)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if result := c.Check(ctx); result.Status != StatusDegraded {
		t.Errorf("closed store: Status = %v, want %v", result.Status, StatusDegraded)
	}
}
