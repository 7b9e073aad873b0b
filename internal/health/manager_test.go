package health

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// mockChecker is a test double for health checks
type mockChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) *Result {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Unhealthy("check cancelled").
				WithError(ctx.Err())
		}
	}
	return m.result
}

func TestNewManager(t *testing.T) {
	manager := NewManager()

	if manager.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", manager.timeout, DefaultTimeout)
	}
	if len(manager.CheckNames()) != 0 {
		t.Errorf("checkers should be empty, got %v", manager.CheckNames())
	}
}

func TestWithTimeout(t *testing.T) {
	manager := NewManager()
	customTimeout := 10 * time.Second

	returned := manager.WithTimeout(customTimeout)

	if returned != manager {
		t.Error("WithTimeout should return same manager for chaining")
	}
	if manager.timeout != customTimeout {
		t.Errorf("timeout = %v, want %v", manager.timeout, customTimeout)
	}
}

func TestRunKeepsOrder(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "slow", result: Healthy("ok"), delay: 30 * time.Millisecond})
	manager.AddChecker(&mockChecker{name: "degraded", result: Degraded("partial")})
	manager.AddChecker(&mockChecker{name: "fast", result: Healthy("ok")})

	report := manager.Run(context.Background())

	if len(report.Checks) != 3 {
		t.Fatalf("Run() returned %d results, want 3", len(report.Checks))
	}
	for i, want := range []string{"slow", "degraded", "fast"} {
		if report.Checks[i].Name != want {
			t.Errorf("Checks[%d].Name = %q, want %q", i, report.Checks[i].Name, want)
		}
	}
	if report.Status != StatusDegraded {
		t.Errorf("Status = %v, want %v", report.Status, StatusDegraded)
	}
	if report.Checks[0].Latency <= 0 {
		t.Errorf("expected measured latency, got %v", report.Checks[0].Latency)
	}
}

func TestRunWithTimeout(t *testing.T) {
	manager := NewManager().WithTimeout(50 * time.Millisecond)
	manager.AddChecker(&mockChecker{
		name:   "slow",
		result: Healthy("should timeout"),
		delay:  time.Second,
	})

	report := manager.Run(context.Background())

	result := report.Checks[0]
	if result.Status != StatusUnhealthy {
		t.Errorf("slow check should be unhealthy due to timeout, got %v", result.Status)
	}
	if result.Message != "check cancelled" {
		t.Errorf("Message = %q, want %q", result.Message, "check cancelled")
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", report.Status, StatusUnhealthy)
	}
}

func TestRunConcurrency(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 5; i++ {
		manager.AddChecker(&mockChecker{
			name:   fmt.Sprintf("checker-%d", i),
			result: Healthy("ok"),
			delay:  50 * time.Millisecond,
		})
	}

	start := time.Now()
	report := manager.Run(context.Background())
	elapsed := time.Since(start)

	// sequential execution would take ~250ms
	if elapsed > 200*time.Millisecond {
		t.Errorf("Run took %v, expected parallel execution to be faster", elapsed)
	}
	if len(report.Checks) != 5 {
		t.Errorf("Run() returned %d results, want 5", len(report.Checks))
	}
}

func TestRunNilResult(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "broken"})

	report := manager.Run(context.Background())
	if report.Checks[0].Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", report.Checks[0].Status, StatusUnhealthy)
	}
}

func TestOverallStatus(t *testing.T) {
	named := func(results ...*Result) []NamedResult {
		out := make([]NamedResult, len(results))
		for i, r := range results {
			out[i] = NamedResult{Name: fmt.Sprintf("check%d", i), Result: r}
		}
		return out
	}

	tests := []struct {
		name     string
		results  []NamedResult
		expected Status
	}{
		{"empty results", nil, StatusHealthy},
		{"all healthy", named(Healthy("ok"), Healthy("ok")), StatusHealthy},
		{"one degraded", named(Healthy("ok"), Degraded("partial")), StatusDegraded},
		{"one unhealthy", named(Healthy("ok"), Degraded("partial"), Unhealthy("broken")), StatusUnhealthy},
		{"unhealthy first", named(Unhealthy("broken"), Degraded("partial")), StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := OverallStatus(tt.results); status != tt.expected {
				t.Errorf("OverallStatus() = %v, want %v", status, tt.expected)
			}
		})
	}
}

func TestCheckNames(t *testing.T) {
	manager := NewManager()
	manager.AddChecker(&mockChecker{name: "alpha", result: Healthy("ok")})
	manager.AddChecker(&mockChecker{name: "beta", result: Healthy("ok")})
	manager.AddChecker(&mockChecker{name: "gamma", result: Healthy("ok")})

	names := manager.CheckNames()
	expected := []string{"alpha", "beta", "gamma"}
	if len(names) != len(expected) {
		t.Fatalf("CheckNames() returned %d names, want %d", len(names), len(expected))
	}
	for i, name := range names {
		if name != expected[i] {
			t.Errorf("CheckNames()[%d] = %q, want %q", i, name, expected[i])
		}
	}
}
