package tui

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

func TestRenderSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		snap    session.Snapshot
		want    []string
		notWant []string
	}{
		{
			name: "authenticated",
			snap: authenticatedSnapshot(3),
			want: []string{"authenticated", "Alice <a@x.com>", "u1", "complete", "role=admin", "idle", "3"},
		},
		{
			name: "signed out with error",
			snap: session.Snapshot{
				Session:   session.Unauthenticated(),
				Status:    session.Idle(),
				LastError: session.NewError(session.KindTransportUnavailable, "backend unreachable", nil),
			},
			want:    []string{"not signed in", "Last error", "backend unreachable"},
			notWant: []string{"Onboarding"},
		},
		{
			name: "in progress",
			snap: session.Snapshot{
				Session: session.Unauthenticated(),
				Status:  session.InProgress(session.OperationRestore),
			},
			want: []string{"restore in progress"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderSnapshot(tt.snap, PlainStyles())
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestUserLine(t *testing.T) {
	tests := []struct {
		id   session.Identity
		want string
	}{
		{session.Identity{DisplayName: "Alice", Email: "a@x.com"}, "Alice <a@x.com>"},
		{session.Identity{Email: "a@x.com"}, "a@x.com"},
		{session.Identity{DisplayName: "Alice"}, "Alice"},
	}

	for _, tt := range tests {
		if got := userLine(tt.id); got != tt.want {
			t.Errorf("userLine(%v) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
