package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Constructors(t *testing.T) {
	issued := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	unauth := Unauthenticated(WithIssuedAt(issued), WithOnboarding(OnboardingComplete))
	assert.False(t, unauth.Authenticated())
	assert.Equal(t, issued, unauth.IssuedAt())
	assert.Equal(t, OnboardingUnknown, unauth.Onboarding(), "onboarding only applies to an identity")
	_, ok := unauth.Identity()
	assert.False(t, ok)

	auth := Authenticated(identityA(), WithIssuedAt(issued), WithOnboarding(OnboardingPending))
	assert.True(t, auth.Authenticated())
	assert.Equal(t, OnboardingPending, auth.Onboarding())

	var zero State
	assert.False(t, zero.Authenticated())
}

func TestState_IdentityIsCopied(t *testing.T) {
	id := identityA()
	s := Authenticated(id)

	id.Attributes["role"] = "guest"
	got, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, "admin", got.Attributes["role"])

	got.Attributes["role"] = "guest"
	again, _ := s.Identity()
	assert.Equal(t, "admin", again.Attributes["role"])
}

func TestState_Equal(t *testing.T) {
	issued := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	other := identityA()
	other.Attributes = map[string]string{"role": "viewer"}

	tests := []struct {
		name string
		a, b State
		want bool
	}{
		{"both unauthenticated", Unauthenticated(), Unauthenticated(), true},
		{"same identity", Authenticated(identityA(), WithIssuedAt(issued)), Authenticated(identityA(), WithIssuedAt(issued)), true},
		{"authenticated vs not", Authenticated(identityA()), Unauthenticated(), false},
		{"different attributes", Authenticated(identityA()), Authenticated(other), false},
		{"different issued at", Authenticated(identityA(), WithIssuedAt(issued)), Authenticated(identityA()), false},
		{"different onboarding", Authenticated(identityA(), WithOnboarding(OnboardingPending)), Authenticated(identityA()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unauthenticated", Unauthenticated().String())
	assert.Contains(t, Authenticated(identityA()).String(), "email=a@x.com")
	assert.NotContains(t, Authenticated(identityA()).String(), "admin")
}

func TestStatus(t *testing.T) {
	assert.True(t, Idle().IsIdle())
	assert.Equal(t, "idle", Idle().String())

	s := InProgress(OperationRestore)
	assert.False(t, s.IsIdle())
	assert.Equal(t, OperationRestore, s.Operation())
	assert.Equal(t, "in_progress(restore)", s.String())

	assert.True(t, OperationLogout.Mutating())
	assert.False(t, OperationRestore.Mutating())
}

func TestCredentials_RedactPassword(t *testing.T) {
	creds := Credentials{Email: "a@x.com", Password: "hunter2"}
	profile := Profile{DisplayName: "A", Email: "a@x.com", Password: "hunter2"}

	assert.NotContains(t, creds.String(), "hunter2")
	assert.NotContains(t, creds.LogValue().String(), "hunter2")
	assert.NotContains(t, profile.String(), "hunter2")
	assert.NotContains(t, profile.LogValue().String(), "hunter2")
}
