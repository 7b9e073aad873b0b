package session

import (
	"context"
	"fmt"
	"log/slog"
)

// Transport performs the actual credential verification and session
// retrieval. It is implemented outside this package.
//
// Implementations should return *AuthError values so callers can tell
// recoverable input errors from backend failures. Other errors are
// classified with Classify.
type Transport interface {
	// Login verifies credentials and returns the authenticated state.
	Login(ctx context.Context, creds Credentials) (State, error)

	// Register creates an account and returns its authenticated state.
	Register(ctx context.Context, profile Profile) (State, error)

	// Logout ends the session on the backend.
	Logout(ctx context.Context) error

	// FetchCurrentSession returns the session the backend still recognizes.
	// An error conventionally means "no session".
	FetchCurrentSession(ctx context.Context) (State, error)
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string
	Password string
}

// String never includes the password.
func (c Credentials) String() string {
	return fmt.Sprintf("credentials(email=%s)", c.Email)
}

// LogValue implements slog.LogValuer without the password.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("email", c.Email))
}

// Profile holds the registration inputs.
type Profile struct {
	DisplayName string
	Email       string
	Password    string
}

// String never includes the password.
func (p Profile) String() string {
	return fmt.Sprintf("profile(name=%s email=%s)", p.DisplayName, p.Email)
}

// LogValue implements slog.LogValuer without the password.
func (p Profile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("display_name", p.DisplayName),
		slog.String("email", p.Email),
	)
}
