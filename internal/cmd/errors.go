package cmd

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// ErrorWithSuggestion wraps an error with actionable recovery suggestions
type ErrorWithSuggestion struct {
	Message     string
	Suggestions []string
	err         error
}

func (e *ErrorWithSuggestion) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if e.err != nil {
		b.WriteString("\n\nDetails: ")
		b.WriteString(e.err.Error())
	}

	return b.String()
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.err
}

// NewErrorWithSuggestions creates an error with recovery suggestions
func NewErrorWithSuggestions(msg string, err error, suggestions ...string) error {
	return &ErrorWithSuggestion{
		Message:     msg,
		Suggestions: suggestions,
		err:         err,
	}
}

// ConfigLoadError creates a helpful error for configuration failures
func ConfigLoadError(path string, err error) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("Failed to load configuration from %q", path),
		err,
		"Show the effective configuration: sessionkit config view",
		"Write a fresh configuration: sessionkit config init --force",
		"Check SESSIONKIT_* environment variables for typos",
	)
}

// CredentialStoreError creates a helpful error for an unusable credentials backend
func CredentialStoreError(backend string, err error) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("Failed to open the %q credentials store", backend),
		err,
		"Check the credentials section: sessionkit config get credentials",
		"Use the file backend: SESSIONKIT_CREDENTIALS_BACKEND=file",
	)
}

// MissingCredentialsError is returned when credentials were neither passed
// nor promptable.
func MissingCredentialsError(err error) error {
	return NewErrorWithSuggestions(
		"Credentials are required",
		err,
		"Pass them as flags: --email you@example.com --password ...",
		"Run the command in an interactive terminal to be prompted",
	)
}

// SessionError explains a failed session operation by its error kind.
// The returned error keeps err in its chain so exit codes follow the kind.
func SessionError(action string, err error) error {
	msg := fmt.Sprintf("%s failed", action)

	switch session.KindOf(err) {
	case session.KindInvalidCredentials:
		return NewErrorWithSuggestions(msg, err,
			"Check the email address and password and try again",
			"Create an account: sessionkit auth register",
		)
	case session.KindTransportUnavailable:
		return NewErrorWithSuggestions(msg, err,
			"Check the backend URL: sessionkit config get api.url",
			"Point at another backend: SESSIONKIT_API_URL=https://auth.example.com",
			"Retry with --log-level debug to see request details",
		)
	case session.KindNoExistingSession:
		return NewErrorWithSuggestions(msg, err,
			"Sign in: sessionkit auth login",
		)
	case session.KindOperationInProgress:
		return NewErrorWithSuggestions(msg, err,
			"Wait for the running operation to finish and retry",
		)
	default:
		return NewErrorWithSuggestions(msg, err,
			"Retry with --log-level debug for details",
		)
	}
}

// NotSignedInError is returned by commands that need a session.
func NotSignedInError() error {
	return NewErrorWithSuggestions(
		"Not signed in",
		session.ErrNoExistingSession,
		"Sign in: sessionkit auth login",
		"Create an account: sessionkit auth register",
	)
}
