package session

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies authentication failures.
type Kind string

// Error kinds
const (
	// KindInvalidCredentials means the transport rejected the input; the user
	// can correct it and retry
	KindInvalidCredentials Kind = "invalid_credentials"
	// KindTransportUnavailable means a network or backend failure; retry later
	KindTransportUnavailable Kind = "transport_unavailable"
	// KindNoExistingSession means restoration found nothing to restore
	KindNoExistingSession Kind = "no_existing_session"
	// KindOperationInProgress means another operation holds the coordinator
	KindOperationInProgress Kind = "operation_in_progress"
	// KindUnknown covers unexpected transport failures
	KindUnknown Kind = "unknown"
)

// Sentinels for errors.Is comparisons. Any *AuthError matches the sentinel of
// its Kind.
var (
	ErrInvalidCredentials   = &AuthError{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrTransportUnavailable = &AuthError{Kind: KindTransportUnavailable, Message: "transport unavailable"}
	ErrNoExistingSession    = &AuthError{Kind: KindNoExistingSession, Message: "no existing session"}
	ErrOperationInProgress  = &AuthError{Kind: KindOperationInProgress, Message: "another session operation is in progress"}
	ErrUnknown              = &AuthError{Kind: KindUnknown, Message: "unknown session failure"}
)

// AuthError represents a session failure with kind and context.
type AuthError struct {
	// Kind is the failure classification
	Kind Kind

	// Message is a human-readable error message
	Message string

	// Context provides additional details about the error
	Context map[string]interface{}

	// Cause is the underlying error that caused this error
	Cause error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is matches any *AuthError of the same Kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// NewError creates a new AuthError.
func NewError(kind Kind, message string, context map[string]interface{}) *AuthError {
	return &AuthError{
		Kind:    kind,
		Message: message,
		Context: context,
	}
}

// WrapError wraps an existing error with an AuthError.
func WrapError(kind Kind, message string, cause error, context map[string]interface{}) *AuthError {
	return &AuthError{
		Kind:    kind,
		Message: message,
		Context: context,
		Cause:   cause,
	}
}

// KindOf returns the Kind of err, or an empty Kind when err carries none.
func KindOf(err error) Kind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return ""
}

// IsKind checks if err is an AuthError with the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Classify converts any transport error into an *AuthError.
//
// Existing AuthErrors are returned as is. Context deadlines, cancellations
// and network errors become KindTransportUnavailable; everything else is
// KindUnknown.
func Classify(err error) *AuthError {
	if err == nil {
		return nil
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(KindTransportUnavailable, "transport call timed out", err, nil)
	}
	if errors.Is(err, context.Canceled) {
		return WrapError(KindTransportUnavailable, "transport call canceled", err, nil)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return WrapError(KindTransportUnavailable, "transport unreachable", err, nil)
	}

	return WrapError(KindUnknown, "unexpected transport failure", err, nil)
}
