package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an unreadable or invalid configuration
	ConfigError = 3

	// NotAuthenticated indicates the command needs a session and none exists
	NotAuthenticated = 4

	// AuthError indicates rejected credentials
	AuthError = 5

	// NetworkError indicates the auth backend could not be reached
	NetworkError = 6

	// Busy indicates another session operation was in progress
	Busy = 7

	// Interrupted indicates the command was canceled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Session errors map by kind; anything else falls back to message heuristics.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch session.KindOf(err) {
	case session.KindInvalidCredentials:
		return AuthError
	case session.KindTransportUnavailable:
		return NetworkError
	case session.KindNoExistingSession:
		return NotAuthenticated
	case session.KindOperationInProgress:
		return Busy
	case session.KindUnknown:
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	// Configuration errors
	if strings.Contains(errMsg, "config") && (strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "parse")) {
		return ConfigError
	}

	// Network errors
	if strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection") {
		return NetworkError
	}
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "not a terminal") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Configuration error"
	case NotAuthenticated:
		return "Not authenticated"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Busy:
		return "Another session operation is in progress"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
