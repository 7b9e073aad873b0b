package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// ErrNotInteractive is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNotInteractive = errors.New("not a terminal: pass credentials with flags or environment")

// PromptCredentials asks for the missing parts of creds.
func PromptCredentials(ctx context.Context, creds session.Credentials) (session.Credentials, error) {
	var fields []huh.Field
	if creds.Email == "" {
		fields = append(fields, emailInput(&creds.Email))
	}
	if creds.Password == "" {
		fields = append(fields, passwordInput("Password", &creds.Password, 1))
	}
	if len(fields) == 0 {
		return creds, nil
	}

	if err := runForm(ctx, huh.NewGroup(fields...).Title("Sign in")); err != nil {
		return session.Credentials{}, err
	}
	return creds, nil
}

// PromptProfile asks for the missing parts of profile.
func PromptProfile(ctx context.Context, profile session.Profile) (session.Profile, error) {
	var fields []huh.Field
	if profile.DisplayName == "" {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Validate(required("name")).
			Value(&profile.DisplayName))
	}
	if profile.Email == "" {
		fields = append(fields, emailInput(&profile.Email))
	}
	if profile.Password == "" {
		fields = append(fields, passwordInput("Choose a password", &profile.Password, 8))
	}
	if len(fields) == 0 {
		return profile, nil
	}

	if err := runForm(ctx, huh.NewGroup(fields...).Title("Create account")); err != nil {
		return session.Profile{}, err
	}
	return profile, nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(ctx context.Context, message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	if err := runForm(ctx, huh.NewGroup(confirm)); err != nil {
		return false, err
	}
	return confirmed, nil
}

func emailInput(value *string) *huh.Input {
	return huh.NewInput().
		Title("Email").
		Placeholder("you@example.com").
		Validate(func(s string) error {
			if !strings.Contains(s, "@") {
				return errors.New("enter an email address")
			}
			return nil
		}).
		Value(value)
}

func passwordInput(title string, value *string, minLen int) *huh.Input {
	return huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if len(s) < minLen {
				if minLen <= 1 {
					return errors.New("password is required")
				}
				return fmt.Errorf("use at least %d characters", minLen)
			}
			return nil
		}).
		Value(value)
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func runForm(ctx context.Context, group *huh.Group) error {
	if !ShouldPrompt() {
		return ErrNotInteractive
	}

	form := huh.NewForm(group)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("prompt canceled: %w", err)
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	if inCI() {
		return false
	}
	return IsInteractive()
}

func inCI() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}
	return false
}
