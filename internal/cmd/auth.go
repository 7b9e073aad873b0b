package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sessionkit/internal/platform"
	"github.com/felixgeelhaar/sessionkit/internal/telemetry"
	"github.com/felixgeelhaar/sessionkit/internal/tui"
	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign out and inspect the session",
	Long: `Manage the session with the auth backend.

Every auth command first restores the stored session, so "auth status"
reports who is signed in and "auth login" notices an existing session.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in to the auth backend.

Missing credentials are prompted for when running in a terminal.`,
	Example: `  sessionkit auth login
  sessionkit auth login --email you@example.com --password "$PASSWORD"`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	Long: `Sign out of the auth backend.

The stored token is always removed locally, even when the backend cannot be
reached.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var (
	loginEmail    string
	loginPassword string
	loginForce    bool

	registerName     string
	registerEmail    string
	registerPassword string

	statusJSON  bool
	statusCheck bool
)

func init() {
	authLoginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	authLoginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	authLoginCmd.Flags().BoolVar(&loginForce, "force", false, "sign in again when a session exists")

	authRegisterCmd.Flags().StringVar(&registerName, "name", "", "display name")
	authRegisterCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	authRegisterCmd.Flags().StringVar(&registerPassword, "password", "", "account password")

	authStatusCmd.Flags().BoolVar(&statusJSON, "json", false, "output the session as JSON")
	authStatusCmd.Flags().BoolVar(&statusCheck, "check", false, "exit with status 4 when not signed in")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "auth.login")
	defer span.End()

	out := cmd.OutOrStdout()
	if snap := a.restore(ctx); snap.Authenticated() && !loginForce {
		id, _ := snap.Session.Identity()
		fmt.Fprintf(out, "Already signed in as %s\n", displayName(id))
		fmt.Fprintln(out, "Use --force to sign in again.")
		return nil
	}

	creds := session.Credentials{Email: loginEmail, Password: loginPassword}
	if creds.Email == "" || creds.Password == "" {
		if creds, err = tui.PromptCredentials(ctx, creds); err != nil {
			telemetry.RecordError(span, err)
			return MissingCredentialsError(err)
		}
	}

	snap, err := a.ctrl.Login(ctx, creds)
	if err != nil {
		telemetry.RecordError(span, err)
		return SessionError("Sign-in", err)
	}
	telemetry.RecordSuccess(span)

	printSignedIn(out, snap)
	return nil
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "auth.register")
	defer span.End()

	out := cmd.OutOrStdout()
	if snap := a.restore(ctx); snap.Authenticated() {
		id, _ := snap.Session.Identity()
		fmt.Fprintf(out, "Signed in as %s; the new account replaces this session.\n", displayName(id))
	}

	profile := session.Profile{DisplayName: registerName, Email: registerEmail, Password: registerPassword}
	if profile.DisplayName == "" || profile.Email == "" || profile.Password == "" {
		if profile, err = tui.PromptProfile(ctx, profile); err != nil {
			telemetry.RecordError(span, err)
			return MissingCredentialsError(err)
		}
	}

	snap, err := a.ctrl.Register(ctx, profile)
	if err != nil {
		telemetry.RecordError(span, err)
		return SessionError("Registration", err)
	}
	telemetry.RecordSuccess(span)

	printSignedIn(out, snap)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "auth.logout")
	defer span.End()

	out := cmd.OutOrStdout()
	before := a.restore(ctx)

	snap, err := a.ctrl.Logout(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return SessionError("Sign-out", err)
	}
	telemetry.RecordSuccess(span)

	if !before.Authenticated() {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	if snap.LastError != nil {
		fmt.Fprintf(out, "Signed out locally; the backend was not notified: %s\n", snap.LastError.Message)
	} else {
		fmt.Fprintln(out, "Signed out.")
	}
	fmt.Fprintln(out, "Sign in again with: sessionkit auth login")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, span := telemetry.StartCommandSpan(cmd.Context(), "auth.status")
	defer span.End()

	snap := a.restore(ctx)
	out := cmd.OutOrStdout()

	if statusJSON {
		data, err := json.MarshalIndent(newStatusOutput(snap), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprint(out, tui.RenderSnapshot(snap, tui.PlainStyles()))
	}

	if statusCheck && !snap.Authenticated() {
		return NotSignedInError()
	}
	return nil
}

// printSignedIn reports a successful login or registration and points at
// onboarding when it is unfinished.
func printSignedIn(out io.Writer, snap session.Snapshot) {
	id, _ := snap.Session.Identity()
	fmt.Fprintf(out, "Signed in as %s\n", displayName(id))

	if snap.Session.Onboarding() == session.OnboardingPending {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Your account setup is not finished yet.")
		fmt.Fprintln(out, "Complete onboarding in the web app before continuing.")
	}
}

func displayName(id session.Identity) string {
	switch {
	case id.DisplayName != "" && id.Email != "":
		return fmt.Sprintf("%s <%s>", id.DisplayName, id.Email)
	case id.Email != "":
		return id.Email
	case id.DisplayName != "":
		return id.DisplayName
	default:
		return id.ID
	}
}

// statusOutput is the JSON form of `auth status`.
type statusOutput struct {
	Authenticated bool         `json:"authenticated"`
	User          *userOutput  `json:"user,omitempty"`
	Onboarding    string       `json:"onboarding,omitempty"`
	Since         *time.Time   `json:"since,omitempty"`
	UpdatedAt     *time.Time   `json:"updated_at,omitempty"`
	Status        string       `json:"status"`
	LastError     *errorOutput `json:"last_error,omitempty"`
	Version       uint64       `json:"version"`
}

type userOutput struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Email      string            `json:"email,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type errorOutput struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newStatusOutput(snap session.Snapshot) statusOutput {
	out := statusOutput{
		Authenticated: snap.Authenticated(),
		Status:        snap.Status.String(),
		Version:       snap.Version,
	}

	if id, ok := snap.Session.Identity(); ok {
		out.User = &userOutput{
			ID:         id.ID,
			Name:       id.DisplayName,
			Email:      id.Email,
			Attributes: id.Attributes,
		}
		out.Onboarding = snap.Session.Onboarding().String()
		if since, err := time.Parse(time.RFC3339, id.Attributes[platform.AttrSignedInAt]); err == nil {
			out.Since = &since
		}
		if updated := snap.Session.IssuedAt(); !updated.IsZero() {
			out.UpdatedAt = &updated
		}
	}

	if snap.LastError != nil {
		out.LastError = &errorOutput{
			Kind:    string(snap.LastError.Kind),
			Message: snap.LastError.Message,
		}
	}
	return out
}
