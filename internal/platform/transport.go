package platform

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/felixgeelhaar/sessionkit/internal/credentials"
	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// Identity attributes added from the bearer token.
const (
	AttrTokenFingerprint = "token.fingerprint"
	AttrTokenExpiresAt   = "token.expires_at"
	// AttrSignedInAt is when the stored token was issued to this client,
	// kept across restores.
	AttrSignedInAt = "session.signed_in_at"
)

// Transport implements session.Transport against the HTTP backend and keeps
// the issued token in a credentials.Store.
type Transport struct {
	client *Client
	store  credentials.Store
	clock  func() time.Time
	logger *slog.Logger
}

var _ session.Transport = (*Transport)(nil)

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithTransportLogger sets the logger for persistence warnings.
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTransportClock sets the clock used for Record.SavedAt.
func WithTransportClock(now func() time.Time) TransportOption {
	return func(t *Transport) {
		if now != nil {
			t.clock = now
		}
	}
}

// NewTransport creates a transport using client and persisting tokens in store.
func NewTransport(client *Client, store credentials.Store, opts ...TransportOption) *Transport {
	t := &Transport{
		client: client,
		store:  store,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Login validates creds, signs in and persists the token.
func (t *Transport) Login(ctx context.Context, creds session.Credentials) (session.State, error) {
	if err := validateCredentials(creds); err != nil {
		return session.State{}, err
	}

	resp, err := t.client.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return session.State{}, err
	}
	return t.establish(ctx, resp, creds.Email)
}

// Register validates profile, creates the account and persists the token.
func (t *Transport) Register(ctx context.Context, profile session.Profile) (session.State, error) {
	if err := validateProfile(profile); err != nil {
		return session.State{}, err
	}

	resp, err := t.client.Register(ctx, profile.DisplayName, profile.Email, profile.Password)
	if err != nil {
		return session.State{}, err
	}
	return t.establish(ctx, resp, profile.Email)
}

// Logout clears the stored token before telling the backend, so a backend
// failure never leaves a usable token behind.
func (t *Transport) Logout(ctx context.Context) error {
	rec, loadErr := t.store.Load(ctx)
	if err := t.store.Clear(ctx); err != nil {
		t.logger.Warn("failed to clear stored credentials", "error", err)
	}

	if loadErr != nil {
		if errors.Is(loadErr, credentials.ErrNotFound) && t.client.Token() == "" {
			return nil
		}
	} else {
		t.client.SetToken(rec.Token)
	}

	err := t.client.Logout(ctx)
	if session.IsKind(err, session.KindNoExistingSession) {
		return nil
	}
	return err
}

// FetchCurrentSession resolves the stored token to a session. Without a
// stored token no request is made.
func (t *Transport) FetchCurrentSession(ctx context.Context) (session.State, error) {
	rec, err := t.store.Load(ctx)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			return session.State{}, session.ErrNoExistingSession
		}
		return session.State{}, session.WrapError(session.KindUnknown, "failed to load stored credentials", err, nil)
	}

	t.client.SetToken(rec.Token)
	user, err := t.client.CurrentUser(ctx)
	if err != nil {
		if session.IsKind(err, session.KindNoExistingSession) {
			// the backend no longer knows this token
			if clearErr := t.store.Clear(ctx); clearErr != nil {
				t.logger.Warn("failed to clear stale credentials", "error", clearErr)
			}
			t.client.SetToken("")
		}
		return session.State{}, err
	}

	if user.Email == "" {
		user.Email = rec.Email
	}
	return stateFor(*user, rec.Token, rec.SavedAt, user.IsSetupCompleted), nil
}

// establish adopts a sign-in response. Nothing is persisted and the client
// token is untouched unless the response carries both a token and a user.
func (t *Transport) establish(ctx context.Context, resp *AuthResponse, email string) (session.State, error) {
	token := resp.BearerToken()
	if token == "" {
		return session.State{}, session.NewError(session.KindUnknown, "backend issued no token", nil)
	}

	user := resp.User
	if user.ID == "" && user.Email == "" {
		return session.State{}, session.NewError(session.KindUnknown, "backend returned no user identity", nil)
	}
	if user.Email == "" {
		user.Email = email
	}
	rec := credentials.Record{
		Token:        token,
		RefreshToken: resp.RefreshToken,
		Email:        user.Email,
		SavedAt:      t.clock(),
	}
	state := stateFor(user, token, rec.SavedAt, resp.SetupCompleted())

	t.client.SetToken(token)
	if err := t.store.Save(ctx, rec); err != nil {
		t.logger.Warn("signed in but failed to persist credentials", "error", err)
	}
	return state, nil
}

// stateFor builds the session state for user. Backends that omit the user
// ID are keyed by email; a user with neither yields an unauthenticated
// state.
func stateFor(user User, token string, signedInAt time.Time, setupCompleted *bool) session.State {
	if user.ID == "" {
		user.ID = user.Email
	}
	if user.ID == "" {
		return session.Unauthenticated()
	}

	attrs := make(map[string]string, len(user.Attributes)+3)
	for k, v := range user.Attributes {
		attrs[k] = v
	}
	for k, v := range tokenAttributes(token) {
		attrs[k] = v
	}
	if !signedInAt.IsZero() {
		attrs[AttrSignedInAt] = signedInAt.UTC().Format(time.RFC3339)
	}

	onboarding := session.OnboardingUnknown
	if setupCompleted != nil {
		onboarding = session.OnboardingPending
		if *setupCompleted {
			onboarding = session.OnboardingComplete
		}
	}

	return session.Authenticated(session.Identity{
		ID:          user.ID,
		DisplayName: user.Name,
		Email:       user.Email,
		Attributes:  attrs,
	}, session.WithOnboarding(onboarding))
}

// tokenAttributes describes token without verifying its signature.
func tokenAttributes(token string) map[string]string {
	attrs := map[string]string{}
	if token == "" {
		return attrs
	}
	attrs[AttrTokenFingerprint] = credentials.Fingerprint(token)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return attrs
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		attrs[AttrTokenExpiresAt] = exp.UTC().Format(time.RFC3339)
	}
	return attrs
}
