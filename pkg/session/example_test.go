package session_test

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

type staticTransport struct{}

func (staticTransport) Login(_ context.Context, creds session.Credentials) (session.State, error) {
	if creds.Password != "secret" {
		return session.State{}, session.NewError(session.KindInvalidCredentials, "wrong password", nil)
	}
	return session.Authenticated(session.Identity{ID: "42", Email: creds.Email}), nil
}

func (staticTransport) Register(_ context.Context, p session.Profile) (session.State, error) {
	return session.Authenticated(session.Identity{ID: "43", DisplayName: p.DisplayName, Email: p.Email}), nil
}

func (staticTransport) Logout(context.Context) error { return nil }

func (staticTransport) FetchCurrentSession(context.Context) (session.State, error) {
	return session.State{}, session.ErrNoExistingSession
}

func Example() {
	ctx := context.Background()
	ctrl, err := session.New(staticTransport{})
	if err != nil {
		panic(err)
	}

	ctrl.Subscribe(func(s session.Snapshot) {
		fmt.Println("notified:", s.Session, s.Status)
	})

	ctrl.Restore(ctx)

	if _, err := ctrl.Login(ctx, session.Credentials{Email: "a@x.com", Password: "nope"}); err != nil {
		fmt.Println("login failed:", session.KindOf(err))
	}

	snap, _ := ctrl.Login(ctx, session.Credentials{Email: "a@x.com", Password: "secret"})
	fmt.Println("authenticated:", snap.Authenticated())

	// Output:
	// notified: unauthenticated idle
	// notified: unauthenticated idle
	// login failed: invalid_credentials
	// notified: authenticated(id=42 email=a@x.com onboarding=unknown) idle
	// authenticated: true
}
