package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("  ")
	assert.Error(t, err)
}

func TestRecordRecentRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	first := Entry{
		Operation:     "login",
		Outcome:       OutcomeSuccess,
		Authenticated: true,
		UserID:        "u1",
		Email:         "a@x.com",
		Onboarding:    "complete",
		Version:       2,
		Elapsed:       250 * time.Millisecond,
		RecordedAt:    base,
	}
	second := Entry{
		Operation:    "logout",
		Outcome:      OutcomeFailure,
		ErrorKind:    "transport_unavailable",
		ErrorMessage: "backend unreachable",
		Version:      4,
		RecordedAt:   base.Add(time.Minute),
	}

	id1, err := store.Record(ctx, first)
	require.NoError(t, err)
	id2, err := store.Record(ctx, second)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "logout", entries[0].Operation, "newest first")
	assert.Equal(t, "transport_unavailable", entries[0].ErrorKind)
	assert.False(t, entries[0].Authenticated)

	got := entries[1]
	first.ID = id1
	assert.Equal(t, first, got)
}

func TestRecentLimit(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < DefaultLimit+5; i++ {
		_, err := store.Record(ctx, Entry{
			Operation:  "restore",
			Outcome:    OutcomeSuccess,
			Version:    uint64(i),
			RecordedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	entries, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(DefaultLimit+4), entries[0].Version)

	entries, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultLimit)
}

func TestRecordValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	_, err := store.Record(ctx, Entry{Outcome: OutcomeSuccess})
	assert.Error(t, err, "operation required")

	_, err = store.Record(ctx, Entry{Operation: "login", Outcome: "maybe"})
	assert.Error(t, err, "invalid outcome")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Record(canceled, Entry{Operation: "login", Outcome: OutcomeSuccess})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrune(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := store.Record(ctx, Entry{
			Operation:  "login",
			Outcome:    OutcomeSuccess,
			Version:    uint64(i),
			RecordedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	removed, err := store.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(4), entries[0].Version)
	assert.Equal(t, uint64(3), entries[1].Version)
}

func TestReopenKeepsEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Record(ctx, Entry{Operation: "register", Outcome: OutcomeSuccess})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "register", entries[0].Operation)
}

func TestNilStore(t *testing.T) {
	var store *Store
	assert.NoError(t, store.Close())

	_, err := store.Recent(context.Background(), 1)
	assert.Error(t, err)
}

type stubTransport struct{}

func (stubTransport) Login(context.Context, session.Credentials) (session.State, error) {
	return session.Authenticated(session.Identity{ID: "u1", Email: "a@x.com"},
		session.WithOnboarding(session.OnboardingPending)), nil
}

func (stubTransport) Register(context.Context, session.Profile) (session.State, error) {
	return session.State{}, session.NewError(session.KindInvalidCredentials, "email already registered", nil)
}

func (stubTransport) Logout(context.Context) error { return nil }

func (stubTransport) FetchCurrentSession(context.Context) (session.State, error) {
	return session.State{}, session.ErrNoExistingSession
}

func TestRecorderWithController(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	recorder := NewRecorder(store, nil)

	ctrl, err := session.New(stubTransport{}, session.WithEventHandler(recorder))
	require.NoError(t, err)

	ctx := context.Background()
	ctrl.Restore(ctx)
	_, err = ctrl.Register(ctx, session.Profile{DisplayName: "Alice", Email: "a@x.com", Password: "password1"})
	require.Error(t, err)
	_, err = ctrl.Login(ctx, session.Credentials{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	_, err = ctrl.Logout(ctx)
	require.NoError(t, err)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// newest first
	ops := []string{entries[3].Operation, entries[2].Operation, entries[1].Operation, entries[0].Operation}
	assert.Equal(t, []string{"restore", "register", "login", "logout"}, ops)

	register := entries[2]
	assert.Equal(t, OutcomeFailure, register.Outcome)
	assert.Equal(t, "invalid_credentials", register.ErrorKind)
	assert.Equal(t, "email already registered", register.ErrorMessage)

	login := entries[1]
	assert.Equal(t, OutcomeSuccess, login.Outcome)
	assert.True(t, login.Authenticated)
	assert.Equal(t, "u1", login.UserID)
	assert.Equal(t, "pending", login.Onboarding)

	assert.False(t, entries[0].Authenticated)
}

func TestEntryFromEvent(t *testing.T) {
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	event := session.Event{
		Operation: session.OperationRestore,
		Snapshot:  session.Snapshot{Session: session.Unauthenticated(), Version: 3},
		Elapsed:   time.Second,
	}

	entry := EntryFromEvent(event, at)
	assert.Equal(t, Entry{
		Operation:  "restore",
		Outcome:    OutcomeSuccess,
		Version:    3,
		Elapsed:    time.Second,
		RecordedAt: at,
	}, entry)
}
