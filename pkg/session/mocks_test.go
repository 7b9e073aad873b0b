package session

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockTransport implements Transport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Login(ctx context.Context, creds Credentials) (State, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(State), args.Error(1)
}

func (m *MockTransport) Register(ctx context.Context, profile Profile) (State, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(State), args.Error(1)
}

func (m *MockTransport) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransport) FetchCurrentSession(ctx context.Context) (State, error) {
	args := m.Called(ctx)
	return args.Get(0).(State), args.Error(1)
}

// gateTransport blocks every call until the test releases it.
type gateTransport struct {
	entered chan OperationKind
	release chan struct{}

	mu    sync.Mutex
	calls map[OperationKind]int
	state State
	err   error
}

func newGateTransport(state State, err error) *gateTransport {
	return &gateTransport{
		entered: make(chan OperationKind, 8),
		release: make(chan struct{}),
		calls:   make(map[OperationKind]int),
		state:   state,
		err:     err,
	}
}

func (g *gateTransport) wait(kind OperationKind) (State, error) {
	g.mu.Lock()
	g.calls[kind]++
	g.mu.Unlock()

	g.entered <- kind
	<-g.release
	return g.state, g.err
}

func (g *gateTransport) count(kind OperationKind) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[kind]
}

func (g *gateTransport) Login(context.Context, Credentials) (State, error) {
	return g.wait(OperationLogin)
}

func (g *gateTransport) Register(context.Context, Profile) (State, error) {
	return g.wait(OperationRegister)
}

func (g *gateTransport) Logout(context.Context) error {
	_, err := g.wait(OperationLogout)
	return err
}

func (g *gateTransport) FetchCurrentSession(context.Context) (State, error) {
	return g.wait(OperationRestore)
}

// recordingObserver collects observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	started  []OperationKind
	settled  []OperationKind
	errs     []error
	rejected []OperationKind
	panics   []any
}

func (o *recordingObserver) OperationStarted(kind OperationKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, kind)
}

func (o *recordingObserver) OperationSettled(kind OperationKind, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settled = append(o.settled, kind)
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) OperationRejected(kind OperationKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, kind)
}

func (o *recordingObserver) ListenerFailed(recovered any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.panics = append(o.panics, recovered)
}

// snapshotLog is a listener that records every snapshot it receives.
type snapshotLog struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (l *snapshotLog) listen(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snaps = append(l.snaps, s)
}

func (l *snapshotLog) all() []Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Snapshot, len(l.snaps))
	copy(out, l.snaps)
	return out
}

// steppingClock advances by one second per reading.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newSteppingClock() *steppingClock {
	return &steppingClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func identityA() Identity {
	return Identity{
		ID:          "user-a",
		DisplayName: "Alice",
		Email:       "a@x.com",
		Attributes:  map[string]string{"role": "admin"},
	}
}

func identityB() Identity {
	return Identity{ID: "user-b", DisplayName: "Bob", Email: "b@x.com"}
}
