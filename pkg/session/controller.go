package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Controller owns the current session and is the only component that changes
// it. All state-changing operations go through a single-slot coordinator;
// readers only ever see whole published snapshots.
type Controller struct {
	transport   Transport
	clock       func() time.Time
	logger      *slog.Logger
	observer    Observer
	handlers    []EventHandler
	timeout     time.Duration
	startNotify bool

	// mu serializes publication so versions and queue order agree
	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]

	coord    *coordinator
	registry *registry
	restorer *restorer

	dispatchMu sync.Mutex
	queue      []Snapshot
	draining   bool
}

// New creates a controller around transport. The initial snapshot is
// unauthenticated and idle; call Restore to recover an existing session.
func New(transport Transport, opts ...Option) (*Controller, error) {
	if transport == nil {
		return nil, errors.New("session: transport is required")
	}

	c := &Controller{
		transport: transport,
		clock:     time.Now,
		logger:    slog.Default(),
		observer:  noopObserver{},
		coord:     newCoordinator(),
		registry:  &registry{},
		restorer:  newRestorer(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	initial := Snapshot{
		Session: Unauthenticated(WithIssuedAt(c.clock())),
		Status:  Idle(),
	}
	c.snapshot.Store(&initial)

	return c, nil
}

// CurrentSnapshot returns the latest published snapshot.
func (c *Controller) CurrentSnapshot() Snapshot {
	return *c.snapshot.Load()
}

// Subscribe registers l for every published transition. Listeners run in
// subscription order on the goroutine that completed the operation.
func (c *Controller) Subscribe(l Listener) *Subscription {
	if l == nil {
		return &Subscription{}
	}
	return c.registry.add(l)
}

// WhenReady returns a channel closed once startup restoration has settled.
func (c *Controller) WhenReady() <-chan struct{} {
	return c.restorer.done()
}

// WaitReady blocks until startup restoration has settled or ctx is done.
func (c *Controller) WaitReady(ctx context.Context) error {
	return c.restorer.wait(ctx)
}

// WaitIdle blocks until no operation is in flight or ctx is done. Callers
// rejected with KindOperationInProgress use it before retrying.
func (c *Controller) WaitIdle(ctx context.Context) error {
	return c.coord.waitIdle(ctx)
}

// Login establishes a session from credentials.
//
// On failure the session is left unchanged and the returned *AuthError is the
// same value recorded as LastError.
func (c *Controller) Login(ctx context.Context, creds Credentials) (Snapshot, error) {
	return c.authenticate(ctx, OperationLogin, func(ctx context.Context) (State, error) {
		return c.transport.Login(ctx, creds)
	})
}

// Register creates an account and makes its session current. It follows the
// Login contract.
func (c *Controller) Register(ctx context.Context, profile Profile) (Snapshot, error) {
	return c.authenticate(ctx, OperationRegister, func(ctx context.Context) (State, error) {
		return c.transport.Register(ctx, profile)
	})
}

// Logout resets the session to unauthenticated whatever the transport
// reports. A transport failure is recorded as LastError and logged; the only
// error returned is KindOperationInProgress.
func (c *Controller) Logout(ctx context.Context) (Snapshot, error) {
	started, err := c.begin(OperationLogout, nil)
	if err != nil {
		return c.CurrentSnapshot(), err
	}

	_, callErr := c.invoke(ctx, OperationLogout, func(ctx context.Context) (State, error) {
		return Unauthenticated(), c.transport.Logout(ctx)
	})
	authErr := Classify(callErr)
	if authErr != nil {
		c.logger.Warn("logout failed on transport, session cleared locally",
			"kind", string(authErr.Kind),
			"error", authErr.Error())
	}

	now := c.clock()
	snap := c.settle(OperationLogout, func(cur Snapshot) Snapshot {
		cur.Session = Unauthenticated(WithIssuedAt(now))
		cur.LastError = authErr
		return cur
	})

	c.finish(ctx, OperationLogout, snap, authErr, authErr, now.Sub(started))
	return snap, nil
}

// Restore recovers an existing session at startup. It never fails: any
// transport error, and any result without an identity, leaves the session
// unauthenticated. Only the first call reaches the transport; concurrent
// callers wait for it and later callers get the current snapshot.
//
// When a login, register or logout has already run, the session has diverged
// and restoration is skipped.
func (c *Controller) Restore(ctx context.Context) Snapshot {
	c.restorer.run(func() {
		c.restore(ctx)
	})
	return c.CurrentSnapshot()
}

func (c *Controller) restore(ctx context.Context) {
	started, err := c.begin(OperationRestore, func() error {
		if c.coord.hasMutated() {
			return errDiverged
		}
		return nil
	})
	if err != nil {
		c.logger.Debug("session restore skipped", "reason", err.Error())
		return
	}

	state, callErr := c.invoke(ctx, OperationRestore, c.transport.FetchCurrentSession)
	restored, absorbed := restoredState(state, callErr)
	if absorbed != nil {
		c.logger.Debug("session restore found no usable session",
			"kind", string(absorbed.Kind),
			"error", absorbed.Error())
	}

	now := c.clock()
	snap := c.settle(OperationRestore, func(cur Snapshot) Snapshot {
		cur.Session = restored.stampedAt(now)
		return cur
	})

	c.finish(ctx, OperationRestore, snap, nil, absorbed, now.Sub(started))
}

var errDiverged = errors.New("session already changed by another operation")

func (c *Controller) authenticate(ctx context.Context, kind OperationKind, call func(context.Context) (State, error)) (Snapshot, error) {
	started, err := c.begin(kind, nil)
	if err != nil {
		return c.CurrentSnapshot(), err
	}

	state, callErr := c.invoke(ctx, kind, call)
	authErr := Classify(callErr)
	if authErr == nil && !state.Authenticated() {
		authErr = NewError(KindUnknown, "transport returned no identity", map[string]interface{}{
			"operation": kind.String(),
		})
	}

	now := c.clock()
	snap := c.settle(kind, func(cur Snapshot) Snapshot {
		if authErr != nil {
			cur.LastError = authErr
			return cur
		}
		cur.Session = state.stampedAt(now)
		cur.LastError = nil
		return cur
	})

	if authErr != nil {
		c.logger.Info("session operation failed",
			"operation", kind.String(),
			"kind", string(authErr.Kind))
	} else {
		c.logger.Info("session established", "operation", kind.String())
	}

	c.finish(ctx, kind, snap, authErr, authErr, now.Sub(started))
	if authErr != nil {
		return snap, authErr
	}
	return snap, nil
}

// begin acquires the slot and publishes InProgress(kind). guard runs under
// the publication lock before acquisition.
func (c *Controller) begin(kind OperationKind, guard func() error) (time.Time, error) {
	c.mu.Lock()
	if guard != nil {
		if err := guard(); err != nil {
			c.mu.Unlock()
			return time.Time{}, err
		}
	}
	if err := c.coord.acquire(kind); err != nil {
		c.mu.Unlock()
		c.observer.OperationRejected(kind)
		c.logger.Debug("session operation rejected",
			"operation", kind.String(),
			"active", c.coord.active().String())
		return time.Time{}, err
	}

	started := c.clock()
	c.publishLocked(func(cur Snapshot) Snapshot {
		cur.Status = InProgress(kind)
		if kind.Mutating() {
			cur.LastError = nil
		}
		return cur
	}, c.startNotify)
	c.mu.Unlock()

	c.observer.OperationStarted(kind)
	if c.startNotify {
		c.drain()
	}
	return started, nil
}

// settle publishes the outcome with status Idle, frees the slot and notifies
// listeners.
func (c *Controller) settle(kind OperationKind, update func(Snapshot) Snapshot) Snapshot {
	c.mu.Lock()
	snap := c.publishLocked(func(cur Snapshot) Snapshot {
		next := update(cur)
		next.Status = Idle()
		return next
	}, true)
	c.coord.release(kind)
	c.mu.Unlock()

	c.drain()
	return snap
}

func (c *Controller) publishLocked(update func(Snapshot) Snapshot, notify bool) Snapshot {
	cur := *c.snapshot.Load()
	next := update(cur)
	next.Version = cur.Version + 1
	c.snapshot.Store(&next)

	if notify {
		c.dispatchMu.Lock()
		c.queue = append(c.queue, next)
		c.dispatchMu.Unlock()
	}
	return next
}

// drain delivers queued snapshots in publication order. Only one goroutine
// drains at a time; a publication made while a pass is running, including
// one made from inside a listener, is delivered by that pass.
func (c *Controller) drain() {
	c.dispatchMu.Lock()
	if c.draining {
		c.dispatchMu.Unlock()
		return
	}
	c.draining = true

	for len(c.queue) > 0 {
		snap := c.queue[0]
		c.queue = c.queue[1:]
		c.dispatchMu.Unlock()

		c.registry.notify(snap, c.listenerFailed)

		c.dispatchMu.Lock()
	}

	c.queue = nil
	c.draining = false
	c.dispatchMu.Unlock()
}

func (c *Controller) listenerFailed(recovered any) {
	c.logger.Error("session listener panicked", "panic", fmt.Sprint(recovered))
	c.observer.ListenerFailed(recovered)
}

// invoke calls the transport with the configured timeout. A panic is
// recovered as KindUnknown so the controller always returns to Idle.
func (c *Controller) invoke(ctx context.Context, kind OperationKind, call func(context.Context) (State, error)) (state State, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("session transport panicked",
				"operation", kind.String(),
				"panic", fmt.Sprint(rec))
			state = State{}
			err = NewError(KindUnknown, "transport panicked", map[string]interface{}{
				"operation": kind.String(),
				"panic":     fmt.Sprint(rec),
			})
		}
	}()

	return call(ctx)
}

// finish reports a settled operation to the observer and event handlers.
// eventErr is what callers see; observed may also carry absorbed failures.
func (c *Controller) finish(ctx context.Context, kind OperationKind, snap Snapshot, eventErr, observed *AuthError, elapsed time.Duration) {
	if observed != nil {
		c.observer.OperationSettled(kind, elapsed, observed)
	} else {
		c.observer.OperationSettled(kind, elapsed, nil)
	}

	if len(c.handlers) == 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event := Event{
		Operation: kind,
		Snapshot:  snap,
		Err:       eventErr,
		Elapsed:   elapsed,
	}
	hctx := context.WithoutCancel(ctx)
	for _, h := range c.handlers {
		c.handle(hctx, h, event)
	}
}

func (c *Controller) handle(ctx context.Context, h EventHandler, event Event) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("session event handler panicked",
				"operation", event.Operation.String(),
				"panic", fmt.Sprint(rec))
		}
	}()
	h.HandleEvent(ctx, event)
}
