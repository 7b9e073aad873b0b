package session

import (
	"context"
	"sync"
)

// restorer runs startup restoration at most once and publishes readiness.
type restorer struct {
	once  sync.Once
	ready chan struct{}
}

func newRestorer() *restorer {
	return &restorer{ready: make(chan struct{})}
}

// run executes fn the first time it is called. Concurrent callers block until
// that first call has returned.
func (r *restorer) run(fn func()) {
	r.once.Do(func() {
		defer close(r.ready)
		fn()
	})
}

// done returns a channel closed once restoration has settled.
func (r *restorer) done() <-chan struct{} {
	return r.ready
}

func (r *restorer) wait(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// restoredState reconciles a FetchCurrentSession outcome. Any failure, and
// any result without an identity, means there is no session to restore.
func restoredState(state State, err error) (State, *AuthError) {
	if err != nil {
		authErr := Classify(err)
		if authErr.Kind == KindNoExistingSession {
			return Unauthenticated(), nil
		}
		return Unauthenticated(), authErr
	}
	if !state.Authenticated() {
		return Unauthenticated(), nil
	}
	return state, nil
}
