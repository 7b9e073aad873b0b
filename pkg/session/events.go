package session

import (
	"context"
	"time"
)

// Event describes one settled operation. Callers react to events for work the
// controller does not do itself: navigation after login or logout, persisting
// or clearing tokens, auditing.
type Event struct {
	Operation OperationKind
	Snapshot  Snapshot
	Err       *AuthError
	Elapsed   time.Duration
}

// Succeeded reports whether the operation completed without error.
func (e Event) Succeeded() bool {
	return e.Err == nil
}

// EventHandler consumes lifecycle events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event Event)
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event Event)

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

// Observer receives operation telemetry. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	OperationStarted(kind OperationKind)
	OperationSettled(kind OperationKind, elapsed time.Duration, err error)
	OperationRejected(kind OperationKind)
	ListenerFailed(recovered any)
}

type noopObserver struct{}

func (noopObserver) OperationStarted(OperationKind) {}

func (noopObserver) OperationSettled(OperationKind, time.Duration, error) {}

func (noopObserver) OperationRejected(OperationKind) {}

func (noopObserver) ListenerFailed(any) {}

func normalizeObserver(o Observer) Observer {
	if o == nil {
		return noopObserver{}
	}
	return o
}
