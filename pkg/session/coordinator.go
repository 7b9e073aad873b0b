package session

import (
	"context"
	"sync"
)

// coordinator is a single-slot, fail-fast lock over controller operations.
// Acquisition never blocks and never queues.
type coordinator struct {
	mu      sync.Mutex
	current OperationKind
	idle    chan struct{}
	mutated bool
}

func newCoordinator() *coordinator {
	idle := make(chan struct{})
	close(idle)
	return &coordinator{idle: idle}
}

// acquire takes the slot for kind or fails with KindOperationInProgress.
func (c *coordinator) acquire(kind OperationKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != OperationNone {
		return NewError(KindOperationInProgress, "another session operation is in progress", map[string]interface{}{
			"requested": kind.String(),
			"active":    c.current.String(),
		})
	}

	c.current = kind
	c.idle = make(chan struct{})
	if kind.Mutating() {
		c.mutated = true
	}
	return nil
}

// release frees the slot held by kind.
func (c *coordinator) release(kind OperationKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != kind {
		return
	}
	c.current = OperationNone
	close(c.idle)
}

// active returns the operation holding the slot.
func (c *coordinator) active() OperationKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// hasMutated reports whether a login, register or logout ever held the slot.
func (c *coordinator) hasMutated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutated
}

// idleCh returns a channel closed once the slot is free.
func (c *coordinator) idleCh() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idle
}

// waitIdle blocks until the current operation settles or ctx is done.
func (c *coordinator) waitIdle(ctx context.Context) error {
	select {
	case <-c.idleCh():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
