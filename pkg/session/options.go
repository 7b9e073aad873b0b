package session

import (
	"log/slog"
	"time"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source used to stamp states and time operations.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the telemetry observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = normalizeObserver(o)
	}
}

// WithEventHandler adds a lifecycle event handler. Handlers run in
// registration order after listeners have been notified.
func WithEventHandler(h EventHandler) Option {
	return func(c *Controller) {
		if h != nil {
			c.handlers = append(c.handlers, h)
		}
	}
}

// WithOperationTimeout bounds every transport call. A call that exceeds it
// fails with KindTransportUnavailable. Zero disables the bound.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithStartNotifications makes listeners also receive the InProgress
// snapshot published when an operation starts. By default listeners are
// notified once per settled operation.
func WithStartNotifications(enabled bool) Option {
	return func(c *Controller) {
		c.startNotify = enabled
	}
}
