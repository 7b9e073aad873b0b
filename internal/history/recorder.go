package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// Recorder writes every settled session operation to a Store.
type Recorder struct {
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

var _ session.EventHandler = (*Recorder)(nil)

// NewRecorder creates a recorder writing to store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// HandleEvent implements session.EventHandler. Write failures are logged and
// never reach the controller.
func (r *Recorder) HandleEvent(ctx context.Context, event session.Event) {
	entry := EntryFromEvent(event, r.now())
	if _, err := r.store.Record(ctx, entry); err != nil {
		r.logger.Warn("failed to record session transition",
			"operation", entry.Operation,
			"error", err)
	}
}

// EntryFromEvent converts a settled operation to an Entry.
func EntryFromEvent(event session.Event, at time.Time) Entry {
	snap := event.Snapshot
	entry := Entry{
		Operation:     event.Operation.String(),
		Outcome:       OutcomeSuccess,
		Authenticated: snap.Authenticated(),
		Version:       snap.Version,
		Elapsed:       event.Elapsed,
		RecordedAt:    at,
	}

	if id, ok := snap.Session.Identity(); ok {
		entry.UserID = id.ID
		entry.Email = id.Email
		entry.Onboarding = snap.Session.Onboarding().String()
	}

	if event.Err != nil {
		entry.Outcome = OutcomeFailure
		entry.ErrorKind = string(event.Err.Kind)
		entry.ErrorMessage = event.Err.Message
	}
	return entry
}
