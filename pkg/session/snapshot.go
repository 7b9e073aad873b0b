package session

// Snapshot is the immutable published view of controller state.
// It is replaced as a whole on every transition.
type Snapshot struct {
	// Session is the current session state.
	Session State

	// Status is Idle or InProgress(kind).
	Status Status

	// LastError is the failure of the most recent operation, if any.
	// It is cleared when the next mutating operation starts.
	LastError *AuthError

	// Version increases by one with every published snapshot.
	Version uint64
}

// Authenticated reports whether the snapshot carries an identity.
func (s Snapshot) Authenticated() bool {
	return s.Session.Authenticated()
}

// Busy reports whether an operation is in flight.
func (s Snapshot) Busy() bool {
	return !s.Status.IsIdle()
}
