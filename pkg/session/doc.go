// Package session manages the client-side lifecycle of an authentication session.
//
// A Controller owns the single current session state and serializes the
// operations that change it:
//   - Restore recovers an existing session at startup and never fails
//   - Login and Register establish a new identity through a Transport
//   - Logout always resets the local session, even when the backend call fails
//
// Presentation layers read immutable Snapshots (CurrentSnapshot) or subscribe
// to them (Subscribe). They never mutate controller state directly.
//
// Only one operation may be in flight at a time. A second call made while
// another is running fails immediately with an *AuthError of kind
// KindOperationInProgress; it is never queued. Callers that need to retry can
// wait with WaitIdle or, at startup, WaitReady.
//
// The package does not perform credential verification, persistence, or
// navigation itself. Those belong to the Transport implementation and to
// EventHandlers registered by the caller.
package session
