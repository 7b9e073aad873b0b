package session

// OperationKind identifies a state-changing controller operation.
type OperationKind int

const (
	// OperationNone is never in progress; it is the kind reported while idle
	OperationNone OperationKind = iota
	// OperationLogin establishes a session from credentials
	OperationLogin
	// OperationRegister creates an account and establishes its session
	OperationRegister
	// OperationLogout tears the session down
	OperationLogout
	// OperationRestore recovers an existing session at startup
	OperationRestore
)

// String returns the string representation of the operation kind
func (k OperationKind) String() string {
	switch k {
	case OperationLogin:
		return "login"
	case OperationRegister:
		return "register"
	case OperationLogout:
		return "logout"
	case OperationRestore:
		return "restore"
	default:
		return "none"
	}
}

// Mutating reports whether the operation is one of login, register or logout.
func (k OperationKind) Mutating() bool {
	return k == OperationLogin || k == OperationRegister || k == OperationLogout
}

// Status is the controller's operation status: Idle or InProgress(kind).
//
// The zero value is Idle.
type Status struct {
	kind OperationKind
}

// Idle returns the idle status.
func Idle() Status {
	return Status{}
}

// InProgress returns the status for an operation in flight.
func InProgress(kind OperationKind) Status {
	return Status{kind: kind}
}

// IsIdle reports whether no operation is in flight.
func (s Status) IsIdle() bool {
	return s.kind == OperationNone
}

// Operation returns the in-flight operation, or OperationNone when idle.
func (s Status) Operation() OperationKind {
	return s.kind
}

// String returns "idle" or "in_progress(<kind>)"
func (s Status) String() string {
	if s.IsIdle() {
		return "idle"
	}
	return "in_progress(" + s.kind.String() + ")"
}
