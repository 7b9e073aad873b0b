package session

import (
	"fmt"
	"time"
)

// Identity describes the authenticated user.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
	Attributes  map[string]string
}

func (i Identity) clone() Identity {
	out := i
	if i.Attributes != nil {
		out.Attributes = make(map[string]string, len(i.Attributes))
		for k, v := range i.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

func (i Identity) equal(o Identity) bool {
	if i.ID != o.ID || i.DisplayName != o.DisplayName || i.Email != o.Email {
		return false
	}
	if len(i.Attributes) != len(o.Attributes) {
		return false
	}
	for k, v := range i.Attributes {
		if ov, ok := o.Attributes[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Onboarding reports whether the account finished its initial setup.
// It is carried as metadata and never changes controller status.
type Onboarding int

const (
	// OnboardingUnknown means the transport did not report setup status
	OnboardingUnknown Onboarding = iota
	// OnboardingPending means the account still has to complete setup
	OnboardingPending
	// OnboardingComplete means setup is done
	OnboardingComplete
)

// String returns the string representation of the onboarding status
func (o Onboarding) String() string {
	switch o {
	case OnboardingPending:
		return "pending"
	case OnboardingComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// State is an immutable session value: either no session, or an
// authenticated identity plus metadata.
//
// The zero value is an unauthenticated state.
type State struct {
	identity   *Identity
	issuedAt   time.Time
	onboarding Onboarding
}

// StateOption customizes a State during construction.
type StateOption func(*State)

// WithIssuedAt sets the time the state became current.
func WithIssuedAt(t time.Time) StateOption {
	return func(s *State) {
		s.issuedAt = t
	}
}

// WithOnboarding sets the onboarding status reported by the transport.
func WithOnboarding(o Onboarding) StateOption {
	return func(s *State) {
		s.onboarding = o
	}
}

// Unauthenticated returns a state without an identity.
func Unauthenticated(opts ...StateOption) State {
	s := State{}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	s.onboarding = OnboardingUnknown
	return s
}

// Authenticated returns a state holding a copy of identity.
func Authenticated(identity Identity, opts ...StateOption) State {
	id := identity.clone()
	s := State{identity: &id}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// Authenticated reports whether the state carries an identity.
func (s State) Authenticated() bool {
	return s.identity != nil
}

// Identity returns a copy of the identity and whether one is present.
func (s State) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return s.identity.clone(), true
}

// IssuedAt returns when the state became current.
func (s State) IssuedAt() time.Time {
	return s.issuedAt
}

// Onboarding returns the onboarding status carried with the identity.
func (s State) Onboarding() Onboarding {
	return s.onboarding
}

// Equal reports whether both states hold the same identity and metadata.
func (s State) Equal(o State) bool {
	if s.Authenticated() != o.Authenticated() {
		return false
	}
	if s.identity != nil && !s.identity.equal(*o.identity) {
		return false
	}
	return s.issuedAt.Equal(o.issuedAt) && s.onboarding == o.onboarding
}

func (s State) stampedAt(t time.Time) State {
	out := s
	out.issuedAt = t
	return out
}

// String renders the state for diagnostics. Attributes are omitted.
func (s State) String() string {
	if s.identity == nil {
		return "unauthenticated"
	}
	return fmt.Sprintf("authenticated(id=%s email=%s onboarding=%s)", s.identity.ID, s.identity.Email, s.onboarding)
}
