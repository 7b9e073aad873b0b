package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthError_Error(t *testing.T) {
	err := NewError(KindInvalidCredentials, "bad password", nil)
	assert.Equal(t, "invalid_credentials: bad password", err.Error())

	wrapped := WrapError(KindTransportUnavailable, "dial failed", errors.New("connection refused"), nil)
	assert.Equal(t, "transport_unavailable: dial failed (caused by: connection refused)", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "connection refused")
}

func TestAuthError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("login: %w", NewError(KindInvalidCredentials, "bad", nil))

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrUnknown)
	assert.Equal(t, KindInvalidCredentials, KindOf(err))
	assert.True(t, IsKind(err, KindInvalidCredentials))
	assert.False(t, IsKind(nil, KindInvalidCredentials))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	existing := NewError(KindNoExistingSession, "none", nil)

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"auth error kept", existing, KindNoExistingSession},
		{"deadline", context.DeadlineExceeded, KindTransportUnavailable},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), KindTransportUnavailable},
		{"net error", &net.OpError{Op: "dial", Err: timeoutErr{}}, KindTransportUnavailable},
		{"anything else", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, Classify(nil))
	assert.Same(t, existing, Classify(existing))
}
