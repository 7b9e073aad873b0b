// Package credentials persists the tokens the auth backend hands out so a
// later process can restore the session.
package credentials

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/zeebo/blake3"
)

// ErrNotFound is returned by Load when nothing is stored.
var ErrNotFound = errors.New("credentials not found")

// Record is what the platform returned on login or register.
type Record struct {
	Token        string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Email        string    `json:"email"`
	SavedAt      time.Time `json:"saved_at"`
}

// Fingerprint returns a short identifier for the stored token.
func (r Record) Fingerprint() string {
	return Fingerprint(r.Token)
}

// Store loads, saves and clears a single credential record.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// Fingerprint hashes token with blake3 and returns the first 16 hex
// characters. The empty token has no fingerprint.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
