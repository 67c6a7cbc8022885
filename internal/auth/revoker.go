package auth

import (
	"context"
	"time"
)

// Revoker records sessions that must no longer be accepted before they expire.
type Revoker interface {
	// Revoke marks the session id as revoked until its expiry.
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	// IsRevoked reports whether the session id was revoked.
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// NoopRevoker keeps sessions stateless: revocation is accepted and forgotten.
type NoopRevoker struct{}

func (NoopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (NoopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }
