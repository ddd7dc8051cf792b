package repo

import (
	"context"
	"time"
)

// TokenRepo is the revocation list consulted on every authenticated
// request. Entries live until the token's own expiry.
type TokenRepo interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error

	IsRevoked(ctx context.Context, token string) (bool, error)
}
