package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo is the revocation list. Entries carry a TTL equal to the
// revoked token's remaining lifetime, so the set never outgrows the set
// of tokens that are still time-valid.
type TokenRepo struct {
	client *redis.Client
}

func NewTokenRepo(client *redis.Client) *TokenRepo {
	return &TokenRepo{
		client: client,
	}
}

// revocationKey digests the raw token; tokens themselves never reach
// the store.
func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}

func (r *TokenRepo) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; nothing left to revoke.
		return nil
	}

	return r.client.Set(ctx, revocationKey(token), "1", ttl).Err()
}

func (r *TokenRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	count, err := r.client.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
