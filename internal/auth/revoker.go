package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// Revoker tracks logged-out token IDs in Redis until their natural expiry.
type Revoker struct {
	client *redis.Client
}

// NewRevoker creates a token revocation store.
func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client}
}

// Revoke marks a token ID as revoked for ttl (the token's remaining lifetime).
func (r *Revoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token ID has been revoked.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
