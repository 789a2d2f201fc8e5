// AngelaMos | 2026
// blacklist.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/auth-backend/internal/core"
)

// ErrAlreadyRevoked signals a second logout with the same token. Callers
// treat it as an authentication failure, not a silent no-op.
var ErrAlreadyRevoked = errors.New("token already revoked")

const blacklistKeyPrefix = "revoked:"

// Blacklist records tokens invalidated before their natural expiry. Entries
// are keyed by a hash of the exact token string and carry the token's own
// remaining lifetime as TTL, so storage is bounded by the token window and
// no pruning job is needed.
type Blacklist struct {
	redis *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{redis: client}
}

func (b *Blacklist) Revoke(
	ctx context.Context,
	token string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// past expiry the verifier rejects it anyway
		return nil
	}

	key := blacklistKeyPrefix + core.HashToken(token)

	set, err := b.redis.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	if !set {
		return ErrAlreadyRevoked
	}

	return nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := blacklistKeyPrefix + core.HashToken(token)

	exists, err := b.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}
