package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedPrefix = "session:revoked:"

// RedisRevoker menyimpan token id yang sudah logout sampai token kedaluwarsa.
type RedisRevoker struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client, now: time.Now}
}

// Revoke dengan until kosong menyimpan key tanpa TTL.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	var ttl time.Duration
	if !until.IsZero() {
		ttl = until.Sub(r.now())
		if ttl <= 0 {
			return nil
		}
	}
	if err := r.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}
