package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyTTL = 24 * time.Hour

// Guard remembers request keys in redis so a retried order creation
// is not applied twice.
type Guard struct {
	rdb *redis.Client
}

func NewGuard(addr string) *Guard {
	return &Guard{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// Claim marks the key as used. It returns false when the key was
// already claimed by an earlier request.
func (g *Guard) Claim(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("idempotent-key:%s", key)
	ok, err := g.rdb.SetNX(ctx, redisKey, "exists", keyTTL).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return ok, nil
}

func (g *Guard) Close() error {
	return g.rdb.Close()
}
