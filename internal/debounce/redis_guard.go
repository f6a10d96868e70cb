package debounce

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard shares debounce state between instances. Both markers expire on their own, so
// the keyspace stays bounded by the number of recently active subjects.
type RedisGuard struct {
	Client      *redis.Client
	Cooldown    time.Duration
	InFlightTTL time.Duration
}

func NewRedisGuard(client *redis.Client, cooldown time.Duration) *RedisGuard {
	return &RedisGuard{
		Client:      client,
		Cooldown:    cooldown,
		InFlightTTL: defaultInFlightTTL,
	}
}

func inFlightKey(subject string) string {
	return fmt.Sprintf("debounce:inflight:%s", subject)
}

func cooldownKey(subject string) string {
	return fmt.Sprintf("debounce:cooldown:%s", subject)
}

func (g *RedisGuard) Acquire(ctx context.Context, subject string) (bool, error) {
	exists, err := g.Client.Exists(ctx, cooldownKey(subject)).Result()
	if err != nil {
		return false, err
	}

	if exists > 0 {
		return false, nil
	}

	acquired, err := g.Client.SetNX(ctx, inFlightKey(subject), time.Now().UTC().Unix(), g.InFlightTTL).Result()
	if err != nil {
		return false, err
	}

	return acquired, nil
}

func (g *RedisGuard) Release(ctx context.Context, subject string) error {
	_, err := g.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, inFlightKey(subject))
		if g.Cooldown > 0 {
			pipe.Set(ctx, cooldownKey(subject), time.Now().UTC().Unix(), g.Cooldown)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return nil
}
