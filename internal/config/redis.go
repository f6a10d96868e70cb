package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// NewRedisClient backs the rate limiters and the shared debounce guard.
func NewRedisClient(config *koanf.Koanf, log *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:            config.String("REDIS_URL"),
		Password:        config.String("REDIS_PASSWORD"),
		DB:              config.Int("REDIS_DB"),
		MinIdleConns:    5,
		PoolSize:        50,
		PoolTimeout:     30 * time.Second,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		log.Fatal("failed to connect redis", zap.String("addr", config.String("REDIS_URL")), zap.Error(err))
	}

	err = redisotel.InstrumentTracing(rdb)
	if err != nil {
		log.Warn("failed to instrument redis tracing", zap.Error(err))
	}

	return rdb
}
