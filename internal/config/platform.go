package config

import (
	"strings"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/debounce"
	"github.com/ferdian3456/rosterbridge/internal/platform"
	"github.com/ferdian3456/rosterbridge/internal/usecase"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func millis(config *koanf.Koanf, key string, fallback time.Duration) time.Duration {
	if !config.Exists(key) {
		return fallback
	}

	value := config.Int64(key)
	if value < 0 {
		return fallback
	}

	return time.Duration(value) * time.Millisecond
}

func NewRoleBridge(config *koanf.Koanf, log *zap.Logger) *platform.RoleBridge {
	baseURL := config.String("PLATFORM_API_URL")
	if baseURL == "" {
		log.Fatal("failed to get platform config", zap.String("missing", "PLATFORM_API_URL"))
	}

	if config.String("PLATFORM_API_KEY") == "" {
		log.Warn("PLATFORM_API_KEY is empty, platform calls will likely be rejected")
	}

	return platform.NewRoleBridge(log, baseURL, config.String("PLATFORM_API_KEY"), millis(config, "PLATFORM_TIMEOUT_MS", 5*time.Second))
}

func NewBarrier(config *koanf.Koanf) usecase.SleepBarrier {
	return usecase.SleepBarrier{Delay: millis(config, "PROPAGATION_DELAY_MS", 2*time.Second)}
}

// NewDebounceGuard shares debounce state through redis unless DEBOUNCE_BACKEND=memory.
func NewDebounceGuard(config *koanf.Koanf, rds *redis.Client, log *zap.Logger) debounce.Guard {
	cooldown := millis(config, "DEBOUNCE_COOLDOWN_MS", 5*time.Second)

	if strings.EqualFold(config.String("DEBOUNCE_BACKEND"), "memory") {
		maxEntries := config.Int("DEBOUNCE_MAX_ENTRIES")
		log.Info("using in-memory debounce", zap.Duration("cooldown", cooldown), zap.Int("max_entries", maxEntries))
		return debounce.NewMemoryGuard(cooldown, debounce.WithMaxEntries(maxEntries))
	}

	log.Info("using redis debounce", zap.Duration("cooldown", cooldown))
	return debounce.NewRedisGuard(rds, cooldown)
}
