package config

import (
	"os"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var defaults = map[string]interface{}{
	"GO_SERVER":                 ":8080",
	"LOG_LEVEL":                 "info",
	"KAFKA_GROUP_ID":            "rosterbridge",
	"KAFKA_MEMBER_UPDATE_TOPIC": "member-updates",
	"POSTGRES_MAX_CONNS":        20,
	"POSTGRES_MIN_CONNS":        5,
}

// NewKoanf layers defaults, then ENV_FILE (or .env), then the process environment.
func NewKoanf(log *zap.Logger) *koanf.Koanf {
	k := koanf.New(".")

	for key, value := range defaults {
		err := k.Set(key, value)
		if err != nil {
			log.Fatal("failed to set config default", zap.String("key", key), zap.Error(err))
		}
	}

	envFile := ".env"
	if path := os.Getenv("ENV_FILE"); path != "" {
		envFile = path
	}

	err := k.Load(file.Provider(envFile), dotenv.Parser())
	if err != nil {
		log.Debug("env file not loaded, using environment only", zap.String("path", envFile), zap.Error(err))
	}

	err = k.Load(env.Provider("", ".", nil), nil)
	if err != nil {
		log.Fatal("failed to load environment variables", zap.Error(err))
	}

	return k
}
