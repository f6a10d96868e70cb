package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZap builds the JSON production logger at the given level, info when empty or unknown.
func NewZap(levelStr string) *zap.Logger {
	level, err := zapcore.ParseLevel(strings.TrimSpace(levelStr))
	if err != nil || levelStr == "" {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.StacktraceKey = ""
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.InitialFields = map[string]interface{}{"service": "rosterbridge"}

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}

	return log
}
