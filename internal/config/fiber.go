package config

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/ferdian3456/rosterbridge/internal/exception"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NewFiber builds the JSON-only API app. Bodies are small commands, so the limit stays low.
func NewFiber(log *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               "rosterbridge",
		BodyLimit:             64 * 1024,
		ReadBufferSize:        4096,
		WriteBufferSize:       4096,
		IdleTimeout:           30 * time.Second,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		DisableStartupMessage: true,
		ReduceMemoryUsage:     true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          exception.ErrorHandler(log),
	})
}
