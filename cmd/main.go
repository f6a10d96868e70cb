package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/config"
	"github.com/ferdian3456/rosterbridge/internal/delivery/http/middleware"
	"github.com/ferdian3456/rosterbridge/internal/exception"
	tracelog "github.com/ferdian3456/rosterbridge/internal/middleware"
	"github.com/ferdian3456/rosterbridge/internal/observability"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2/middleware/compress"
	zapLog "go.uber.org/zap"
)

func main() {
	time.Local = time.UTC

	bootstrapLog := config.NewZap("info")
	koanf := config.NewKoanf(bootstrapLog)
	zap := config.NewZap(koanf.String("LOG_LEVEL"))

	shutdownTracing := func(context.Context) error { return nil }
	observabilityConfig, enabled := config.LoadObservabilityConfig(koanf, zap)
	if enabled {
		shutdown, err := observability.Init(context.Background(), observabilityConfig, zap)
		if err != nil {
			zap.Fatal("failed to init tracing", zapLog.Error(err))
		}
		shutdownTracing = shutdown
	}

	fiber := config.NewFiber(zap)
	rds := config.NewRedisClient(koanf, zap)
	postgresql := config.NewPostgresqlPool(koanf, zap)
	minio := config.NewMinIO(koanf, zap)

	// otelfiber first so every later middleware sees the request span
	fiber.Use(otelfiber.Middleware())
	fiber.Use(tracelog.TraceLoggerMiddleware(zap))
	fiber.Use(exception.Recovery(zap))
	fiber.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	fiber.Use(middleware.SetupCORS(koanf.String("CORS_ALLOW_ORIGINS")))

	consumer := config.Server(&config.ServerConfig{
		Router:     fiber,
		DB:         postgresql,
		DBCache:    rds,
		Log:        zap,
		Config:     koanf,
		MinIO:      minio,
		RoleBridge: config.NewRoleBridge(koanf, zap),
		Barrier:    config.NewBarrier(koanf),
		Reader:     config.NewMemberUpdateReader(koanf, zap),
	})

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	var consumerWg sync.WaitGroup
	if consumer != nil {
		consumerWg.Add(1)
		go func() {
			defer consumerWg.Done()
			consumer.Start(consumerCtx)
		}()
	}

	GO_SERVER_PORT := koanf.String("GO_SERVER")

	zap.Info("Server is running on: " + GO_SERVER_PORT)

	go func() {
		err := fiber.Listen(GO_SERVER_PORT)
		if err != nil {
			zap.Fatal("error starting server", zapLog.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	zap.Info("got one of stop signals")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := fiber.ShutdownWithContext(ctx)
	if err != nil {
		zap.Warn("timeout, forced kill!", zapLog.Error(err))
	}

	stopConsumer()
	consumerWg.Wait()
	if consumer != nil {
		err = consumer.Close()
		if err != nil {
			zap.Warn("failed to close member update consumer", zapLog.Error(err))
		}
	}

	postgresql.Close()
	_ = rds.Close()

	err = shutdownTracing(ctx)
	if err != nil {
		zap.Warn("failed to flush traces", zapLog.Error(err))
	}

	zap.Info("server has shut down gracefully")
	_ = zap.Sync()
}
