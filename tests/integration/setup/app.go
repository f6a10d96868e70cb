package setup

import (
	"context"
	"testing"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/config"
	"github.com/ferdian3456/rosterbridge/internal/platform"
	"github.com/ferdian3456/rosterbridge/internal/usecase"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zaptest"
)

const (
	JWTSecretKey  = "test-secret-key-for-jwt-token-generation"
	WebhookAPIKey = "webhook-test-key"
	BucketName    = "rosterbridge-test"
)

type TestApp struct {
	App      *fiber.App
	DB       *pgxpool.Pool
	Redis    *redis.Client
	MinIO    *minio.Client
	Platform *FakePlatform
}

func SetupTestApp(t *testing.T, infra *TestInfra) *TestApp {
	t.Log("Setting up test application...")

	ctx := context.Background()
	log := zaptest.NewLogger(t)

	testConfig := koanf.New(".")
	_ = testConfig.Set("JWT_SECRET_KEY", JWTSecretKey)
	_ = testConfig.Set("WEBHOOK_API_KEY", WebhookAPIKey)
	_ = testConfig.Set("MINIO_BUCKET_NAME", BucketName)
	_ = testConfig.Set("DEBOUNCE_COOLDOWN_MS", 0)

	dbPool, err := pgxpool.New(ctx, infra.PgURL)
	if err != nil {
		t.Fatalf("failed to connect to test db: %v", err)
	}
	t.Cleanup(dbPool.Close)

	redisClient := redis.NewClient(&redis.Options{
		Addr: infra.RedisURL,
		DB:   0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to connect to test redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	minioClient, err := minio.New(infra.MinioURL, &minio.Options{
		Creds:  credentials.NewStaticV4(MinIOUser, MinIOPassword, ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("failed to connect to minio: %v", err)
	}

	exists, err := minioClient.BucketExists(ctx, BucketName)
	if err != nil {
		t.Fatalf("failed to check minio bucket: %v", err)
	}
	if !exists {
		err = minioClient.MakeBucket(ctx, BucketName, minio.MakeBucketOptions{})
		if err != nil {
			t.Fatalf("failed to create minio bucket: %v", err)
		}
	}

	fakePlatform := StartFakePlatform(t)

	fiberApp := config.NewFiber(log)

	consumer := config.Server(&config.ServerConfig{
		Router:     fiberApp,
		DB:         dbPool,
		DBCache:    redisClient,
		Log:        log,
		Config:     testConfig,
		MinIO:      minioClient,
		RoleBridge: platform.NewRoleBridge(log, fakePlatform.Server.URL, PlatformAPIKey, 2*time.Second),
		Barrier:    usecase.SleepBarrier{},
	})
	if consumer != nil {
		t.Fatalf("consumer should be disabled without a kafka reader")
	}

	return &TestApp{
		App:      fiberApp,
		DB:       dbPool,
		Redis:    redisClient,
		MinIO:    minioClient,
		Platform: fakePlatform,
	}
}
