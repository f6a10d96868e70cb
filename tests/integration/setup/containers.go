package setup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MinIOUser     = "minioadmin"
	MinIOPassword = "minioadmin"
)

type TestInfra struct {
	Postgres *postgres.PostgresContainer
	Redis    *redis.RedisContainer
	MinIO    testcontainers.Container

	PgURL    string
	RedisURL string
	MinioURL string
}

// StartInfra starts Postgres, Redis and MinIO. Whatever did start is terminated if a later
// container fails.
func StartInfra(ctx context.Context, t *testing.T) (*TestInfra, error) {
	t.Log("Starting test infrastructure...")
	infra := &TestInfra{}

	fail := func(err error) (*TestInfra, error) {
		_ = infra.Terminate(context.Background(), t)
		return nil, err
	}

	err := infra.startPostgres(ctx)
	if err != nil {
		return fail(err)
	}
	err = infra.startRedis(ctx)
	if err != nil {
		return fail(err)
	}
	err = infra.startMinIO(ctx)
	if err != nil {
		return fail(err)
	}

	t.Logf("Infrastructure ready: postgres=%s redis=%s minio=%s", infra.PgURL, infra.RedisURL, infra.MinioURL)
	return infra, nil
}

func (infra *TestInfra) startPostgres(ctx context.Context) error {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("rosterbridge_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres: %w", err)
	}
	infra.Postgres = container

	infra.PgURL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get postgres connection string: %w", err)
	}

	return nil
}

func (infra *TestInfra) startRedis(ctx context.Context) error {
	container, err := redis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(wait.ForLog("Ready to accept connections")),
	)
	if err != nil {
		return fmt.Errorf("failed to start redis: %w", err)
	}
	infra.Redis = container

	infra.RedisURL, err = container.Endpoint(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to get redis endpoint: %w", err)
	}

	return nil
}

func (infra *TestInfra) startMinIO(ctx context.Context) error {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "minio/minio:latest",
			Cmd:   []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     MinIOUser,
				"MINIO_ROOT_PASSWORD": MinIOPassword,
			},
			ExposedPorts: []string{"9000/tcp"},
			WaitingFor:   wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start minio: %w", err)
	}
	infra.MinIO = container

	infra.MinioURL, err = container.Endpoint(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to get minio endpoint: %w", err)
	}

	return nil
}

// Terminate stops every started container and reports all failures together.
func (infra *TestInfra) Terminate(ctx context.Context, t *testing.T) error {
	t.Log("Terminating test infrastructure...")

	var errs []error
	if infra.Postgres != nil {
		if err := infra.Postgres.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if infra.Redis != nil {
		if err := infra.Redis.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if infra.MinIO != nil {
		if err := infra.MinIO.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("minio: %w", err))
		}
	}

	return errors.Join(errs...)
}
