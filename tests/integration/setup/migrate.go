package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationsURL finds db/migrations by walking up from the working directory to go.mod.
func migrationsURL() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return "file://" + filepath.Join(dir, "db", "migrations"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above working directory")
		}
		dir = parent
	}
}

func newMigrate(pgURL string) (*migrate.Migrate, error) {
	sourceURL, err := migrationsURL()
	if err != nil {
		return nil, err
	}

	m, err := migrate.New(sourceURL, pgURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

func RunMigration(pgURL string, t *testing.T) error {
	m, err := newMigrate(pgURL)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	t.Logf("Database migrated to version %d", version)
	return nil
}

// RollbackMigration runs every down migration.
func RollbackMigration(pgURL string, t *testing.T) error {
	m, err := newMigrate(pgURL)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	t.Log("Database migrations rolled back")
	return nil
}
