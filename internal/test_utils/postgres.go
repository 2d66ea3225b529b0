package test_utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/calendarapp/calendar/internal/config"
	"github.com/calendarapp/calendar/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	dbName     = "calendar"
	dbUser     = "test_calendar"
	dbPassword = "test_calendar"
	dbSchema   = "calendar"
)

// TestDB is a migrated Postgres running in a container. A nil *TestDB means
// no container runtime was available; Require then skips the test.
type TestDB struct {
	container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// TestWithDB starts Postgres, applies all migrations and returns the database
// together with a cleanup function. Intended for TestMain.
func TestWithDB() (*TestDB, func()) {
	ctx := context.Background()

	if os.Getenv("CALENDAR_SKIP_DB_TESTS") != "" {
		log.Info("CALENDAR_SKIP_DB_TESTS set, database tests will be skipped")
		return nil, func() {}
	}

	container, err := preparePostgresContainer(ctx)
	if err != nil {
		log.Warnf("Postgres container unavailable, database tests will be skipped: %v", err)
		return nil, func() {}
	}

	cfg, err := containerConfig(ctx, container)
	if err != nil {
		log.Errorf("failed to read container address: %v", err)
		_ = container.Terminate(ctx)
		return nil, func() {}
	}

	if err := database.Migrate(cfg); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	pool, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}

	return &TestDB{container: container, Pool: pool}, func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			log.Errorf("failed to terminate postgres container: %v", err)
		}
	}
}

// Require skips t when the database could not be started and truncates all
// tables otherwise, so every test starts from an empty schema.
func (db *TestDB) Require(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if db == nil {
		t.Skip("postgres container not available")
	}
	_, err := db.Pool.Exec(context.Background(), "TRUNCATE calendar_event, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	return db.Pool
}

func preparePostgresContainer(ctx context.Context) (container *postgres.PostgresContainer, err error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}

	// testcontainers panics when no docker host can be found
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("starting container: %v", r)
		}
	}()

	return postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(projectRoot, "dev", "init.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.BasicWaitStrategies(),
	)
}

func containerConfig(ctx context.Context, container *postgres.PostgresContainer) (config.Database, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return config.Database{}, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return config.Database{}, err
	}
	log.Infof("Postgres container started at %s:%d", host, port.Int())

	return config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   dbUser,
		Pass:   dbPassword,
		Name:   dbName,
		Schema: dbSchema,
	}, nil
}

// findProjectRoot walks up until it finds the directory holding go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not find project root")
		}
		dir = parent
	}
}
