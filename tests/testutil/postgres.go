// Package testutil holds helpers shared by the container backed tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bizcms/backend/internal/infrastructure/config"
	"github.com/bizcms/backend/internal/infrastructure/migration"
	"github.com/bizcms/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "finance"
	postgresPassword = "finance"
	postgresDB       = "finance_test"
)

var (
	sharedMu        sync.Mutex
	sharedContainer *tcpostgres.PostgresContainer
	sharedCfg       *config.DatabaseConfig
)

// SkipIfShort skips container backed tests under -short
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

// SharedPostgres returns a connection to a package wide PostgreSQL container
// with all migrations applied. The container is started on first use and
// lives until TerminateShared. Tests sharing it must work in their own
// tenants.
func SharedPostgres(t *testing.T) *persistence.Database {
	t.Helper()
	SkipIfShort(t)

	sharedMu.Lock()
	defer sharedMu.Unlock()

	ctx := context.Background()
	if sharedContainer == nil {
		container, cfg := startPostgres(t, ctx)
		applyMigrations(t, cfg)
		sharedContainer, sharedCfg = container, cfg
	}

	db := openDatabase(t, sharedCfg)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TerminateShared stops the shared container. Call it from TestMain.
func TerminateShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedContainer.Terminate(ctx)
	sharedContainer, sharedCfg = nil, nil
}

func startPostgres(t *testing.T, ctx context.Context) (*tcpostgres.PostgresContainer, *config.DatabaseConfig) {
	t.Helper()

	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase(postgresDB),
		tcpostgres.WithUsername(postgresUser),
		tcpostgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return container, &config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            postgresUser,
		Password:        postgresPassword,
		DBName:          postgresDB,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
	}
}

func applyMigrations(t *testing.T, cfg *config.DatabaseConfig) {
	t.Helper()

	db := openDatabase(t, cfg)
	defer db.Close()

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, "", zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

func openDatabase(t *testing.T, cfg *config.DatabaseConfig) *persistence.Database {
	t.Helper()

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := persistence.NewDatabase(cfg, persistence.WithZapLogger(zap.NewNop(), level))
	require.NoError(t, err, fmt.Sprintf("Failed to connect to %s:%d", cfg.Host, cfg.Port))
	return db
}
