package persistence

import (
	"fmt"
	"time"

	"github.com/bizcms/backend/internal/infrastructure/config"
	"github.com/bizcms/backend/internal/infrastructure/logger"
	"github.com/bizcms/backend/internal/infrastructure/persistence/tenant"
	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// DatabaseOption customises NewDatabase
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger     *zap.Logger
	logLevel   gormlogger.LogLevel
	loggerOpts []logger.GormLoggerOption
	tracing    *telemetry.DBTracingPlugin
}

// WithZapLogger routes GORM logging through zap at the given level
func WithZapLogger(l *zap.Logger, level gormlogger.LogLevel, opts ...logger.GormLoggerOption) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = l
		o.logLevel = level
		o.loggerOpts = opts
	}
}

// WithTracing registers the otelgorm plugin on the connection
func WithTracing(plugin *telemetry.DBTracingPlugin) DatabaseOption {
	return func(o *databaseOptions) {
		o.tracing = plugin
	}
}

// NewDatabase opens a PostgreSQL connection with the given configuration
func NewDatabase(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	o := &databaseOptions{logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(o)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(o))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := tenant.NewGuard("tenant_id").Register(db); err != nil {
		return nil, fmt.Errorf("failed to register tenant guard: %w", err)
	}
	if o.tracing != nil {
		if err := o.tracing.Register(db); err != nil {
			return nil, fmt.Errorf("failed to register db tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

func gormConfig(o *databaseOptions) *gorm.Config {
	var gl gormlogger.Interface = gormlogger.Default.LogMode(o.logLevel)
	if o.logger != nil {
		gl = logger.NewGormLogger(o.logger, o.logLevel, o.loggerOpts...)
	}
	return &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics and an error if unable to retrieve
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
