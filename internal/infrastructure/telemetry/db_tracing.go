package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables; never enable in production
	SlowQueryThresh time.Duration
	DBName          string
}

// DBTracingPlugin installs otelgorm plus a slow query marker.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// Register installs the plugin on db. A disabled plugin is a no-op.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("finance_timing:before_create", p.before); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("finance_timing:before_query", p.before); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("finance_timing:before_update", p.before); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("finance_timing:before_delete", p.before); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("finance_timing:before_raw", p.before); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("finance_timing:before_row", p.before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("finance_timing:after_create", p.after); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("finance_timing:after_query", p.after); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("finance_timing:after_update", p.after); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("finance_timing:after_delete", p.after); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("finance_timing:after_raw", p.after); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("finance_timing:after_row", p.after); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= p.config.SlowQueryThresh {
		return
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	fields := []zap.Field{
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected),
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		fields = append(fields, zap.Error(db.Error))
	}
	p.logger.Warn("Slow query", fields...)
}
