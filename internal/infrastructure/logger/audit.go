package logger

import (
	"context"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditLogger writes audit trail entries as structured log records under the
// "audit" logger name. Shipping them to durable storage is left to the log
// pipeline.
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates an AuditLogger
func NewAuditLogger(l *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: l.Named("audit")}
}

// Log implements shared.AuditLogger
func (a *AuditLogger) Log(ctx context.Context, entry shared.AuditEntry) error {
	fields := []zap.Field{
		zap.String("tenant_id", entry.TenantID.String()),
		zap.String("entity_type", entry.EntityType),
		zap.String("entity_id", entry.EntityID.String()),
		zap.String("action", string(entry.Action)),
	}
	if entry.UserID != uuid.Nil {
		fields = append(fields, zap.String("user_id", entry.UserID.String()))
	}
	if rid := GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if len(entry.OldValues) > 0 {
		fields = append(fields, zap.Any("old", entry.OldValues))
	}
	if len(entry.NewValues) > 0 {
		fields = append(fields, zap.Any("new", entry.NewValues))
	}
	WithTraceContext(ctx, a.logger).Info("audit", fields...)
	return nil
}

var _ shared.AuditLogger = (*AuditLogger)(nil)
