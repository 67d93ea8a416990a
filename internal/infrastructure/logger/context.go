package logger

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey         contextKey = "logger"
	requestIDKey      contextKey = "request_id"
	tenantIDKey       contextKey = "tenant_id"
	userIDKey         contextKey = "user_id"
	idempotencyKeyKey contextKey = "idempotency_key"
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the attached logger, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and attaches a logger carrying it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithTenantID stores the acting tenant and attaches a logger carrying it
func WithTenantID(ctx context.Context, logger *zap.Logger, tenantID uuid.UUID) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	enriched := logger.With(zap.String("tenant_id", tenantID.String()))
	return WithContext(ctx, enriched), enriched
}

// WithUserID stores the acting user and attaches a logger carrying it
func WithUserID(ctx context.Context, logger *zap.Logger, userID uuid.UUID) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, userIDKey, userID)
	enriched := logger.With(zap.String("user_id", userID.String()))
	return WithContext(ctx, enriched), enriched
}

// WithIdempotencyKey stores the client supplied Idempotency-Key
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyKey, key)
}

// GetRequestID returns the request id, or ""
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetTenantID returns the tenant id, or uuid.Nil
func GetTenantID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(tenantIDKey).(uuid.UUID)
	return id
}

// GetUserID returns the user id, or uuid.Nil
func GetUserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}

// GetIdempotencyKey returns the Idempotency-Key, or ""
func GetIdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyKey).(string)
	return key
}

// GetTraceID returns the active trace id, or ""
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// L returns the context logger with trace correlation added. Request, tenant
// and user fields are already on the attached logger.
//
//	logger.L(ctx).Info("payment recorded", zap.String("payment_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}

// WithTraceContext adds trace_id and span_id when ctx carries a valid span
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
