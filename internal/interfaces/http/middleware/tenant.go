package middleware

import (
	"strings"

	"github.com/bizcms/backend/internal/infrastructure/logger"
	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Request headers identifying the caller
const (
	TenantHeader = "X-Tenant-ID"
	UserHeader   = "X-User-ID"
)

// gin keys set by TenantMiddleware
const (
	TenantIDKey = "tenant_id"
	UserIDKey   = "user_id"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths are served without tenant context (exact match or prefix + "/")
	SkipPaths []string
}

// DefaultTenantConfig skips the health endpoint
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{SkipPaths: []string{"/health"}}
}

// TenantMiddleware requires X-Tenant-ID and accepts an optional X-User-ID.
// Both must be UUIDs. The parsed ids are stored on the gin context and on
// the request context together with an enriched logger.
func TenantMiddleware(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		tenantID, err := uuid.Parse(c.GetHeader(TenantHeader))
		if err != nil || tenantID == uuid.Nil {
			abortWithError(c, dto.ErrCodeTenantRequired, "X-Tenant-ID header must be a valid tenant UUID")
			return
		}

		userID := uuid.Nil
		if raw := c.GetHeader(UserHeader); raw != "" {
			if userID, err = uuid.Parse(raw); err != nil {
				abortWithError(c, dto.ErrCodeInvalidInput, "X-User-ID header must be a valid UUID")
				return
			}
		}

		ctx := c.Request.Context()
		ctx, log := logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID)
		c.Set(TenantIDKey, tenantID)
		if userID != uuid.Nil {
			ctx, log = logger.WithUserID(ctx, log, userID)
			c.Set(UserIDKey, userID)
		}
		c.Set("logger", log)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenantID returns the tenant set by TenantMiddleware, or uuid.Nil
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetUserID returns the acting user, or uuid.Nil when the header was absent
func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
