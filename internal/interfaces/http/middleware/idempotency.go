package middleware

import (
	"github.com/bizcms/backend/internal/infrastructure/logger"
	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// IdempotencyHeader names the client supplied retry key
const IdempotencyHeader = "Idempotency-Key"

// IdempotencyKeyKey is the gin key holding the validated key
const IdempotencyKeyKey = "idempotency_key"

const maxIdempotencyKeyLength = 128

// IdempotencyKey validates the optional Idempotency-Key header and carries
// it on the request context. Duplicate detection happens in the service
// that owns the operation.
func IdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		if !validIdempotencyKey(key) {
			abortWithError(c, dto.ErrCodeIdempotencyKey,
				"Idempotency-Key must be 1-128 printable ASCII characters")
			return
		}
		c.Set(IdempotencyKeyKey, key)
		c.Request = c.Request.WithContext(logger.WithIdempotencyKey(c.Request.Context(), key))
		c.Next()
	}
}

func validIdempotencyKey(key string) bool {
	if len(key) > maxIdempotencyKeyLength {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x21 || key[i] > 0x7e {
			return false
		}
	}
	return true
}
