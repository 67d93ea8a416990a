package middleware

import (
	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// abortWithError stops the chain and writes the error envelope with the
// status mapped from code.
func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}
