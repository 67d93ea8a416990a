// Package handler exposes the finance services over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/logger"
	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/bizcms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// tenantID returns the tenant resolved by the tenant middleware
func tenantID(c *gin.Context) uuid.UUID {
	return middleware.GetTenantID(c)
}

// actorID returns the acting user, uuid.Nil when X-User-ID was absent
func actorID(c *gin.Context) uuid.UUID {
	return middleware.GetUserID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Page sends a paginated success response
func Page[T any](c *gin.Context, p shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(p))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

// pathID parses a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into req. Rule violations answer with field
// details; malformed JSON answers with a plain 400.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			middleware.HandleValidationError(c, err)
			return false
		}
		h.BadRequest(c, "Malformed request body")
		return false
	}
	return true
}

// bindQuery decodes query parameters into req
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			middleware.HandleValidationError(c, err)
			return false
		}
		h.BadRequest(c, "Malformed query parameters")
		return false
	}
	return true
}

// HandleError maps domain errors to their status. Anything else is logged
// and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	h.ErrorWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
}
