package dto

import (
	"net/http"

	"github.com/bizcms/backend/internal/domain/shared"
)

// Error codes returned in the response envelope.
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"

	// ErrCodeTenantRequired is returned when X-Tenant-ID is missing or malformed
	ErrCodeTenantRequired = "ERR_TENANT_REQUIRED"
	// ErrCodeIdempotencyKey is returned for a malformed Idempotency-Key header
	ErrCodeIdempotencyKey = "ERR_IDEMPOTENCY_KEY"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidState = "ERR_INVALID_STATE"

	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeTimeout         = "ERR_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeTenantRequired: http.StatusBadRequest,
	ErrCodeIdempotencyKey: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps domain error codes onto response codes
var domainCodes = map[string]string{
	shared.CodeNotFound:            ErrCodeNotFound,
	shared.CodeAlreadyExists:       ErrCodeAlreadyExists,
	shared.CodeInvalidInput:        ErrCodeInvalidInput,
	shared.CodeValidation:          ErrCodeValidation,
	shared.CodeInvalidState:        ErrCodeInvalidState,
	shared.CodeConcurrencyConflict: ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode converts a domain error code to the response format.
// Codes already in that format, and unknown codes, are returned as-is.
func NormalizeErrorCode(code string) string {
	if c, ok := domainCodes[code]; ok {
		return c
	}
	return code
}
