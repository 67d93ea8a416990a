package handler

import "github.com/bizcms/backend/internal/interfaces/http/dto"

// APIResponse documents the envelope with a typed data field
//
//	@Description	Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents an error envelope
//
//	@Description	Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// PostedData reports whether a posting changed anything
type PostedData struct {
	Posted bool `json:"posted"`
}

// InitializedData reports how many accounts a chart initialization created
type InitializedData struct {
	Created int `json:"created"`
}
