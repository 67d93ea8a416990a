package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/bizcms/backend/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Response is a recorded API response with its decoded envelope
type Response struct {
	Code    int             `json:"-"`
	Body    []byte          `json:"-"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// ErrorCode returns the envelope error code, or "" on success
func (r *Response) ErrorCode() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

// APIClient sends requests to an engine in process as one tenant and user
type APIClient struct {
	handler  http.Handler
	TenantID uuid.UUID
	UserID   uuid.UUID
	prefix   string
}

// NewAPIClient builds a client for a fresh random tenant
func NewAPIClient(h http.Handler, prefix string) *APIClient {
	return &APIClient{handler: h, TenantID: uuid.New(), UserID: uuid.New(), prefix: prefix}
}

// AsTenant returns a copy of the client acting for another tenant
func (c *APIClient) AsTenant(tenantID uuid.UUID) *APIClient {
	cp := *c
	cp.TenantID = tenantID
	return &cp
}

// Do sends body as JSON (nil sends nothing) with extra headers given as
// key, value pairs.
func (c *APIClient) Do(t *testing.T, method, path string, body any, headers ...string) *Response {
	t.Helper()
	require.True(t, len(headers)%2 == 0, "headers must be key/value pairs")

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, c.prefix+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.TenantID != uuid.Nil {
		req.Header.Set(middleware.TenantHeader, c.TenantID.String())
	}
	if c.UserID != uuid.Nil {
		req.Header.Set(middleware.UserHeader, c.UserID.String())
	}
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	resp := &Response{Code: w.Code, Body: w.Body.Bytes()}
	if len(resp.Body) > 0 {
		require.NoError(t, json.Unmarshal(resp.Body, resp), "body: %s", resp.Body)
	}
	return resp
}

// Get is Do without a body
func (c *APIClient) Get(t *testing.T, path string) *Response {
	t.Helper()
	return c.Do(t, http.MethodGet, path, nil)
}

// Post is Do with POST
func (c *APIClient) Post(t *testing.T, path string, body any, headers ...string) *Response {
	t.Helper()
	return c.Do(t, http.MethodPost, path, body, headers...)
}

// Decode requires status and decodes the envelope data into a new T
func Decode[T any](t *testing.T, resp *Response, status int) T {
	t.Helper()
	require.Equal(t, status, resp.Code, "body: %s", resp.Body)
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), "data: %s", resp.Data)
	return v
}

// RequireError asserts an error envelope with status and code
func RequireError(t *testing.T, resp *Response, status int, code string) {
	t.Helper()
	require.Equal(t, status, resp.Code, "body: %s", resp.Body)
	require.False(t, resp.Success)
	require.Equal(t, code, resp.ErrorCode(), "body: %s", resp.Body)
}
