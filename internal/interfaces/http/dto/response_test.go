package dto

import (
	"testing"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse(shared.NewPaginated([]string{"a", "b"}, 5, 1, 2))

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a", "b"}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestNewPageResponse_EmptyIsArray(t *testing.T) {
	resp := NewPageResponse(shared.NewPaginated[int](nil, 0, 1, 20))
	assert.Equal(t, []int{}, resp.Data)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("bad", "req-1", []ValidationDetail{{Field: "amount", Message: "required"}})

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}

func TestListRequest_Filter(t *testing.T) {
	f := ListRequest{PageSize: 50, OrderDir: "asc"}.Filter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
}
