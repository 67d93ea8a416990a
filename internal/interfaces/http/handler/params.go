package handler

import (
	"strings"
	"time"

	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// dateLayout is the wire format of calendar dates
const dateLayout = "2006-01-02"

// dateField parses an optional date, answering 400 ERR_INVALID_INPUT when
// malformed. Empty yields the zero time.
func (h *BaseHandler) dateField(c *gin.Context, field, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, field+" must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return t, true
}

// dateFilter is dateField for optional query filters; empty yields nil.
func (h *BaseHandler) dateFilter(c *gin.Context, field, s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, ok := h.dateField(c, field, s)
	if !ok {
		return nil, false
	}
	return &t, true
}

// uuidFilter parses an optional id filter; empty yields nil.
func (h *BaseHandler) uuidFilter(c *gin.Context, field, s string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, field+" must be a UUID")
		return nil, false
	}
	return &id, true
}

// splitList splits a comma separated query value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
