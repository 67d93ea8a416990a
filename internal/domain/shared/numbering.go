package shared

import (
	"context"

	"github.com/google/uuid"
)

// SequenceKey identifies one human readable numbering series.
// Period is the calendar year for yearly series and 0 for perpetual ones.
type SequenceKey struct {
	TenantID uuid.UUID
	Prefix   string
	Period   int
}

// NumberGenerator hands out the next value of a numbering series. Values are
// unique per key even under concurrent callers; gaps are allowed.
type NumberGenerator interface {
	Next(ctx context.Context, key SequenceKey) (int64, error)
}
