package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	plain := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"gorm duplicate", gorm.ErrDuplicatedKey, shared.CodeAlreadyExists},
		{"unique violation", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "ux_invoices_tenant_number"}, shared.CodeAlreadyExists},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation}), shared.CodeAlreadyExists},
		{"foreign key", &pgconn.PgError{Code: pgForeignKeyViolation}, shared.CodeValidation},
		{"serialization", &pgconn.PgError{Code: pgSerializationFailure}, shared.CodeConcurrencyConflict},
		{"deadlock", &pgconn.PgError{Code: pgDeadlockDetected}, shared.CodeConcurrencyConflict},
		{"lock timeout", &pgconn.PgError{Code: pgLockNotAvailable}, shared.CodeConcurrencyConflict},
		{"other pg error", &pgconn.PgError{Code: "22003"}, ""},
		{"foreign error", plain, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "invoice")
			assert.Error(t, got)
			assert.Equal(t, tt.code, shared.ErrorCode(got))
		})
	}

	assert.NoError(t, translateError(nil, "invoice"))
	assert.Same(t, plain, translateError(plain, "invoice"))
}
