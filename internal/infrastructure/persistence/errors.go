package persistence

import (
	"errors"
	"fmt"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the repositories translate
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// translateError maps driver errors onto domain errors. Anything it does not
// recognise is returned unchanged.
func translateError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("%s already exists", entity))
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("%s already exists (%s)", entity, pgErr.ConstraintName))
	case pgForeignKeyViolation:
		return shared.NewValidationError("%s references a missing record (%s)", entity, pgErr.ConstraintName)
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return shared.NewConcurrencyError(entity)
	}
	return err
}
