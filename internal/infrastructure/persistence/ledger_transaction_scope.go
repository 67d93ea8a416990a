package persistence

import (
	"context"

	appledger "github.com/bizcms/backend/internal/application/ledger"
	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/bizcms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// LedgerTransactionScope implements appledger.TransactionScope using GORM transactions.
type LedgerTransactionScope struct {
	db *gorm.DB
}

// NewLedgerTransactionScope creates a new LedgerTransactionScope
func NewLedgerTransactionScope(db *gorm.DB) *LedgerTransactionScope {
	return &LedgerTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *LedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewLedgerRepositories(tx))
	})
	return translateError(err, "transaction")
}

type ledgerRepositories struct {
	db *gorm.DB
}

// NewLedgerRepositories returns ledger repositories bound to db
func NewLedgerRepositories(db *gorm.DB) appledger.TransactionalRepositories {
	return &ledgerRepositories{db: db}
}

func (r *ledgerRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.db)
}

func (r *ledgerRepositories) JournalEntries() ledger.JournalEntryRepository {
	return NewGormJournalEntryRepository(r.db)
}

func (r *ledgerRepositories) Numbers() shared.NumberGenerator {
	return NewGormNumberGenerator(r.db)
}

var _ appledger.TransactionScope = (*LedgerTransactionScope)(nil)
