package persistence

import (
	"context"

	appfinance "github.com/bizcms/backend/internal/application/finance"
	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// FinanceTransactionScope implements appfinance.TransactionScope using GORM
// transactions. Every repository handed to fn shares the one transaction.
type FinanceTransactionScope struct {
	db *gorm.DB
}

// NewFinanceTransactionScope creates a new FinanceTransactionScope
func NewFinanceTransactionScope(db *gorm.DB) *FinanceTransactionScope {
	return &FinanceTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn, or a
// panic, rolls the transaction back; otherwise it commits.
func (s *FinanceTransactionScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewFinanceRepositories(tx))
	})
	return translateError(err, "transaction")
}

// financeRepositories binds the finance repositories to one *gorm.DB
type financeRepositories struct {
	db *gorm.DB
}

// NewFinanceRepositories returns repositories bound to db. Outside a
// transaction they serve the read paths of the services.
func NewFinanceRepositories(db *gorm.DB) appfinance.TransactionalRepositories {
	return &financeRepositories{db: db}
}

func (r *financeRepositories) Invoices() finance.InvoiceRepository {
	return NewGormInvoiceRepository(r.db)
}

func (r *financeRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

func (r *financeRepositories) Allocations() finance.AllocationRepository {
	return NewGormAllocationRepository(r.db)
}

func (r *financeRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.db)
}

func (r *financeRepositories) Numbers() shared.NumberGenerator {
	return NewGormNumberGenerator(r.db)
}

// Ensure FinanceTransactionScope implements TransactionScope
var _ appfinance.TransactionScope = (*FinanceTransactionScope)(nil)
