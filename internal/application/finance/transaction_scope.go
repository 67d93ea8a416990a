package finance

import (
	"context"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
)

// TransactionScope runs a unit of work. Every mutating service operation
// opens exactly one scope; fn's error rolls the whole unit back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories bound to one
// transaction. Lock order inside a unit is customer, then payments, then
// invoices.
type TransactionalRepositories interface {
	Invoices() finance.InvoiceRepository
	Payments() finance.PaymentRepository
	Allocations() finance.AllocationRepository
	Customers() partner.CustomerRepository
	Numbers() shared.NumberGenerator
}
