package finance

import (
	"context"
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Statuses   []InvoiceStatus
	FromDate   *time.Time
	ToDate     *time.Time
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	CustomerID     *uuid.UUID
	IncludeVoided  bool
	HasUnallocated bool
	FromDate       *time.Time
	ToDate         *time.Time
}

// InvoiceRepository persists invoices. Lookups return (nil, nil) when the
// invoice does not exist for the tenant.
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads and row-locks the invoice for the current transaction.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, int64, error)
	// FindByCustomer returns invoice headers without items.
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Invoice, error)
	Create(ctx context.Context, invoice *Invoice) error
	// SaveWithLock writes the header when the stored version still matches.
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	// ReplaceItems deletes every stored item and inserts invoice.Items.
	ReplaceItems(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository persists payments with their allocations
type PaymentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, int64, error)
	// FindByCustomer returns all payments of a customer, voided included.
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Payment, error)
	// FindCreditsForUpdate returns live payments with unallocated funds,
	// oldest payment date first, row-locked.
	FindCreditsForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) ([]Payment, error)
	Create(ctx context.Context, payment *Payment) error
	SaveWithLock(ctx context.Context, payment *Payment) error
}

// AllocationRepository persists payment allocations
type AllocationRepository interface {
	Create(ctx context.Context, allocation *PaymentAllocation) error
	FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]PaymentAllocation, error)
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentAllocation, error)
	// DeleteByPayment hard deletes and reports how many rows went away.
	DeleteByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (int64, error)
}
