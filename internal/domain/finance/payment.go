package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentNumberPrefix is the numbering series of payments.
const PaymentNumberPrefix = "PAY"

// FormatPaymentNumber renders PAY-{yyyy}-{nnnn}.
func FormatPaymentNumber(year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%04d", PaymentNumberPrefix, year, seq)
}

// PaymentAllocation is the portion of a payment applied to one invoice.
// Allocations are removed outright when their payment is voided.
type PaymentAllocation struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	PaymentID uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	CreatedAt time.Time
	CreatedBy *uuid.UUID
}

// Payment is money received from a customer
type Payment struct {
	shared.TenantAggregateRoot
	CustomerID        uuid.UUID
	PaymentNumber     string
	Amount            decimal.Decimal
	Method            PaymentMethod
	ReferenceNumber   string
	Notes             string
	PaymentDate       time.Time
	UnallocatedAmount decimal.Decimal
	IsVoided          bool
	VoidReason        string
	VoidedAt          *time.Time
	VoidedBy          *uuid.UUID
	Allocations       []PaymentAllocation
}

// NewPaymentInput holds the fields of a new payment
type NewPaymentInput struct {
	CustomerID      uuid.UUID
	PaymentNumber   string
	Amount          decimal.Decimal
	Method          PaymentMethod
	ReferenceNumber string
	Notes           string
	PaymentDate     time.Time
}

// NewPayment creates a payment with its whole amount unallocated
func NewPayment(tenantID uuid.UUID, in NewPaymentInput, createdBy uuid.UUID) (*Payment, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	amount, ok := valueobject.PositiveAmount(in.Amount)
	if !ok {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if !in.Method.IsValid() {
		return nil, shared.NewValidationError("invalid payment method %q", in.Method)
	}
	paymentDate := in.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		CustomerID:          in.CustomerID,
		PaymentNumber:       in.PaymentNumber,
		Amount:              amount,
		Method:              in.Method,
		ReferenceNumber:     strings.TrimSpace(in.ReferenceNumber),
		Notes:               in.Notes,
		PaymentDate:         paymentDate,
		UnallocatedAmount:   amount,
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// AllocatedAmount sums the live allocations.
func (p *Payment) AllocatedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// HasCredit reports whether unspent funds remain on a live payment.
func (p *Payment) HasCredit() bool {
	return !p.IsVoided && p.UnallocatedAmount.IsPositive()
}

// Allocate assigns part of the unallocated amount to an invoice.
func (p *Payment) Allocate(invoiceID uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (*PaymentAllocation, error) {
	if p.IsVoided {
		return nil, shared.NewInvalidStateError("payment %s is voided", p.PaymentNumber)
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("invoice is required")
	}
	amount, ok := valueobject.PositiveAmount(amount)
	if !ok {
		return nil, shared.NewValidationError("allocation amount must be positive")
	}
	if amount.GreaterThan(p.UnallocatedAmount) {
		return nil, shared.NewValidationError("allocation %s exceeds payment unallocated amount %s",
			amount.StringFixed(2), p.UnallocatedAmount.StringFixed(2))
	}

	alloc := PaymentAllocation{
		ID:        uuid.New(),
		TenantID:  p.TenantID,
		PaymentID: p.ID,
		InvoiceID: invoiceID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	if actor != uuid.Nil {
		alloc.CreatedBy = &actor
	}
	p.Allocations = append(p.Allocations, alloc)
	p.UnallocatedAmount = p.UnallocatedAmount.Sub(amount)
	p.Touch()
	p.AddDomainEvent(NewPaymentAllocatedEvent(p, &alloc))
	return &alloc, nil
}

// Void detaches every allocation and marks the payment voided. The returned
// allocations are the ones the caller must reverse on their invoices.
func (p *Payment) Void(reason string, actor uuid.UUID) ([]PaymentAllocation, error) {
	if p.IsVoided {
		return nil, shared.NewInvalidStateError("payment %s is already voided", p.PaymentNumber)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewValidationError("void reason is required")
	}

	removed := p.Allocations
	now := time.Now()
	p.Allocations = nil
	p.UnallocatedAmount = p.Amount
	p.IsVoided = true
	p.VoidReason = reason
	p.VoidedAt = &now
	if actor != uuid.Nil {
		p.VoidedBy = &actor
	}
	p.Touch()
	p.AddDomainEvent(NewPaymentVoidedEvent(p, removed))
	return removed, nil
}
