package finance

import (
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeInvoice = "Invoice"
	AggregateTypePayment = "Payment"
)

// Event type constants
const (
	EventTypeInvoiceCreated       = "invoice.created"
	EventTypeInvoiceUpdated       = "invoice.updated"
	EventTypeInvoiceSent          = "invoice.sent"
	EventTypeInvoiceStatusChanged = "invoice.status_changed"
	EventTypeInvoiceCancelled     = "invoice.cancelled"
	EventTypeInvoiceVoided        = "invoice.voided"
	EventTypePaymentRecorded      = "payment.recorded"
	EventTypePaymentAllocated     = "payment.allocated"
	EventTypePaymentVoided        = "payment.voided"
)

// InvoiceCreatedEvent is published when a draft invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceUpdatedEvent is published when a draft is edited
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, AggregateTypeInvoice, inv.ID, inv.TenantID),
		TotalAmount:     inv.TotalAmount,
		ItemCount:       len(inv.Items),
	}
}

// InvoiceSentEvent is published when a draft is issued
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string    `json:"invoice_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
	}
}

// InvoiceStatusChangedEvent is published on every status transition
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	From       InvoiceStatus   `json:"from"`
	To         InvoiceStatus   `json:"to"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, from InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, inv.ID, inv.TenantID),
		From:            from,
		To:              inv.Status,
		AmountPaid:      inv.AmountPaid,
	}
}

// InvoiceCancelledEvent is published when an unpaid invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Reason     string    `json:"reason"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, reason string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, inv.ID, inv.TenantID),
		CustomerID:      inv.CustomerID,
		Reason:          reason,
	}
}

// InvoiceVoidedEvent is published when a paid invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Reason     string    `json:"reason"`
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *Invoice, reason string) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, AggregateTypeInvoice, inv.ID, inv.TenantID),
		CustomerID:      inv.CustomerID,
		Reason:          reason,
	}
}

// PaymentRecordedEvent is published when a payment is received
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID       `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	PaymentDate time.Time       `json:"payment_date"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method,
		PaymentDate:     p.PaymentDate,
	}
}

// PaymentAllocatedEvent is published for each allocation created
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID       `json:"allocation_id"`
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Amount       decimal.Decimal `json:"amount"`
	Unallocated  decimal.Decimal `json:"unallocated"`
}

// NewPaymentAllocatedEvent creates a new PaymentAllocatedEvent
func NewPaymentAllocatedEvent(p *Payment, alloc *PaymentAllocation) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAllocated, AggregateTypePayment, p.ID, p.TenantID),
		AllocationID:    alloc.ID,
		InvoiceID:       alloc.InvoiceID,
		Amount:          alloc.Amount,
		Unallocated:     p.UnallocatedAmount,
	}
}

// PaymentVoidedEvent is published when a payment is voided
type PaymentVoidedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID       `json:"customer_id"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          string          `json:"reason"`
	ReversedInvoice []uuid.UUID     `json:"reversed_invoices"`
}

// NewPaymentVoidedEvent creates a new PaymentVoidedEvent
func NewPaymentVoidedEvent(p *Payment, removed []PaymentAllocation) *PaymentVoidedEvent {
	ids := make([]uuid.UUID, 0, len(removed))
	for _, a := range removed {
		ids = append(ids, a.InvoiceID)
	}
	return &PaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVoided, AggregateTypePayment, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Reason:          p.VoidReason,
		ReversedInvoice: ids,
	}
}
