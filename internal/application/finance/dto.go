package finance

import (
	"time"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// RecordPaymentRequest records money received from a customer with an
// optional up-front split across invoices.
type RecordPaymentRequest struct {
	TenantID       uuid.UUID
	CustomerID     uuid.UUID
	Amount         decimal.Decimal
	Method         finance.PaymentMethod
	Reference      string
	Notes          string
	PaymentDate    time.Time
	Allocations    map[uuid.UUID]decimal.Decimal // invoice id -> amount
	ActorID        uuid.UUID
	IdempotencyKey string
}

// AllocatePaymentRequest applies part of a payment's unallocated amount to an invoice
type AllocatePaymentRequest struct {
	TenantID  uuid.UUID
	PaymentID uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	ActorID   uuid.UUID
}

// VoidPaymentRequest voids a payment and unwinds its allocations
type VoidPaymentRequest struct {
	TenantID  uuid.UUID
	PaymentID uuid.UUID
	Reason    string
	ActorID   uuid.UUID
}

// ApplyCreditRequest settles an invoice from the customer's credit balance
type ApplyCreditRequest struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	InvoiceID  uuid.UUID
	Amount     decimal.Decimal
	ActorID    uuid.UUID
}

// InvoiceItemRequest is one line of an invoice request
type InvoiceItemRequest struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateInvoiceRequest creates a draft invoice
type CreateInvoiceRequest struct {
	TenantID    uuid.UUID
	CustomerID  uuid.UUID
	Title       string
	InvoiceDate time.Time
	DueDate     time.Time
	TaxRate     decimal.Decimal
	Notes       string
	Items       []InvoiceItemRequest
	ActorID     uuid.UUID
}

// UpdateInvoiceRequest replaces the editable content of a draft
type UpdateInvoiceRequest struct {
	TenantID    uuid.UUID
	InvoiceID   uuid.UUID
	Title       string
	InvoiceDate time.Time
	DueDate     time.Time
	TaxRate     decimal.Decimal
	Notes       string
	Items       []InvoiceItemRequest
	ActorID     uuid.UUID
}

// InvoiceTransitionRequest drives send, cancel and void
type InvoiceTransitionRequest struct {
	TenantID  uuid.UUID
	InvoiceID uuid.UUID
	Reason    string
	ActorID   uuid.UUID
}

func toDraft(title string, invoiceDate, dueDate time.Time, taxRate decimal.Decimal, notes string, items []InvoiceItemRequest) finance.InvoiceDraft {
	inputs := make([]finance.InvoiceItemInput, len(items))
	for i, it := range items {
		inputs[i] = finance.InvoiceItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return finance.InvoiceDraft{
		Title:       title,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		TaxRate:     taxRate,
		Notes:       notes,
		Items:       inputs,
	}
}

// ==================== Responses ====================

// AllocationResponse represents a payment allocation
type AllocationResponse struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentResponse represents a payment
type PaymentResponse struct {
	ID                uuid.UUID            `json:"id"`
	TenantID          uuid.UUID            `json:"tenant_id"`
	CustomerID        uuid.UUID            `json:"customer_id"`
	PaymentNumber     string               `json:"payment_number"`
	Amount            decimal.Decimal      `json:"amount"`
	Method            string               `json:"payment_method"`
	ReferenceNumber   string               `json:"reference_number,omitempty"`
	Notes             string               `json:"notes,omitempty"`
	PaymentDate       time.Time            `json:"payment_date"`
	UnallocatedAmount decimal.Decimal      `json:"unallocated_amount"`
	IsVoided          bool                 `json:"is_voided"`
	VoidReason        string               `json:"void_reason,omitempty"`
	VoidedAt          *time.Time           `json:"voided_at,omitempty"`
	VoidedBy          *uuid.UUID           `json:"voided_by,omitempty"`
	Allocations       []AllocationResponse `json:"allocations"`
	Version           int                  `json:"version"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// InvoiceItemResponse represents one invoice line
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents an invoice
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	TenantID      uuid.UUID             `json:"tenant_id"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	InvoiceNumber string                `json:"invoice_number"`
	Title         string                `json:"title,omitempty"`
	InvoiceDate   time.Time             `json:"invoice_date"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	BalanceDue    decimal.Decimal       `json:"balance_due"`
	Status        string                `json:"status"`
	Notes         string                `json:"notes,omitempty"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	SentAt        *time.Time            `json:"sent_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	VoidedAt      *time.Time            `json:"voided_at,omitempty"`
	Version       int                   `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// CustomerBalanceResponse carries the derived balances of a customer
type CustomerBalanceResponse struct {
	CustomerID         uuid.UUID       `json:"customer_id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	CreditBalance      decimal.Decimal `json:"credit_balance"`
	BalancesUpdatedAt  *time.Time      `json:"balances_updated_at,omitempty"`
}

// ApplyCreditResponse is the result of applying credit to an invoice
type ApplyCreditResponse struct {
	Invoice     InvoiceResponse          `json:"invoice"`
	Allocations []AllocationResponse     `json:"allocations"`
	Applied     decimal.Decimal          `json:"applied"`
	Customer    *CustomerBalanceResponse `json:"customer"`
}

// ToAllocationResponse converts a domain allocation
func ToAllocationResponse(a *finance.PaymentAllocation) AllocationResponse {
	return AllocationResponse{
		ID:        a.ID,
		PaymentID: a.PaymentID,
		InvoiceID: a.InvoiceID,
		Amount:    a.Amount,
		CreatedAt: a.CreatedAt,
	}
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	allocs := make([]AllocationResponse, len(p.Allocations))
	for i := range p.Allocations {
		allocs[i] = ToAllocationResponse(&p.Allocations[i])
	}
	return PaymentResponse{
		ID:                p.ID,
		TenantID:          p.TenantID,
		CustomerID:        p.CustomerID,
		PaymentNumber:     p.PaymentNumber,
		Amount:            p.Amount,
		Method:            string(p.Method),
		ReferenceNumber:   p.ReferenceNumber,
		Notes:             p.Notes,
		PaymentDate:       p.PaymentDate,
		UnallocatedAmount: p.UnallocatedAmount,
		IsVoided:          p.IsVoided,
		VoidReason:        p.VoidReason,
		VoidedAt:          p.VoidedAt,
		VoidedBy:          p.VoidedBy,
		Allocations:       allocs,
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToInvoiceResponse converts a domain invoice
func ToInvoiceResponse(inv *finance.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		}
	}
	resp := InvoiceResponse{
		ID:            inv.ID,
		TenantID:      inv.TenantID,
		CustomerID:    inv.CustomerID,
		InvoiceNumber: inv.InvoiceNumber,
		Title:         inv.Title,
		InvoiceDate:   inv.InvoiceDate,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		AmountPaid:    inv.AmountPaid,
		BalanceDue:    inv.BalanceDue(),
		Status:        string(inv.Status),
		Notes:         inv.Notes,
		Items:         items,
		SentAt:        inv.SentAt,
		CancelledAt:   inv.CancelledAt,
		VoidedAt:      inv.VoidedAt,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	if !inv.DueDate.IsZero() {
		due := inv.DueDate
		resp.DueDate = &due
	}
	return resp
}

// ToCustomerBalanceResponse converts a customer's balance view
func ToCustomerBalanceResponse(c *partner.Customer) *CustomerBalanceResponse {
	if c == nil {
		return nil
	}
	return &CustomerBalanceResponse{
		CustomerID:         c.ID,
		Code:               c.Code,
		Name:               c.Name,
		OutstandingBalance: c.OutstandingBalance,
		CreditBalance:      c.CreditBalance,
		BalancesUpdatedAt:  c.BalancesUpdatedAt,
	}
}
