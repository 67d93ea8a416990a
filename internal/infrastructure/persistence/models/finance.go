package models

import (
	"time"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceNumber string                `gorm:"type:varchar(50);not null;index"`
	Title         string                `gorm:"type:varchar(200)"`
	InvoiceDate   time.Time             `gorm:"type:date;not null;index"`
	DueDate       *time.Time            `gorm:"type:date"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TaxRate       decimal.Decimal       `gorm:"type:decimal(9,6);not null"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	AmountPaid    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status        finance.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes         string                `gorm:"type:text"`
	SentAt        *time.Time
	CancelledAt   *time.Time
	VoidedAt      *time.Time
	Items         []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice. Items are
// included only when they were preloaded.
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	inv := &finance.Invoice{
		CustomerID:    m.CustomerID,
		InvoiceNumber: m.InvoiceNumber,
		Title:         m.Title,
		InvoiceDate:   m.InvoiceDate,
		Subtotal:      m.Subtotal,
		TaxRate:       m.TaxRate,
		TaxAmount:     m.TaxAmount,
		TotalAmount:   m.TotalAmount,
		AmountPaid:    m.AmountPaid,
		Status:        m.Status,
		Notes:         m.Notes,
		SentAt:        m.SentAt,
		CancelledAt:   m.CancelledAt,
		VoidedAt:      m.VoidedAt,
	}
	m.PopulateTenantAggregateRoot(&inv.TenantAggregateRoot)
	if m.DueDate != nil {
		inv.DueDate = *m.DueDate
	}
	if len(m.Items) > 0 {
		inv.Items = make([]finance.InvoiceItem, len(m.Items))
		for i := range m.Items {
			inv.Items[i] = m.Items[i].ToDomain()
		}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *finance.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.CustomerID = inv.CustomerID
	m.InvoiceNumber = inv.InvoiceNumber
	m.Title = inv.Title
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = nil
	if !inv.DueDate.IsZero() {
		due := inv.DueDate
		m.DueDate = &due
	}
	m.Subtotal = inv.Subtotal
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.AmountPaid = inv.AmountPaid
	m.Status = inv.Status
	m.Notes = inv.Notes
	m.SentAt = inv.SentAt
	m.CancelledAt = inv.CancelledAt
	m.VoidedAt = inv.VoidedAt
	m.Items = InvoiceItemModelsFromDomain(inv.Items)
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is one billed line of an invoice.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() finance.InvoiceItem {
	return finance.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		SortOrder:   m.SortOrder,
	}
}

// InvoiceItemModelsFromDomain maps invoice lines to rows.
func InvoiceItemModelsFromDomain(items []finance.InvoiceItem) []InvoiceItemModel {
	if len(items) == 0 {
		return nil
	}
	rows := make([]InvoiceItemModel, len(items))
	for i, item := range items {
		rows[i] = InvoiceItemModel{
			ID:          item.ID,
			InvoiceID:   item.InvoiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			SortOrder:   item.SortOrder,
		}
	}
	return rows
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Allocations live in their own table and are written by the allocation
// repository; they are only read through this association.
type PaymentModel struct {
	TenantAggregateModel
	CustomerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	PaymentNumber     string                `gorm:"type:varchar(50);not null;index"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method            finance.PaymentMethod `gorm:"type:varchar(30);not null"`
	ReferenceNumber   string                `gorm:"type:varchar(100)"`
	Notes             string                `gorm:"type:text"`
	PaymentDate       time.Time             `gorm:"type:date;not null;index"`
	UnallocatedAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	IsVoided          bool                  `gorm:"not null;default:false;index"`
	VoidReason        string                `gorm:"type:varchar(500)"`
	VoidedAt          *time.Time
	VoidedBy          *uuid.UUID               `gorm:"type:uuid"`
	Allocations       []PaymentAllocationModel `gorm:"foreignKey:PaymentID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *finance.Payment {
	p := &finance.Payment{
		CustomerID:        m.CustomerID,
		PaymentNumber:     m.PaymentNumber,
		Amount:            m.Amount,
		Method:            m.Method,
		ReferenceNumber:   m.ReferenceNumber,
		Notes:             m.Notes,
		PaymentDate:       m.PaymentDate,
		UnallocatedAmount: m.UnallocatedAmount,
		IsVoided:          m.IsVoided,
		VoidReason:        m.VoidReason,
		VoidedAt:          m.VoidedAt,
		VoidedBy:          m.VoidedBy,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	if len(m.Allocations) > 0 {
		p.Allocations = make([]finance.PaymentAllocation, len(m.Allocations))
		for i := range m.Allocations {
			p.Allocations[i] = m.Allocations[i].ToDomain()
		}
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment.
// Allocations are not copied; header writes never touch them.
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.CustomerID = p.CustomerID
	m.PaymentNumber = p.PaymentNumber
	m.Amount = p.Amount
	m.Method = p.Method
	m.ReferenceNumber = p.ReferenceNumber
	m.Notes = p.Notes
	m.PaymentDate = p.PaymentDate
	m.UnallocatedAmount = p.UnallocatedAmount
	m.IsVoided = p.IsVoided
	m.VoidReason = p.VoidReason
	m.VoidedAt = p.VoidedAt
	m.VoidedBy = p.VoidedBy
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// PaymentAllocationModel links part of a payment to one invoice.
type PaymentAllocationModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	CreatedBy *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentAllocation.
func (m *PaymentAllocationModel) ToDomain() finance.PaymentAllocation {
	return finance.PaymentAllocation{
		ID:        m.ID,
		TenantID:  m.TenantID,
		PaymentID: m.PaymentID,
		InvoiceID: m.InvoiceID,
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

// PaymentAllocationModelFromDomain creates a row from a domain allocation.
func PaymentAllocationModelFromDomain(a *finance.PaymentAllocation) *PaymentAllocationModel {
	return &PaymentAllocationModel{
		ID:        a.ID,
		TenantID:  a.TenantID,
		PaymentID: a.PaymentID,
		InvoiceID: a.InvoiceID,
		Amount:    a.Amount,
		CreatedAt: a.CreatedAt,
		CreatedBy: a.CreatedBy,
	}
}
