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

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusVoid      InvoiceStatus = "void"
)

// IsValid checks if the status is a known value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial,
		InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true for cancelled and void invoices
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusCancelled || s == InvoiceStatusVoid
}

// CountsTowardOutstanding reports whether invoices in this state contribute
// to the customer's outstanding balance.
func (s InvoiceStatus) CountsTowardOutstanding() bool {
	return !s.IsTerminal()
}

// DeriveStatus computes the status implied by the amounts. Rules are applied
// in order: settled within tolerance is paid, any payment is partial, an
// unsent draft stays draft, anything else is sent. Terminal states never change.
func DeriveStatus(current InvoiceStatus, total, paid decimal.Decimal) InvoiceStatus {
	if current.IsTerminal() {
		return current
	}
	if valueobject.IsSettled(total.Sub(paid)) {
		return InvoiceStatusPaid
	}
	if paid.IsPositive() {
		return InvoiceStatusPartial
	}
	if current == InvoiceStatusDraft {
		return InvoiceStatusDraft
	}
	return InvoiceStatusSent
}

// InvoiceNumberPrefix is the numbering series of invoices.
const InvoiceNumberPrefix = "INV"

// FormatInvoiceNumber renders INV-{yyyy}-{nnnn}.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%04d", InvoiceNumberPrefix, year, seq)
}

// InvoiceItemInput carries the editable fields of one line.
type InvoiceItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// InvoiceItem is one billed line. Items are owned by their invoice and are
// always replaced as a set.
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	SortOrder   int
}

func newInvoiceItem(invoiceID uuid.UUID, in InvoiceItemInput, sortOrder int) (InvoiceItem, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return InvoiceItem{}, shared.NewValidationError("item %d: description is required", sortOrder+1)
	}
	if !in.Quantity.IsPositive() {
		return InvoiceItem{}, shared.NewValidationError("item %d: quantity must be positive", sortOrder+1)
	}
	if in.UnitPrice.IsNegative() {
		return InvoiceItem{}, shared.NewValidationError("item %d: unit price cannot be negative", sortOrder+1)
	}
	unitPrice := valueobject.RoundMoney(in.UnitPrice)
	return InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Description: desc,
		Quantity:    in.Quantity,
		UnitPrice:   unitPrice,
		LineTotal:   valueobject.RoundMoney(in.Quantity.Mul(unitPrice)),
		SortOrder:   sortOrder,
	}, nil
}

// InvoiceDraft is the editable header of an invoice plus its lines.
type InvoiceDraft struct {
	Title       string
	InvoiceDate time.Time
	DueDate     time.Time
	TaxRate     decimal.Decimal // fraction, 0.13 means 13%
	Notes       string
	Items       []InvoiceItemInput
}

func (d InvoiceDraft) validate() error {
	if len(d.Items) == 0 {
		return shared.NewValidationError("invoice needs at least one item")
	}
	if d.InvoiceDate.IsZero() {
		return shared.NewValidationError("invoice date is required")
	}
	if !d.DueDate.IsZero() && d.DueDate.Before(d.InvoiceDate) {
		return shared.NewValidationError("due date cannot be before invoice date")
	}
	if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewValidationError("tax rate must be between 0 and 1")
	}
	return nil
}

// Invoice is the aggregate root for billing a customer
type Invoice struct {
	shared.TenantAggregateRoot
	CustomerID    uuid.UUID
	InvoiceNumber string
	Title         string
	InvoiceDate   time.Time
	DueDate       time.Time
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	Status        InvoiceStatus
	Notes         string
	Items         []InvoiceItem
	SentAt        *time.Time
	CancelledAt   *time.Time
	VoidedAt      *time.Time
}

// NewInvoice creates a draft invoice
func NewInvoice(tenantID, customerID uuid.UUID, invoiceNumber string, draft InvoiceDraft, createdBy uuid.UUID) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if invoiceNumber == "" {
		return nil, shared.NewValidationError("invoice number is required")
	}
	if err := draft.validate(); err != nil {
		return nil, err
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		CustomerID:          customerID,
		InvoiceNumber:       invoiceNumber,
		AmountPaid:          decimal.Zero,
		Status:              InvoiceStatusDraft,
	}
	if err := inv.applyDraft(draft); err != nil {
		return nil, err
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

func (i *Invoice) applyDraft(draft InvoiceDraft) error {
	items := make([]InvoiceItem, 0, len(draft.Items))
	for n, in := range draft.Items {
		item, err := newInvoiceItem(i.ID, in, n)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	i.Title = strings.TrimSpace(draft.Title)
	i.InvoiceDate = draft.InvoiceDate
	i.DueDate = draft.DueDate
	i.TaxRate = draft.TaxRate
	i.Notes = draft.Notes
	i.Items = items
	i.recalculateTotals()
	return nil
}

func (i *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range i.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	i.Subtotal = valueobject.RoundMoney(subtotal)
	i.TaxAmount = valueobject.RoundMoney(i.Subtotal.Mul(i.TaxRate))
	i.TotalAmount = i.Subtotal.Add(i.TaxAmount)
}

// BalanceDue is total minus paid, never negative.
func (i *Invoice) BalanceDue() decimal.Decimal {
	return valueobject.FloorZero(i.TotalAmount.Sub(i.AmountPaid))
}

// OutstandingContribution is what this invoice adds to the customer's
// outstanding balance.
func (i *Invoice) OutstandingContribution() decimal.Decimal {
	if !i.Status.CountsTowardOutstanding() {
		return decimal.Zero
	}
	return i.BalanceDue()
}

// UpdateDraft replaces the header and the complete item set. Only drafts
// can be edited.
func (i *Invoice) UpdateDraft(draft InvoiceDraft) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateError("invoice %s is %s, only draft invoices can be edited", i.InvoiceNumber, i.Status)
	}
	if err := draft.validate(); err != nil {
		return err
	}
	if err := i.applyDraft(draft); err != nil {
		return err
	}
	i.Touch()
	i.AddDomainEvent(NewInvoiceUpdatedEvent(i))
	return nil
}

// ReplaceItems swaps the complete item set of a draft and recomputes totals.
func (i *Invoice) ReplaceItems(items []InvoiceItemInput) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateError("invoice %s is %s, only draft invoices can be edited", i.InvoiceNumber, i.Status)
	}
	if len(items) == 0 {
		return shared.NewValidationError("invoice needs at least one item")
	}
	replaced := make([]InvoiceItem, 0, len(items))
	for n, in := range items {
		item, err := newInvoiceItem(i.ID, in, n)
		if err != nil {
			return err
		}
		replaced = append(replaced, item)
	}
	i.Items = replaced
	i.recalculateTotals()
	i.setStatus(DeriveStatus(i.lifecycleStatus(), i.TotalAmount, i.AmountPaid))
	i.Touch()
	i.AddDomainEvent(NewInvoiceUpdatedEvent(i))
	return nil
}

// Send marks a draft as issued to the customer.
func (i *Invoice) Send() error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateError("invoice %s is %s, only draft invoices can be sent", i.InvoiceNumber, i.Status)
	}
	now := time.Now()
	i.SentAt = &now
	i.setStatus(DeriveStatus(InvoiceStatusSent, i.TotalAmount, i.AmountPaid))
	i.Touch()
	i.AddDomainEvent(NewInvoiceSentEvent(i))
	return nil
}

// ApplyPayment adds an allocated amount to the invoice and re-derives status.
// Excess over the balance due is accepted here; callers enforce limits.
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if i.Status.IsTerminal() {
		return shared.NewInvalidStateError("invoice %s is %s and cannot receive payments", i.InvoiceNumber, i.Status)
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("payment amount must be positive")
	}
	i.AmountPaid = i.AmountPaid.Add(amount)
	i.setStatus(DeriveStatus(i.lifecycleStatus(), i.TotalAmount, i.AmountPaid))
	i.Touch()
	return nil
}

// ReversePayment removes a previously applied amount. Terminal invoices keep
// their status but still give the amount back so paid always matches the
// live allocations.
func (i *Invoice) ReversePayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("reversal amount must be positive")
	}
	if amount.GreaterThan(i.AmountPaid) {
		return shared.NewInvalidStateError("cannot reverse %s on invoice %s, only %s paid",
			amount.StringFixed(2), i.InvoiceNumber, i.AmountPaid.StringFixed(2))
	}
	i.AmountPaid = i.AmountPaid.Sub(amount)
	i.setStatus(DeriveStatus(i.lifecycleStatus(), i.TotalAmount, i.AmountPaid))
	i.Touch()
	return nil
}

// Cancel withdraws an invoice nothing was paid on. Paid invoices must be voided.
func (i *Invoice) Cancel(reason string) error {
	switch {
	case i.Status.IsTerminal():
		return shared.NewInvalidStateError("invoice %s is already %s", i.InvoiceNumber, i.Status)
	case i.Status == InvoiceStatusPaid:
		return shared.NewInvalidStateError("invoice %s is paid, void it instead of cancelling", i.InvoiceNumber)
	case i.AmountPaid.IsPositive():
		return shared.NewInvalidStateError("invoice %s has payments applied, void those payments first", i.InvoiceNumber)
	}
	now := time.Now()
	i.appendNote("Cancelled", now, reason)
	i.CancelledAt = &now
	i.setStatus(InvoiceStatusCancelled)
	i.Touch()
	i.AddDomainEvent(NewInvoiceCancelledEvent(i, reason))
	return nil
}

// Void retires a paid invoice. Corrections go through new entries.
func (i *Invoice) Void(reason string) error {
	if i.Status != InvoiceStatusPaid {
		return shared.NewInvalidStateError("invoice %s is %s, only paid invoices can be voided", i.InvoiceNumber, i.Status)
	}
	now := time.Now()
	i.appendNote("Voided", now, reason)
	i.VoidedAt = &now
	i.setStatus(InvoiceStatusVoid)
	i.Touch()
	i.AddDomainEvent(NewInvoiceVoidedEvent(i, reason))
	return nil
}

// lifecycleStatus is the status an invoice falls back to with nothing paid.
// Partial and paid hide whether it was ever sent, so SentAt decides.
func (i *Invoice) lifecycleStatus() InvoiceStatus {
	switch {
	case i.Status.IsTerminal():
		return i.Status
	case i.SentAt == nil:
		return InvoiceStatusDraft
	default:
		return InvoiceStatusSent
	}
}

func (i *Invoice) appendNote(label string, at time.Time, reason string) {
	line := fmt.Sprintf("[%s %s]", label, at.Format("2006-01-02"))
	if r := strings.TrimSpace(reason); r != "" {
		line += " " + r
	}
	if i.Notes == "" {
		i.Notes = line
		return
	}
	i.Notes += "\n" + line
}

func (i *Invoice) setStatus(next InvoiceStatus) {
	if next == i.Status {
		return
	}
	prev := i.Status
	i.Status = next
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, prev))
}
