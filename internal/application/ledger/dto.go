package ledger

import (
	"time"

	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one requested line
type JournalLineRequest struct {
	AccountID    uuid.UUID
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	Description  string
}

// CreateJournalEntryRequest creates an unposted journal entry
type CreateJournalEntryRequest struct {
	TenantID    uuid.UUID
	EntryDate   time.Time
	Description string
	Reference   string
	Lines       []JournalLineRequest
	ActorID     uuid.UUID
}

// CreateAccountRequest adds a custom account to the chart
type CreateAccountRequest struct {
	TenantID uuid.UUID
	Code     string
	Name     string
	Type     ledger.AccountType
	Category string
}

// AccountResponse represents an account
type AccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Category       string          `json:"category,omitempty"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsSystem       bool            `json:"is_system"`
	IsActive       bool            `json:"is_active"`
}

// JournalLineResponse represents one journal line
type JournalLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	LineNo       int             `json:"line_no"`
	AccountID    uuid.UUID       `json:"account_id"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Description  string          `json:"description,omitempty"`
}

// JournalEntryResponse represents a journal entry
type JournalEntryResponse struct {
	ID          uuid.UUID             `json:"id"`
	TenantID    uuid.UUID             `json:"tenant_id"`
	EntryNumber string                `json:"entry_number"`
	EntryDate   time.Time             `json:"entry_date"`
	Description string                `json:"description"`
	Reference   string                `json:"reference,omitempty"`
	IsPosted    bool                  `json:"is_posted"`
	PostedAt    *time.Time            `json:"posted_at,omitempty"`
	PostedBy    *uuid.UUID            `json:"posted_by,omitempty"`
	TotalDebit  decimal.Decimal       `json:"total_debit"`
	TotalCredit decimal.Decimal       `json:"total_credit"`
	Lines       []JournalLineResponse `json:"lines"`
}

// ToAccountResponse converts a domain account
func ToAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		Type:           a.Type.String(),
		Category:       a.Category,
		CurrentBalance: a.CurrentBalance,
		IsSystem:       a.IsSystem,
		IsActive:       a.IsActive,
	}
}

// ToJournalEntryResponse converts a domain journal entry
func ToJournalEntryResponse(e *ledger.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			ID:           l.ID,
			LineNo:       l.LineNo,
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
		}
	}
	return JournalEntryResponse{
		ID:          e.ID,
		TenantID:    e.TenantID,
		EntryNumber: e.EntryNumber,
		EntryDate:   e.EntryDate,
		Description: e.Description,
		Reference:   e.Reference,
		IsPosted:    e.IsPosted,
		PostedAt:    e.PostedAt,
		PostedBy:    e.PostedBy,
		TotalDebit:  e.TotalDebit(),
		TotalCredit: e.TotalCredit(),
		Lines:       lines,
	}
}
