package ledger

import (
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeJournalEntry names journal entries in events
const AggregateTypeJournalEntry = "JournalEntry"

// Event type constants
const (
	EventTypeJournalEntryCreated = "journal_entry.created"
	EventTypeJournalEntryPosted  = "journal_entry.posted"
)

// JournalEntryCreatedEvent is published when a draft entry is saved
type JournalEntryCreatedEvent struct {
	shared.BaseDomainEvent
	EntryNumber string `json:"entry_number"`
	LineCount   int    `json:"line_count"`
}

// NewJournalEntryCreatedEvent creates a new JournalEntryCreatedEvent
func NewJournalEntryCreatedEvent(e *JournalEntry) *JournalEntryCreatedEvent {
	return &JournalEntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryCreated, AggregateTypeJournalEntry, e.ID, e.TenantID),
		EntryNumber:     e.EntryNumber,
		LineCount:       len(e.Lines),
	}
}

// JournalEntryPostedEvent is published when an entry hits the accounts
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryNumber string          `json:"entry_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewJournalEntryPostedEvent creates a new JournalEntryPostedEvent
func NewJournalEntryPostedEvent(e *JournalEntry) *JournalEntryPostedEvent {
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryPosted, AggregateTypeJournalEntry, e.ID, e.TenantID),
		EntryNumber:     e.EntryNumber,
		TotalAmount:     e.TotalDebit(),
	}
}
