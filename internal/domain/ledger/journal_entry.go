package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryNumberPrefix is the numbering series of journal entries.
const EntryNumberPrefix = "JE"

// FormatEntryNumber renders JE-{nnnnnn}.
func FormatEntryNumber(seq int64) string {
	return fmt.Sprintf("%s-%06d", EntryNumberPrefix, seq)
}

// ErrAlreadyPosted is returned by Post for an entry that was posted before.
// It is not a failure: callers report it as "nothing to do".
var ErrAlreadyPosted = errors.New("journal entry already posted")

// JournalLineInput is one requested debit or credit
type JournalLineInput struct {
	AccountID    uuid.UUID
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	Description  string
}

// JournalLine moves money on one account. Exactly one side is positive.
type JournalLine struct {
	ID             uuid.UUID
	JournalEntryID uuid.UUID
	AccountID      uuid.UUID
	DebitAmount    decimal.Decimal
	CreditAmount   decimal.Decimal
	Description    string
	LineNo         int
}

func newJournalLine(entryID uuid.UUID, in JournalLineInput, lineNo int) (JournalLine, error) {
	if in.AccountID == uuid.Nil {
		return JournalLine{}, shared.NewValidationError("line %d: account is required", lineNo)
	}
	debit := valueobject.RoundMoney(in.DebitAmount)
	credit := valueobject.RoundMoney(in.CreditAmount)
	if debit.IsNegative() || credit.IsNegative() {
		return JournalLine{}, shared.NewValidationError("line %d: amounts cannot be negative", lineNo)
	}
	if debit.IsPositive() == credit.IsPositive() {
		return JournalLine{}, shared.NewValidationError("line %d: exactly one of debit or credit must be positive", lineNo)
	}
	return JournalLine{
		ID:             uuid.New(),
		JournalEntryID: entryID,
		AccountID:      in.AccountID,
		DebitAmount:    debit,
		CreditAmount:   credit,
		Description:    strings.TrimSpace(in.Description),
		LineNo:         lineNo,
	}, nil
}

// JournalEntryInput holds the fields of a new entry
type JournalEntryInput struct {
	EntryDate   time.Time
	Description string
	Reference   string
	Lines       []JournalLineInput
}

// JournalEntry is a set of lines posted together
type JournalEntry struct {
	shared.TenantAggregateRoot
	EntryNumber string
	EntryDate   time.Time
	Description string
	Reference   string
	IsPosted    bool
	PostedAt    *time.Time
	PostedBy    *uuid.UUID
	Lines       []JournalLine
}

// NewJournalEntry creates an unposted entry. Balance is checked at posting,
// so an unbalanced draft can be saved and corrected later.
func NewJournalEntry(tenantID uuid.UUID, entryNumber string, in JournalEntryInput, createdBy uuid.UUID) (*JournalEntry, error) {
	if entryNumber == "" {
		return nil, shared.NewValidationError("entry number is required")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, shared.NewValidationError("description is required")
	}
	if len(in.Lines) < 2 {
		return nil, shared.NewValidationError("journal entry needs at least two lines")
	}
	entryDate := in.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	je := &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		EntryNumber:         entryNumber,
		EntryDate:           entryDate,
		Description:         desc,
		Reference:           strings.TrimSpace(in.Reference),
	}
	for n, li := range in.Lines {
		line, err := newJournalLine(je.ID, li, n+1)
		if err != nil {
			return nil, err
		}
		je.Lines = append(je.Lines, line)
	}
	je.AddDomainEvent(NewJournalEntryCreatedEvent(je))
	return je, nil
}

// TotalDebit sums the debit side
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.DebitAmount)
	}
	return total
}

// TotalCredit sums the credit side
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.CreditAmount)
	}
	return total
}

// IsBalanced compares both sides exactly after rounding to cents.
func (e *JournalEntry) IsBalanced() bool {
	return valueobject.RoundMoney(e.TotalDebit()).Equal(valueobject.RoundMoney(e.TotalCredit()))
}

// AccountIDs lists the distinct accounts touched, in line order.
func (e *JournalEntry) AccountIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(e.Lines))
	ids := make([]uuid.UUID, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// Post applies every line to its account and marks the entry posted.
// accounts must hold every account the entry references. Nothing is mutated
// unless all checks pass.
func (e *JournalEntry) Post(accounts map[uuid.UUID]*Account, actor uuid.UUID) error {
	if e.IsPosted {
		return ErrAlreadyPosted
	}
	if !e.IsBalanced() {
		return shared.NewValidationError("journal entry %s is not balanced: debit %s, credit %s",
			e.EntryNumber, e.TotalDebit().StringFixed(2), e.TotalCredit().StringFixed(2))
	}
	for _, l := range e.Lines {
		acc, ok := accounts[l.AccountID]
		if !ok || acc == nil {
			return shared.NewNotFoundError("account", l.AccountID)
		}
		if !acc.BelongsTo(e.TenantID) {
			return shared.NewNotFoundError("account", l.AccountID)
		}
	}

	for _, l := range e.Lines {
		accounts[l.AccountID].ApplyLine(l.DebitAmount, l.CreditAmount)
	}
	now := time.Now()
	e.IsPosted = true
	e.PostedAt = &now
	if actor != uuid.Nil {
		e.PostedBy = &actor
	}
	e.Touch()
	e.AddDomainEvent(NewJournalEntryPostedEvent(e))
	return nil
}
