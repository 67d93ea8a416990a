package ledger

import (
	"context"

	"github.com/google/uuid"
)

// AccountFilter narrows account listings. Results are always ordered by code.
type AccountFilter struct {
	Type       *AccountType
	ActiveOnly bool
}

// AccountRepository persists the chart of accounts. Single lookups return
// (nil, nil) when nothing matches.
type AccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	// FindByIDs returns the accounts that exist among ids.
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Account, error)
	// FindByIDsForUpdate is FindByIDs with row locks, in id order to avoid deadlocks.
	FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Account, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter AccountFilter) ([]Account, error)
	ExistingCodes(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error)
	Create(ctx context.Context, account *Account) error
	SaveWithLock(ctx context.Context, account *Account) error
}

// JournalEntryRepository persists journal entries with their lines
type JournalEntryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
	Create(ctx context.Context, entry *JournalEntry) error
	// SaveWithLock writes the header only; lines never change after creation.
	SaveWithLock(ctx context.Context, entry *JournalEntry) error
}
