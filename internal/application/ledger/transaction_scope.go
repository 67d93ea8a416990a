package ledger

import (
	"context"

	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/bizcms/backend/internal/domain/shared"
)

// TransactionScope runs one ledger unit of work atomically
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the ledger repositories bound to one transaction
type TransactionalRepositories interface {
	Accounts() ledger.AccountRepository
	JournalEntries() ledger.JournalEntryRepository
	Numbers() shared.NumberGenerator
}
