// Package ledger holds the double-entry posting use cases.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bizcms/backend/internal/application/event"
	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	entityAccount      = "account"
	entityJournalEntry = "journal_entry"
)

// ChartOfAccountsService keeps the chart of accounts and posts journal entries
type ChartOfAccountsService struct {
	scope      TransactionScope
	reader     TransactionalRepositories
	dispatcher *event.Dispatcher
	logger     *zap.Logger
}

// NewChartOfAccountsService creates a new ChartOfAccountsService
func NewChartOfAccountsService(scope TransactionScope, reader TransactionalRepositories, dispatcher *event.Dispatcher, logger *zap.Logger) *ChartOfAccountsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = event.NewDispatcher(logger)
	}
	return &ChartOfAccountsService{
		scope:      scope,
		reader:     reader,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// InitializeChartOfAccounts creates the default accounts the tenant does not
// have yet. Returns how many were created.
func (s *ChartOfAccountsService) InitializeChartOfAccounts(ctx context.Context, tenantID uuid.UUID) (created int, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "initialize_chart", telemetry.SpanAttrTenantID, tenantID.String())
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, "initialize_chart", err)
	}()

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		created = 0
		existing, err := repos.Accounts().ExistingCodes(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to load account codes: %w", err)
		}
		for _, tpl := range ledger.DefaultChart {
			if existing[tpl.Code] {
				continue
			}
			acc, err := ledger.NewAccount(tenantID, tpl.Code, tpl.Name, tpl.Type, tpl.Category)
			if err != nil {
				return err
			}
			acc.IsSystem = true
			if err := repos.Accounts().Create(ctx, acc); err != nil {
				return fmt.Errorf("failed to create account %s: %w", tpl.Code, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Chart of accounts initialized",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("created", created),
	)
	return created, nil
}

// CreateAccount adds a custom account. Codes are unique per tenant.
func (s *ChartOfAccountsService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	acc, err := ledger.NewAccount(req.TenantID, req.Code, req.Name, req.Type, req.Category)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Accounts().FindByCode(ctx, req.TenantID, acc.Code)
		if err != nil {
			return fmt.Errorf("failed to check account code: %w", err)
		}
		if existing != nil {
			return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("account code %s already exists", acc.Code))
		}
		return repos.Accounts().Create(ctx, acc)
	})
	if err != nil {
		return nil, err
	}
	out := ToAccountResponse(acc)
	return &out, nil
}

// CreateJournalEntry saves an unposted entry against existing active accounts
func (s *ChartOfAccountsService) CreateJournalEntry(ctx context.Context, req CreateJournalEntryRequest) (resp *JournalEntryResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_entry",
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		"lines", len(req.Lines),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, "create_journal_entry", err)
	}()

	input := ledger.JournalEntryInput{
		EntryDate:   req.EntryDate,
		Description: req.Description,
		Reference:   req.Reference,
		Lines:       make([]ledger.JournalLineInput, len(req.Lines)),
	}
	for i, l := range req.Lines {
		input.Lines[i] = ledger.JournalLineInput{
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
		}
	}

	var entry *ledger.JournalEntry
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Validate the draft before consuming a number.
		draft, err := ledger.NewJournalEntry(req.TenantID, ledger.EntryNumberPrefix, input, req.ActorID)
		if err != nil {
			return err
		}
		if err := s.checkAccounts(ctx, repos, req.TenantID, draft.AccountIDs()); err != nil {
			return err
		}
		seq, err := repos.Numbers().Next(ctx, shared.SequenceKey{
			TenantID: req.TenantID,
			Prefix:   ledger.EntryNumberPrefix,
			Period:   0,
		})
		if err != nil {
			return fmt.Errorf("failed to allocate entry number: %w", err)
		}
		entry, err = ledger.NewJournalEntry(req.TenantID, ledger.FormatEntryNumber(seq), input, req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.JournalEntries().Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create journal entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, shared.CollectEvents(entry))
	s.dispatcher.Audit(ctx, shared.AuditEntry{
		TenantID:   req.TenantID,
		UserID:     req.ActorID,
		EntityType: entityJournalEntry,
		EntityID:   entry.ID,
		Action:     shared.AuditActionCreate,
		NewValues: map[string]any{
			"entry_number": entry.EntryNumber,
			"total_debit":  entry.TotalDebit().StringFixed(2),
			"total_credit": entry.TotalCredit().StringFixed(2),
		},
	})

	out := ToJournalEntryResponse(entry)
	return &out, nil
}

// PostJournalEntry applies a balanced entry to its accounts. It returns
// false without touching anything when the entry was posted before.
func (s *ChartOfAccountsService) PostJournalEntry(ctx context.Context, tenantID, entryID, actorID uuid.UUID) (posted bool, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "post_entry",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrEntryID, entryID.String(),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, "post_journal_entry", err)
	}()

	var (
		entry    *ledger.JournalEntry
		accounts []*ledger.Account
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		posted, accounts = false, nil
		entry, err = repos.JournalEntries().FindByIDForUpdate(ctx, tenantID, entryID)
		if err != nil {
			return fmt.Errorf("failed to lock journal entry: %w", err)
		}
		if entry == nil {
			return shared.NewNotFoundError(entityJournalEntry, entryID)
		}
		if entry.IsPosted {
			return nil
		}

		ids := entry.AccountIDs()
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
		locked, err := repos.Accounts().FindByIDsForUpdate(ctx, tenantID, ids)
		if err != nil {
			return fmt.Errorf("failed to lock accounts: %w", err)
		}
		byID := make(map[uuid.UUID]*ledger.Account, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}

		if err := entry.Post(byID, actorID); err != nil {
			if errors.Is(err, ledger.ErrAlreadyPosted) {
				return nil
			}
			return err
		}
		for _, id := range ids {
			acc := byID[id]
			if err := repos.Accounts().SaveWithLock(ctx, acc); err != nil {
				return err
			}
			accounts = append(accounts, acc)
		}
		if err := repos.JournalEntries().SaveWithLock(ctx, entry); err != nil {
			return err
		}
		posted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !posted {
		s.logger.Debug("Journal entry already posted", zap.String("journal_entry_id", entryID.String()))
		return false, nil
	}

	s.dispatcher.Publish(ctx, shared.CollectEvents(entry))
	s.dispatcher.Metrics().RecordJournalPosted(ctx, tenantID)
	s.dispatcher.Audit(ctx, shared.AuditEntry{
		TenantID:   tenantID,
		UserID:     actorID,
		EntityType: entityJournalEntry,
		EntityID:   entry.ID,
		Action:     shared.AuditActionPost,
		OldValues:  map[string]any{"is_posted": false},
		NewValues: map[string]any{
			"is_posted": true,
			"accounts":  len(accounts),
			"amount":    entry.TotalDebit().StringFixed(2),
		},
	})
	s.logger.Info("Journal entry posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entry_number", entry.EntryNumber),
		zap.String("amount", entry.TotalDebit().StringFixed(2)),
	)
	return true, nil
}

// GetTrialBalance classifies the balances of all active accounts
func (s *ChartOfAccountsService) GetTrialBalance(ctx context.Context, tenantID uuid.UUID) (*ledger.TrialBalance, error) {
	accounts, err := s.reader.Accounts().FindAllForTenant(ctx, tenantID, ledger.AccountFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return ledger.BuildTrialBalance(tenantID, accounts), nil
}

// GetJournalEntry returns one entry with its lines
func (s *ChartOfAccountsService) GetJournalEntry(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.reader.JournalEntries().FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal entry: %w", err)
	}
	if entry == nil {
		return nil, shared.NewNotFoundError(entityJournalEntry, entryID)
	}
	out := ToJournalEntryResponse(entry)
	return &out, nil
}

// ListAccounts returns the chart ordered by code
func (s *ChartOfAccountsService) ListAccounts(ctx context.Context, tenantID uuid.UUID, filter ledger.AccountFilter) ([]AccountResponse, error) {
	accounts, err := s.reader.Accounts().FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out, nil
}

func (s *ChartOfAccountsService) checkAccounts(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, ids []uuid.UUID) error {
	found, err := repos.Accounts().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	byID := make(map[uuid.UUID]ledger.Account, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	for _, id := range ids {
		acc, ok := byID[id]
		if !ok {
			return shared.NewNotFoundError(entityAccount, id)
		}
		if !acc.IsActive {
			return shared.NewValidationError("account %s is inactive", acc.Code)
		}
	}
	return nil
}
