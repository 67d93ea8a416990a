package persistence

import (
	"context"
	"errors"

	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	return r.first(ctx, "tenant_id = ? AND id = ?", tenantID, id)
}

// FindByCode finds an account by its code within a tenant
func (r *GormAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ledger.Account, error) {
	return r.first(ctx, "tenant_id = ? AND code = ?", tenantID, code)
}

func (r *GormAccountRepository) first(ctx context.Context, where string, args ...any) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).Where(where, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the accounts that exist among ids
func (r *GormAccountRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]ledger.Account, error) {
	return r.findByIDs(r.db.WithContext(ctx), tenantID, ids)
}

// FindByIDsForUpdate locks the accounts in id order
func (r *GormAccountRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]ledger.Account, error) {
	return r.findByIDs(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, ids)
}

func (r *GormAccountRepository) findByIDs(query *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]ledger.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.AccountModel
	if err := query.Where("tenant_id = ? AND id IN ?", tenantID, ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAccounts(rows), nil
}

// FindAllForTenant lists accounts ordered by code
func (r *GormAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.AccountFilter) ([]ledger.Account, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.AccountModel
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAccounts(rows), nil
}

// ExistingCodes returns the set of account codes a tenant already has
func (r *GormAccountRepository) ExistingCodes(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("tenant_id = ?", tenantID).
		Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set, nil
}

// Create inserts a new account
func (r *GormAccountRepository) Create(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "account")
}

// SaveWithLock writes the account when the stored version still matches
// and bumps the version on success
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, account *ledger.Account) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", account.TenantID, account.ID, account.Version).
		Updates(map[string]any{
			"name":            account.Name,
			"category":        account.Category,
			"current_balance": account.CurrentBalance,
			"is_active":       account.IsActive,
			"version":         account.Version + 1,
			"updated_at":      account.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "account")
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("account")
	}
	account.Version++
	return nil
}

func toAccounts(rows []models.AccountModel) []ledger.Account {
	accounts := make([]ledger.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts
}

// GormJournalEntryRepository implements ledger.JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByIDForTenant loads an entry with its lines
func (r *GormJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.JournalEntry, error) {
	return r.first(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads an entry with its lines and row-locks the header
func (r *GormJournalEntryRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ledger.JournalEntry, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormJournalEntryRepository) first(query *gorm.DB, tenantID, id uuid.UUID) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	err := query.
		Preload("Lines", preloadLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts the entry and its lines
func (r *GormJournalEntryRepository) Create(ctx context.Context, entry *ledger.JournalEntry) error {
	model := models.JournalEntryModelFromDomain(entry)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "journal entry")
}

// SaveWithLock writes the header only
func (r *GormJournalEntryRepository) SaveWithLock(ctx context.Context, entry *ledger.JournalEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", entry.TenantID, entry.ID, entry.Version).
		Updates(map[string]any{
			"description": entry.Description,
			"reference":   entry.Reference,
			"is_posted":   entry.IsPosted,
			"posted_at":   entry.PostedAt,
			"posted_by":   entry.PostedBy,
			"version":     entry.Version + 1,
			"updated_at":  entry.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "journal entry")
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("journal entry")
	}
	entry.Version++
	return nil
}

var (
	_ ledger.AccountRepository      = (*GormAccountRepository)(nil)
	_ ledger.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
)
