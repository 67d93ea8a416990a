package persistence

import (
	"context"
	"errors"

	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForTenant finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	return r.first(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a customer and holds a row lock until the
// transaction ends
func (r *GormCustomerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormCustomerRepository) first(query *gorm.DB, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := query.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists customers for a tenant with pagination
func (r *GormCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("tenant_id = ?", tenantID)

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customerModels []models.CustomerModel
	if err := applyPage(query, filter, CustomerSortFields, "code").Find(&customerModels).Error; err != nil {
		return nil, 0, err
	}

	customers := make([]partner.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers, total, nil
}

// ListIDs returns every customer id of a tenant, ordered for stable batch runs
func (r *GormCustomerRepository) ListIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "customer")
}

// SaveWithLock writes the customer when the stored version still matches
// and bumps the version on success
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", customer.TenantID, customer.ID, customer.Version).
		Updates(map[string]any{
			"name":                customer.Name,
			"email":               customer.Email,
			"outstanding_balance": customer.OutstandingBalance,
			"credit_balance":      customer.CreditBalance,
			"balances_updated_at": customer.BalancesUpdatedAt,
			"version":             customer.Version + 1,
			"updated_at":          customer.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "customer")
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("customer")
	}
	customer.Version++
	return nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
