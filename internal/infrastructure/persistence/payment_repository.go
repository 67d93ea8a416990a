package persistence

import (
	"context"
	"errors"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM.
// Every read preloads the payment's live allocations.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func preloadAllocations(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByIDForTenant loads a payment with its allocations
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	return r.first(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads a payment with its allocations and row-locks it
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormPaymentRepository) first(query *gorm.DB, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	err := query.
		Preload("Allocations", preloadAllocations).
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

// FindAllForTenant lists payments matching filter together with the total
// match count. Voided payments are hidden unless asked for.
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("tenant_id = ?", tenantID)
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if !filter.IncludeVoided {
		query = query.Where("is_voided = ?", false)
	}
	if filter.HasUnallocated {
		query = query.Where("unallocated_amount > 0")
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PaymentModel
	err := applyPage(query.Preload("Allocations", preloadAllocations), filter.Filter, PaymentSortFields, "payment_date").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toPayments(rows), total, nil
}

// FindByCustomer returns all payments of a customer, voided included
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("payment_date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPayments(rows), nil
}

// FindCreditsForUpdate returns live payments with unallocated funds, oldest
// payment date first, and row-locks them
func (r *GormPaymentRepository) FindCreditsForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Allocations", preloadAllocations).
		Where("tenant_id = ? AND customer_id = ? AND is_voided = ? AND unallocated_amount > 0", tenantID, customerID, false).
		Order("payment_date ASC, created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPayments(rows), nil
}

// Create inserts the payment header. Allocations are written separately.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error, "payment")
}

// SaveWithLock writes the header when the stored version still matches and
// bumps the version on success
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *finance.Payment) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", payment.TenantID, payment.ID, payment.Version).
		Updates(map[string]any{
			"unallocated_amount": payment.UnallocatedAmount,
			"reference_number":   payment.ReferenceNumber,
			"notes":              payment.Notes,
			"is_voided":          payment.IsVoided,
			"void_reason":        payment.VoidReason,
			"voided_at":          payment.VoidedAt,
			"voided_by":          payment.VoidedBy,
			"version":            payment.Version + 1,
			"updated_at":         payment.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "payment")
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("payment")
	}
	payment.Version++
	return nil
}

func toPayments(rows []models.PaymentModel) []finance.Payment {
	payments := make([]finance.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments
}

// GormAllocationRepository implements finance.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// Create inserts one allocation
func (r *GormAllocationRepository) Create(ctx context.Context, allocation *finance.PaymentAllocation) error {
	model := models.PaymentAllocationModelFromDomain(allocation)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "payment allocation")
}

// FindByPayment lists the allocations of one payment
func (r *GormAllocationRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]finance.PaymentAllocation, error) {
	return r.find(ctx, "tenant_id = ? AND payment_id = ?", tenantID, paymentID)
}

// FindByInvoice lists the allocations that settle one invoice
func (r *GormAllocationRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]finance.PaymentAllocation, error) {
	return r.find(ctx, "tenant_id = ? AND invoice_id = ?", tenantID, invoiceID)
}

func (r *GormAllocationRepository) find(ctx context.Context, where string, args ...any) ([]finance.PaymentAllocation, error) {
	var rows []models.PaymentAllocationModel
	if err := r.db.WithContext(ctx).Where(where, args...).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	allocations := make([]finance.PaymentAllocation, len(rows))
	for i := range rows {
		allocations[i] = rows[i].ToDomain()
	}
	return allocations, nil
}

// DeleteByPayment hard deletes every allocation of a payment
func (r *GormAllocationRepository) DeleteByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Delete(&models.PaymentAllocationModel{})
	return result.RowsAffected, result.Error
}

var (
	_ finance.PaymentRepository    = (*GormPaymentRepository)(nil)
	_ finance.AllocationRepository = (*GormAllocationRepository)(nil)
)
