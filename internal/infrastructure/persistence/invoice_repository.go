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

// GormInvoiceRepository implements finance.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// FindByIDForTenant loads an invoice with its items
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	return r.first(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads an invoice with its items and row-locks the header
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormInvoiceRepository) first(query *gorm.DB, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	err := query.
		Preload("Items", preloadItems).
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

// FindAllForTenant lists invoice headers matching filter together with the
// total match count
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID)
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.FromDate != nil {
		query = query.Where("invoice_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("invoice_date <= ?", *filter.ToDate)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InvoiceModel
	if err := applyPage(query, filter.Filter, InvoiceSortFields, "invoice_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]finance.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, total, nil
}

// FindByCustomer returns invoice headers of one customer, oldest first
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("invoice_date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	invoices := make([]finance.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// Create inserts the invoice and its items
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *finance.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "invoice")
}

// SaveWithLock writes the header when the stored version still matches
// and bumps the version on success. Items are untouched.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", invoice.TenantID, invoice.ID, invoice.Version).
		Updates(map[string]any{
			"title":        model.Title,
			"invoice_date": model.InvoiceDate,
			"due_date":     model.DueDate,
			"subtotal":     model.Subtotal,
			"tax_rate":     model.TaxRate,
			"tax_amount":   model.TaxAmount,
			"total_amount": model.TotalAmount,
			"amount_paid":  model.AmountPaid,
			"status":       model.Status,
			"notes":        model.Notes,
			"sent_at":      model.SentAt,
			"cancelled_at": model.CancelledAt,
			"voided_at":    model.VoidedAt,
			"version":      invoice.Version + 1,
			"updated_at":   invoice.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "invoice")
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("invoice")
	}
	invoice.Version++
	return nil
}

// ReplaceItems deletes every stored item of the invoice and inserts the
// current set
func (r *GormInvoiceRepository) ReplaceItems(ctx context.Context, invoice *finance.Invoice) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	rows := models.InvoiceItemModelsFromDomain(invoice.Items)
	if len(rows) == 0 {
		return nil
	}
	return translateError(db.Create(&rows).Error, "invoice item")
}

var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
