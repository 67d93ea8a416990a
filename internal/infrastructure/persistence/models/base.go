package models

import (
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the id and timestamp columns every table has
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity copies identity and timestamps
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// TenantAggregateModel provides common persistence fields for tenant-scoped aggregate roots.
// It extends AggregateModel with tenant ID and creator info.
type TenantAggregateModel struct {
	AggregateModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainTenantAggregateRoot populates TenantAggregateModel from domain TenantAggregateRoot
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TenantID = t.TenantID
	m.CreatedBy = t.CreatedBy
}

// PopulateTenantAggregateRoot populates a domain TenantAggregateRoot from persistence model
func (m *TenantAggregateModel) PopulateTenantAggregateRoot(t *shared.TenantAggregateRoot) {
	t.BaseAggregateRoot.BaseEntity.ID = m.ID
	t.BaseAggregateRoot.BaseEntity.CreatedAt = m.CreatedAt
	t.BaseAggregateRoot.BaseEntity.UpdatedAt = m.UpdatedAt
	t.BaseAggregateRoot.Version = m.Version
	t.TenantID = m.TenantID
	t.CreatedBy = m.CreatedBy
}

// All lists every model in dependency order. Unique and foreign key
// constraints are owned by the SQL migrations, so AutoMigrate on these
// models is only suitable for throwaway test databases.
func All() []any {
	return []any{
		&CustomerModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&PaymentModel{},
		&PaymentAllocationModel{},
		&AccountModel{},
		&JournalEntryModel{},
		&JournalLineModel{},
		&NumberSequenceModel{},
	}
}
