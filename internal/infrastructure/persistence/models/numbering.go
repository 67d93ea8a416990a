package models

import (
	"time"

	"github.com/google/uuid"
)

// NumberSequenceModel holds the last value handed out for one numbering series.
type NumberSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix    string    `gorm:"type:varchar(20);primaryKey"`
	Period    int       `gorm:"primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
