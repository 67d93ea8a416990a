package models

import (
	"time"

	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	TenantAggregateModel
	Code               string          `gorm:"type:varchar(50);not null;index"`
	Name               string          `gorm:"type:varchar(200);not null"`
	Email              string          `gorm:"type:varchar(200);index"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditBalance      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BalancesUpdatedAt  *time.Time
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	c := &partner.Customer{
		Code:               m.Code,
		Name:               m.Name,
		Email:              m.Email,
		OutstandingBalance: m.OutstandingBalance,
		CreditBalance:      m.CreditBalance,
		BalancesUpdatedAt:  m.BalancesUpdatedAt,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Email = c.Email
	m.OutstandingBalance = c.OutstandingBalance
	m.CreditBalance = c.CreditBalance
	m.BalancesUpdatedAt = c.BalancesUpdatedAt
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
