package models

import (
	"time"

	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is one row of a tenant's chart of accounts.
type AccountModel struct {
	TenantAggregateModel
	Code           string             `gorm:"type:varchar(20);not null;index"`
	Name           string             `gorm:"type:varchar(200);not null"`
	Type           ledger.AccountType `gorm:"type:varchar(20);not null;index"`
	Category       string             `gorm:"type:varchar(100)"`
	CurrentBalance decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	IsSystem       bool               `gorm:"not null;default:false"`
	IsActive       bool               `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *ledger.Account {
	a := &ledger.Account{
		Code:           m.Code,
		Name:           m.Name,
		Type:           m.Type,
		Category:       m.Category,
		CurrentBalance: m.CurrentBalance,
		IsSystem:       m.IsSystem,
		IsActive:       m.IsActive,
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.Category = a.Category
	m.CurrentBalance = a.CurrentBalance
	m.IsSystem = a.IsSystem
	m.IsActive = a.IsActive
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// JournalEntryModel is the header of a journal entry.
type JournalEntryModel struct {
	TenantAggregateModel
	EntryNumber string    `gorm:"type:varchar(50);not null;index"`
	EntryDate   time.Time `gorm:"type:date;not null;index"`
	Description string    `gorm:"type:varchar(500)"`
	Reference   string    `gorm:"type:varchar(100)"`
	IsPosted    bool      `gorm:"not null;default:false;index"`
	PostedAt    *time.Time
	PostedBy    *uuid.UUID         `gorm:"type:uuid"`
	Lines       []JournalLineModel `gorm:"foreignKey:JournalEntryID;references:ID"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry.
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	e := &ledger.JournalEntry{
		EntryNumber: m.EntryNumber,
		EntryDate:   m.EntryDate,
		Description: m.Description,
		Reference:   m.Reference,
		IsPosted:    m.IsPosted,
		PostedAt:    m.PostedAt,
		PostedBy:    m.PostedBy,
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	if len(m.Lines) > 0 {
		e.Lines = make([]ledger.JournalLine, len(m.Lines))
		for i := range m.Lines {
			e.Lines[i] = m.Lines[i].ToDomain()
		}
	}
	return e
}

// FromDomain populates the persistence model from a domain JournalEntry.
func (m *JournalEntryModel) FromDomain(e *ledger.JournalEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.EntryNumber = e.EntryNumber
	m.EntryDate = e.EntryDate
	m.Description = e.Description
	m.Reference = e.Reference
	m.IsPosted = e.IsPosted
	m.PostedAt = e.PostedAt
	m.PostedBy = e.PostedBy
	m.Lines = nil
	for _, l := range e.Lines {
		m.Lines = append(m.Lines, JournalLineModel{
			ID:             l.ID,
			JournalEntryID: l.JournalEntryID,
			AccountID:      l.AccountID,
			DebitAmount:    l.DebitAmount,
			CreditAmount:   l.CreditAmount,
			Description:    l.Description,
			LineNo:         l.LineNo,
		})
	}
}

// JournalEntryModelFromDomain creates a new persistence model from a domain JournalEntry.
func JournalEntryModelFromDomain(e *ledger.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{}
	m.FromDomain(e)
	return m
}

// JournalLineModel is one debit or credit of an entry.
type JournalLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	DebitAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description    string          `gorm:"type:varchar(500)"`
	LineNo         int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "journal_lines"
}

// ToDomain converts the persistence model to a domain JournalLine.
func (m *JournalLineModel) ToDomain() ledger.JournalLine {
	return ledger.JournalLine{
		ID:             m.ID,
		JournalEntryID: m.JournalEntryID,
		AccountID:      m.AccountID,
		DebitAmount:    m.DebitAmount,
		CreditAmount:   m.CreditAmount,
		Description:    m.Description,
		LineNo:         m.LineNo,
	}
}
