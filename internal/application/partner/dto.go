package partner

import (
	"time"

	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Code  string `json:"code" binding:"required,min=1,max=50"`
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=200"`
}

// CustomerResponse represents a customer with its derived balances
type CustomerResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Email              string          `json:"email,omitempty"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	CreditBalance      decimal.Decimal `json:"credit_balance"`
	BalancesUpdatedAt  *time.Time      `json:"balances_updated_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// ToCustomerResponse converts a domain Customer
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                 c.ID,
		TenantID:           c.TenantID,
		Code:               c.Code,
		Name:               c.Name,
		Email:              c.Email,
		OutstandingBalance: c.OutstandingBalance,
		CreditBalance:      c.CreditBalance,
		BalancesUpdatedAt:  c.BalancesUpdatedAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
		Version:            c.Version,
	}
}
