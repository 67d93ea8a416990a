package handler

import (
	"context"

	financeapp "github.com/bizcms/backend/internal/application/finance"
	partnerapp "github.com/bizcms/backend/internal/application/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerService is the customer master data used over HTTP
type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error)
	GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*partnerapp.CustomerResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[partnerapp.CustomerResponse], error)
}

// CreditService applies customer credit to invoices
type CreditService interface {
	ApplyCreditToInvoice(ctx context.Context, req financeapp.ApplyCreditRequest) (*financeapp.ApplyCreditResponse, error)
}

// BalanceService recomputes derived customer balances
type BalanceService interface {
	RecalculateCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*financeapp.CustomerBalanceResponse, bool, error)
	RecalculateAll(ctx context.Context, tenantID uuid.UUID) (*financeapp.RecalculateResult, error)
}

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customers CustomerService
	credit    CreditService
	balances  BalanceService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers CustomerService, credit CreditService, balances BalanceService) *CustomerHandler {
	return &CustomerHandler{customers: customers, credit: credit, balances: balances}
}

// ApplyCreditRequest settles an invoice from the customer's credit
type ApplyCreditRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0" swaggertype:"string" example:"40.00"`
}

// RecalculatedData is a recomputed balance and whether it moved
type RecalculatedData struct {
	Changed bool                                `json:"changed"`
	Balance *financeapp.CustomerBalanceResponse `json:"balance"`
}

// Create godoc
//
//	@ID				createCustomer
//	@Summary		Create a customer
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		partnerapp.CreateCustomerRequest	true	"Customer"
//	@Success		201		{object}	APIResponse[partnerapp.CustomerResponse]
//	@Failure		409		{object}	ErrorResponse
//	@Router			/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.customers.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
//
//	@ID				getCustomer
//	@Summary		Get a customer with its balances
//	@Tags			customers
//	@Produce		json
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	APIResponse[partnerapp.CustomerResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.customers.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID				listCustomers
//	@Summary		List customers
//	@Tags			customers
//	@Produce		json
//	@Param			page		query		int	false	"Page"
//	@Param			page_size	query		int	false	"Page size"
//	@Success		200			{object}	APIResponse[[]partnerapp.CustomerResponse]
//	@Router			/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var q dto.ListRequest
	if !h.bindQuery(c, &q) {
		return
	}
	filter := q.Filter()
	if q.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "code", "asc"
	}
	page, err := h.customers.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// ApplyCredit godoc
//
//	@ID				applyCustomerCredit
//	@Summary		Settle an invoice from the customer's credit balance
//	@Description	Draws on the oldest unallocated payments first.
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Customer ID"
//	@Param			request	body		ApplyCreditRequest	true	"Invoice and amount"
//	@Success		200		{object}	APIResponse[financeapp.ApplyCreditResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/customers/{id}/apply-credit [post]
func (h *CustomerHandler) ApplyCredit(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ApplyCreditRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.InvoiceID == uuid.Nil {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "invoice_id is required")
		return
	}
	resp, err := h.credit.ApplyCreditToInvoice(c.Request.Context(), financeapp.ApplyCreditRequest{
		TenantID:   tenantID(c),
		CustomerID: id,
		InvoiceID:  req.InvoiceID,
		Amount:     req.Amount,
		ActorID:    actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Recalculate godoc
//
//	@ID				recalculateCustomerBalance
//	@Summary		Recompute a customer's derived balances
//	@Tags			customers
//	@Produce		json
//	@Param			id	path		string	true	"Customer ID"
//	@Success		200	{object}	APIResponse[RecalculatedData]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/customers/{id}/recalculate [post]
func (h *CustomerHandler) Recalculate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	balance, changed, err := h.balances.RecalculateCustomer(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RecalculatedData{Changed: changed, Balance: balance})
}

// RecalculateAll godoc
//
//	@ID				recalculateAllBalances
//	@Summary		Recompute the balances of every customer of the tenant
//	@Tags			customers
//	@Produce		json
//	@Success		200	{object}	APIResponse[financeapp.RecalculateResult]
//	@Router			/customers/recalculate [post]
func (h *CustomerHandler) RecalculateAll(c *gin.Context) {
	result, err := h.balances.RecalculateAll(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
