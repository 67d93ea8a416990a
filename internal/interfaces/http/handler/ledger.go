package handler

import (
	"context"

	ledgerapp "github.com/bizcms/backend/internal/application/ledger"
	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService is the chart of accounts service used over HTTP
type LedgerService interface {
	InitializeChartOfAccounts(ctx context.Context, tenantID uuid.UUID) (int, error)
	CreateAccount(ctx context.Context, req ledgerapp.CreateAccountRequest) (*ledgerapp.AccountResponse, error)
	ListAccounts(ctx context.Context, tenantID uuid.UUID, filter ledger.AccountFilter) ([]ledgerapp.AccountResponse, error)
	CreateJournalEntry(ctx context.Context, req ledgerapp.CreateJournalEntryRequest) (*ledgerapp.JournalEntryResponse, error)
	GetJournalEntry(ctx context.Context, tenantID, entryID uuid.UUID) (*ledgerapp.JournalEntryResponse, error)
	PostJournalEntry(ctx context.Context, tenantID, entryID, actorID uuid.UUID) (bool, error)
	GetTrialBalance(ctx context.Context, tenantID uuid.UUID) (*ledger.TrialBalance, error)
}

// LedgerHandler handles chart of accounts and journal endpoints
type LedgerHandler struct {
	BaseHandler
	ledger LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(svc LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: svc}
}

// CreateAccountRequest adds a custom account
type CreateAccountRequest struct {
	Code     string `json:"code" binding:"required,max=20" example:"6100"`
	Name     string `json:"name" binding:"required,max=200" example:"Travel"`
	Type     string `json:"type" binding:"required,oneof=asset liability equity income expense" example:"expense"`
	Category string `json:"category" binding:"max=100" example:"operating_expense"`
}

// AccountListQuery filters account listings
type AccountListQuery struct {
	Type       string `form:"type" binding:"omitempty,oneof=asset liability equity income expense"`
	ActiveOnly bool   `form:"active_only"`
}

// JournalLineRequest is one journal line
type JournalLineRequest struct {
	AccountID    uuid.UUID       `json:"account_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DebitAmount  decimal.Decimal `json:"debit_amount" binding:"gte=0" swaggertype:"string" example:"100.00"`
	CreditAmount decimal.Decimal `json:"credit_amount" binding:"gte=0" swaggertype:"string" example:"0"`
	Description  string          `json:"description" binding:"max=500"`
}

// CreateJournalEntryRequest creates an unposted journal entry
//
//	@Description	Request body for a journal entry; debits must equal credits
type CreateJournalEntryRequest struct {
	EntryDate   string               `json:"entry_date" binding:"omitempty,datetime=2006-01-02" example:"2026-10-15"`
	Description string               `json:"description" binding:"max=500" example:"Office rent"`
	Reference   string               `json:"reference" binding:"max=100"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// InitializeAccounts godoc
//
//	@ID				initializeChartOfAccounts
//	@Summary		Create the standard chart of accounts
//	@Description	Idempotent; accounts that already exist are kept.
//	@Tags			ledger
//	@Produce		json
//	@Success		200	{object}	APIResponse[InitializedData]
//	@Router			/ledger/accounts/initialize [post]
func (h *LedgerHandler) InitializeAccounts(c *gin.Context) {
	created, err := h.ledger.InitializeChartOfAccounts(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, InitializedData{Created: created})
}

// CreateAccount godoc
//
//	@ID				createAccount
//	@Summary		Add a custom account
//	@Tags			ledger
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateAccountRequest	true	"Account"
//	@Success		201		{object}	APIResponse[ledgerapp.AccountResponse]
//	@Failure		409		{object}	ErrorResponse
//	@Router			/ledger/accounts [post]
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.ledger.CreateAccount(c.Request.Context(), ledgerapp.CreateAccountRequest{
		TenantID: tenantID(c),
		Code:     req.Code,
		Name:     req.Name,
		Type:     ledger.AccountType(req.Type),
		Category: req.Category,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListAccounts godoc
//
//	@ID				listAccounts
//	@Summary		List the chart of accounts ordered by code
//	@Tags			ledger
//	@Produce		json
//	@Param			type		query		string	false	"Account type"
//	@Param			active_only	query		bool	false	"Only active accounts"
//	@Success		200			{object}	APIResponse[[]ledgerapp.AccountResponse]
//	@Router			/ledger/accounts [get]
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	var q AccountListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := ledger.AccountFilter{ActiveOnly: q.ActiveOnly}
	if q.Type != "" {
		t := ledger.AccountType(q.Type)
		filter.Type = &t
	}
	accounts, err := h.ledger.ListAccounts(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// CreateJournalEntry godoc
//
//	@ID				createJournalEntry
//	@Summary		Create an unposted journal entry
//	@Tags			ledger
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateJournalEntryRequest	true	"Entry"
//	@Success		201		{object}	APIResponse[ledgerapp.JournalEntryResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/ledger/journal-entries [post]
func (h *LedgerHandler) CreateJournalEntry(c *gin.Context) {
	var req CreateJournalEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lines := make([]ledgerapp.JournalLineRequest, len(req.Lines))
	for i, l := range req.Lines {
		if l.AccountID == uuid.Nil {
			h.ErrorWithCode(c, dto.ErrCodeValidation, "every line needs an account_id")
			return
		}
		lines[i] = ledgerapp.JournalLineRequest{
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
		}
	}
	entryDate, ok := h.dateField(c, "entry_date", req.EntryDate)
	if !ok {
		return
	}

	resp, err := h.ledger.CreateJournalEntry(c.Request.Context(), ledgerapp.CreateJournalEntryRequest{
		TenantID:    tenantID(c),
		EntryDate:   entryDate,
		Description: req.Description,
		Reference:   req.Reference,
		Lines:       lines,
		ActorID:     actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetJournalEntry godoc
//
//	@ID				getJournalEntry
//	@Summary		Get a journal entry with its lines
//	@Tags			ledger
//	@Produce		json
//	@Param			id	path		string	true	"Journal entry ID"
//	@Success		200	{object}	APIResponse[ledgerapp.JournalEntryResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/ledger/journal-entries/{id} [get]
func (h *LedgerHandler) GetJournalEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.ledger.GetJournalEntry(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PostJournalEntry godoc
//
//	@ID				postJournalEntry
//	@Summary		Post a journal entry to account balances
//	@Description	Posting an already posted entry succeeds with posted=false.
//	@Tags			ledger
//	@Produce		json
//	@Param			id	path		string	true	"Journal entry ID"
//	@Success		200	{object}	APIResponse[PostedData]
//	@Failure		422	{object}	ErrorResponse
//	@Router			/ledger/journal-entries/{id}/post [post]
func (h *LedgerHandler) PostJournalEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	posted, err := h.ledger.PostJournalEntry(c.Request.Context(), tenantID(c), id, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PostedData{Posted: posted})
}

// TrialBalance godoc
//
//	@ID				getTrialBalance
//	@Summary		Trial balance over active accounts
//	@Tags			ledger
//	@Produce		json
//	@Success		200	{object}	APIResponse[ledger.TrialBalance]
//	@Router			/ledger/trial-balance [get]
func (h *LedgerHandler) TrialBalance(c *gin.Context) {
	tb, err := h.ledger.GetTrialBalance(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tb)
}
