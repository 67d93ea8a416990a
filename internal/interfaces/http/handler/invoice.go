package handler

import (
	"context"

	financeapp "github.com/bizcms/backend/internal/application/finance"
	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService is the part of the invoice application service used over HTTP
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req financeapp.CreateInvoiceRequest) (*financeapp.InvoiceResponse, error)
	UpdateDraft(ctx context.Context, req financeapp.UpdateInvoiceRequest) (*financeapp.InvoiceResponse, error)
	SendInvoice(ctx context.Context, req financeapp.InvoiceTransitionRequest) (*financeapp.InvoiceResponse, error)
	CancelInvoice(ctx context.Context, req financeapp.InvoiceTransitionRequest) (*financeapp.InvoiceResponse, error)
	VoidInvoice(ctx context.Context, req financeapp.InvoiceTransitionRequest) (*financeapp.InvoiceResponse, error)
	GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*financeapp.InvoiceResponse, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) (shared.Paginated[financeapp.InvoiceResponse], error)
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// InvoiceItemRequest is one invoice line
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,max=500" example:"Consulting hours"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0" swaggertype:"string" example:"4"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"gte=0" swaggertype:"string" example:"110.00"`
}

// InvoiceRequest is the editable content of an invoice
//
//	@Description	Request body for creating or updating a draft invoice
type InvoiceRequest struct {
	CustomerID  uuid.UUID            `json:"customer_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title       string               `json:"title" binding:"max=200" example:"October services"`
	InvoiceDate string               `json:"invoice_date" binding:"required,datetime=2006-01-02" example:"2026-10-01"`
	DueDate     string               `json:"due_date" binding:"omitempty,datetime=2006-01-02" example:"2026-10-31"`
	TaxRate     decimal.Decimal      `json:"tax_rate" binding:"gte=0" swaggertype:"string" example:"0.08"`
	Notes       string               `json:"notes" binding:"max=2000"`
	Items       []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReasonRequest carries the reason of a cancel or void
type ReasonRequest struct {
	Reason string `json:"reason" binding:"max=500" example:"Issued twice"`
}

// InvoiceListQuery filters invoice listings
type InvoiceListQuery struct {
	dto.ListRequest
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	// Status is a comma separated list of statuses
	Status   string `form:"status"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

func (r InvoiceRequest) items() []financeapp.InvoiceItemRequest {
	out := make([]financeapp.InvoiceItemRequest, len(r.Items))
	for i, it := range r.Items {
		out[i] = financeapp.InvoiceItemRequest{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return out
}

// Create godoc
//
//	@ID				createInvoice
//	@Summary		Create a draft invoice
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string			true	"Tenant ID"
//	@Param			request		body		InvoiceRequest	true	"Invoice content"
//	@Success		201			{object}	APIResponse[financeapp.InvoiceResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.CustomerID == uuid.Nil {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "customer_id is required")
		return
	}
	invoiceDate, ok := h.dateField(c, "invoice_date", req.InvoiceDate)
	if !ok {
		return
	}
	dueDate, ok := h.dateField(c, "due_date", req.DueDate)
	if !ok {
		return
	}

	resp, err := h.invoices.CreateInvoice(c.Request.Context(), financeapp.CreateInvoiceRequest{
		TenantID:    tenantID(c),
		CustomerID:  req.CustomerID,
		Title:       req.Title,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		TaxRate:     req.TaxRate,
		Notes:       req.Notes,
		Items:       req.items(),
		ActorID:     actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
//
//	@ID				updateInvoice
//	@Summary		Replace the content of a draft invoice
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Invoice ID"
//	@Param			request	body		InvoiceRequest	true	"Invoice content"
//	@Success		200		{object}	APIResponse[financeapp.InvoiceResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoiceDate, ok := h.dateField(c, "invoice_date", req.InvoiceDate)
	if !ok {
		return
	}
	dueDate, ok := h.dateField(c, "due_date", req.DueDate)
	if !ok {
		return
	}

	resp, err := h.invoices.UpdateDraft(c.Request.Context(), financeapp.UpdateInvoiceRequest{
		TenantID:    tenantID(c),
		InvoiceID:   id,
		Title:       req.Title,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		TaxRate:     req.TaxRate,
		Notes:       req.Notes,
		Items:       req.items(),
		ActorID:     actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get godoc
//
//	@ID				getInvoice
//	@Summary		Get an invoice with its items
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		string	true	"Invoice ID"
//	@Success		200	{object}	APIResponse[financeapp.InvoiceResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.invoices.GetInvoice(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID				listInvoices
//	@Summary		List invoices
//	@Tags			invoices
//	@Produce		json
//	@Param			customer_id	query		string	false	"Customer ID"
//	@Param			status		query		string	false	"Comma separated statuses"
//	@Param			page		query		int		false	"Page"
//	@Param			page_size	query		int		false	"Page size"
//	@Success		200			{object}	APIResponse[[]financeapp.InvoiceResponse]
//	@Router			/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var q InvoiceListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := finance.InvoiceFilter{Filter: q.Filter()}
	var ok bool
	if filter.CustomerID, ok = h.uuidFilter(c, "customer_id", q.CustomerID); !ok {
		return
	}
	if filter.FromDate, ok = h.dateFilter(c, "from_date", q.FromDate); !ok {
		return
	}
	if filter.ToDate, ok = h.dateFilter(c, "to_date", q.ToDate); !ok {
		return
	}
	for _, s := range splitList(q.Status) {
		status := finance.InvoiceStatus(s)
		if !status.IsValid() {
			h.ErrorWithCode(c, dto.ErrCodeValidation, "unknown invoice status: "+s)
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	page, err := h.invoices.ListInvoices(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Send godoc
//
//	@ID				sendInvoice
//	@Summary		Send a draft invoice
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		string	true	"Invoice ID"
//	@Success		200	{object}	APIResponse[financeapp.InvoiceResponse]
//	@Failure		422	{object}	ErrorResponse
//	@Router			/invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.transition(c, false, h.invoices.SendInvoice)
}

// Cancel godoc
//
//	@ID				cancelInvoice
//	@Summary		Cancel an unpaid invoice
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Invoice ID"
//	@Param			request	body		ReasonRequest	false	"Reason"
//	@Success		200		{object}	APIResponse[financeapp.InvoiceResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.transition(c, true, h.invoices.CancelInvoice)
}

// Void godoc
//
//	@ID				voidInvoice
//	@Summary		Void a paid invoice
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Invoice ID"
//	@Param			request	body		ReasonRequest	false	"Reason"
//	@Success		200		{object}	APIResponse[financeapp.InvoiceResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
	h.transition(c, true, h.invoices.VoidInvoice)
}

func (h *InvoiceHandler) transition(
	c *gin.Context,
	withReason bool,
	do func(context.Context, financeapp.InvoiceTransitionRequest) (*financeapp.InvoiceResponse, error),
) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body ReasonRequest
	if withReason && c.Request.ContentLength != 0 {
		if !h.bindJSON(c, &body) {
			return
		}
	}
	resp, err := do(c.Request.Context(), financeapp.InvoiceTransitionRequest{
		TenantID:  tenantID(c),
		InvoiceID: id,
		Reason:    body.Reason,
		ActorID:   actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
