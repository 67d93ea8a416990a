package handler

import (
	"context"

	financeapp "github.com/bizcms/backend/internal/application/finance"
	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/bizcms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService is the part of the payment application service used over HTTP
type PaymentService interface {
	RecordPayment(ctx context.Context, req financeapp.RecordPaymentRequest) (*financeapp.PaymentResponse, error)
	AllocatePayment(ctx context.Context, req financeapp.AllocatePaymentRequest) (*financeapp.AllocationResponse, error)
	VoidPayment(ctx context.Context, req financeapp.VoidPaymentRequest) (*financeapp.PaymentResponse, error)
	GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*financeapp.PaymentResponse, error)
	ListPayments(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (shared.Paginated[financeapp.PaymentResponse], error)
	ListAllocations(ctx context.Context, tenantID, paymentID uuid.UUID) ([]financeapp.AllocationResponse, error)
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	payments PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// AllocationRequest applies an amount to one invoice
type AllocationRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0" swaggertype:"string" example:"50.00"`
}

// RecordPaymentRequest records money received from a customer
//
//	@Description	Request body for recording a payment
type RecordPaymentRequest struct {
	CustomerID      uuid.UUID           `json:"customer_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount          decimal.Decimal     `json:"amount" binding:"gt=0" swaggertype:"string" example:"150.00"`
	PaymentMethod   string              `json:"payment_method" binding:"required,oneof=cash bank_transfer card check other" example:"bank_transfer"`
	ReferenceNumber string              `json:"reference_number" binding:"max=100" example:"TRX-88812"`
	Notes           string              `json:"notes" binding:"max=2000"`
	PaymentDate     string              `json:"payment_date" binding:"omitempty,datetime=2006-01-02" example:"2026-10-15"`
	Allocations     []AllocationRequest `json:"allocations" binding:"omitempty,dive"`
}

// VoidPaymentRequest voids a payment
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Cheque bounced"`
}

// PaymentListQuery filters payment listings
type PaymentListQuery struct {
	dto.ListRequest
	CustomerID     string `form:"customer_id" binding:"omitempty,uuid"`
	IncludeVoided  bool   `form:"include_voided"`
	HasUnallocated bool   `form:"has_unallocated"`
	FromDate       string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate         string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// Record godoc
//
//	@ID				recordPayment
//	@Summary		Record a customer payment
//	@Description	Stores the payment and applies the optional allocations in one transaction.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID		header		string					true	"Tenant ID"
//	@Param			Idempotency-Key	header		string					false	"Retry key"
//	@Param			request			body		RecordPaymentRequest	true	"Payment"
//	@Success		201				{object}	APIResponse[financeapp.PaymentResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Router			/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.CustomerID == uuid.Nil {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "customer_id is required")
		return
	}

	var allocations map[uuid.UUID]decimal.Decimal
	if len(req.Allocations) > 0 {
		allocations = make(map[uuid.UUID]decimal.Decimal, len(req.Allocations))
		for _, a := range req.Allocations {
			if a.InvoiceID == uuid.Nil {
				h.ErrorWithCode(c, dto.ErrCodeValidation, "allocation invoice_id is required")
				return
			}
			if _, dup := allocations[a.InvoiceID]; dup {
				h.ErrorWithCode(c, dto.ErrCodeValidation, "invoice listed twice in allocations: "+a.InvoiceID.String())
				return
			}
			allocations[a.InvoiceID] = a.Amount
		}
	}
	paymentDate, ok := h.dateField(c, "payment_date", req.PaymentDate)
	if !ok {
		return
	}

	resp, err := h.payments.RecordPayment(c.Request.Context(), financeapp.RecordPaymentRequest{
		TenantID:       tenantID(c),
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		Method:         finance.PaymentMethod(req.PaymentMethod),
		Reference:      req.ReferenceNumber,
		Notes:          req.Notes,
		PaymentDate:    paymentDate,
		Allocations:    allocations,
		ActorID:        actorID(c),
		IdempotencyKey: c.GetString(middleware.IdempotencyKeyKey),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Allocate godoc
//
//	@ID				allocatePayment
//	@Summary		Apply unallocated payment funds to an invoice
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Payment ID"
//	@Param			request	body		AllocationRequest	true	"Allocation"
//	@Success		201		{object}	APIResponse[financeapp.AllocationResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/payments/{id}/allocations [post]
func (h *PaymentHandler) Allocate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req AllocationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.InvoiceID == uuid.Nil {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "invoice_id is required")
		return
	}
	resp, err := h.payments.AllocatePayment(c.Request.Context(), financeapp.AllocatePaymentRequest{
		TenantID:  tenantID(c),
		PaymentID: id,
		InvoiceID: req.InvoiceID,
		Amount:    req.Amount,
		ActorID:   actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListAllocations godoc
//
//	@ID				listPaymentAllocations
//	@Summary		List the live allocations of a payment
//	@Tags			payments
//	@Produce		json
//	@Param			id	path		string	true	"Payment ID"
//	@Success		200	{object}	APIResponse[[]financeapp.AllocationResponse]
//	@Router			/payments/{id}/allocations [get]
func (h *PaymentHandler) ListAllocations(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.payments.ListAllocations(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Void godoc
//
//	@ID				voidPayment
//	@Summary		Void a payment and reverse its allocations
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Payment ID"
//	@Param			request	body		VoidPaymentRequest	true	"Reason"
//	@Success		200		{object}	APIResponse[financeapp.PaymentResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/payments/{id}/void [post]
func (h *PaymentHandler) Void(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req VoidPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.payments.VoidPayment(c.Request.Context(), financeapp.VoidPaymentRequest{
		TenantID:  tenantID(c),
		PaymentID: id,
		Reason:    req.Reason,
		ActorID:   actorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get godoc
//
//	@ID				getPayment
//	@Summary		Get a payment with its allocations
//	@Tags			payments
//	@Produce		json
//	@Param			id	path		string	true	"Payment ID"
//	@Success		200	{object}	APIResponse[financeapp.PaymentResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.payments.GetPayment(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID				listPayments
//	@Summary		List payments
//	@Tags			payments
//	@Produce		json
//	@Param			customer_id		query		string	false	"Customer ID"
//	@Param			include_voided	query		bool	false	"Include voided payments"
//	@Param			has_unallocated	query		bool	false	"Only payments with unallocated funds"
//	@Success		200				{object}	APIResponse[[]financeapp.PaymentResponse]
//	@Router			/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var q PaymentListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := finance.PaymentFilter{
		Filter:         q.Filter(),
		IncludeVoided:  q.IncludeVoided,
		HasUnallocated: q.HasUnallocated,
	}
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

	page, err := h.payments.ListPayments(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}
