package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/bizcms/backend/internal/application/event"
	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService manages the invoice lifecycle
type InvoiceService struct {
	scope      TransactionScope
	reader     TransactionalRepositories
	balances   *BalanceService
	dispatcher *event.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	scope TransactionScope,
	reader TransactionalRepositories,
	balances *BalanceService,
	dispatcher *event.Dispatcher,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = event.NewDispatcher(logger)
	}
	return &InvoiceService{
		scope:      scope,
		reader:     reader,
		balances:   balances,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateInvoice creates a draft invoice numbered in the current year's series
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create",
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, "create_invoice", err)
	}()

	draft := toDraft(req.Title, req.InvoiceDate, req.DueDate, req.TaxRate, req.Notes, req.Items)
	year := s.now().Year()

	var (
		invoice  *finance.Invoice
		customer *partner.Customer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := lockCustomer(ctx, repos, req.TenantID, req.CustomerID); err != nil {
			return err
		}
		seq, err := repos.Numbers().Next(ctx, shared.SequenceKey{
			TenantID: req.TenantID,
			Prefix:   finance.InvoiceNumberPrefix,
			Period:   year,
		})
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		invoice, err = finance.NewInvoice(req.TenantID, req.CustomerID, finance.FormatInvoiceNumber(year, seq), draft, req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.Invoices().Create(ctx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		customer, err = s.balances.Recompute(ctx, repos, req.TenantID, req.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, shared.CollectEvents(invoice, customer))
	s.dispatcher.Audit(ctx, shared.AuditEntry{
		TenantID:   req.TenantID,
		UserID:     req.ActorID,
		EntityType: entityInvoice,
		EntityID:   invoice.ID,
		Action:     shared.AuditActionCreate,
		NewValues: map[string]any{
			"invoice_number": invoice.InvoiceNumber,
			"total_amount":   invoice.TotalAmount.StringFixed(2),
			"items":          len(invoice.Items),
		},
	})
	s.logger.Info("Invoice created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total_amount", invoice.TotalAmount.StringFixed(2)),
	)

	out := ToInvoiceResponse(invoice)
	return &out, nil
}

// UpdateDraft replaces the header and the whole item set of a draft invoice
func (s *InvoiceService) UpdateDraft(ctx context.Context, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	draft := toDraft(req.Title, req.InvoiceDate, req.DueDate, req.TaxRate, req.Notes, req.Items)
	var oldTotal string
	return s.mutate(ctx, "update", req.TenantID, req.InvoiceID, req.ActorID, shared.AuditActionUpdate,
		func(ctx context.Context, repos TransactionalRepositories, inv *finance.Invoice) error {
			oldTotal = inv.TotalAmount.StringFixed(2)
			if err := inv.UpdateDraft(draft); err != nil {
				return err
			}
			if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
				return err
			}
			return repos.Invoices().ReplaceItems(ctx, inv)
		},
		func(inv *finance.Invoice) (map[string]any, map[string]any) {
			return map[string]any{"total_amount": oldTotal},
				map[string]any{"total_amount": inv.TotalAmount.StringFixed(2), "items": len(inv.Items)}
		},
	)
}

// SendInvoice issues a draft to the customer
func (s *InvoiceService) SendInvoice(ctx context.Context, req InvoiceTransitionRequest) (*InvoiceResponse, error) {
	return s.transition(ctx, "send", req, shared.AuditActionSend, func(inv *finance.Invoice) error {
		return inv.Send()
	})
}

// CancelInvoice withdraws an unpaid invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, req InvoiceTransitionRequest) (*InvoiceResponse, error) {
	return s.transition(ctx, "cancel", req, shared.AuditActionCancel, func(inv *finance.Invoice) error {
		return inv.Cancel(req.Reason)
	})
}

// VoidInvoice retires a paid invoice
func (s *InvoiceService) VoidInvoice(ctx context.Context, req InvoiceTransitionRequest) (*InvoiceResponse, error) {
	return s.transition(ctx, "void", req, shared.AuditActionVoid, func(inv *finance.Invoice) error {
		return inv.Void(req.Reason)
	})
}

// GetInvoice returns one invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.reader.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if inv == nil {
		return nil, shared.NewNotFoundError(entityInvoice, invoiceID)
	}
	out := ToInvoiceResponse(inv)
	return &out, nil
}

// ListInvoices returns a page of invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) (shared.Paginated[InvoiceResponse], error) {
	invoices, total, err := s.reader.Invoices().FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, fmt.Errorf("failed to list invoices: %w", err)
	}
	items := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = ToInvoiceResponse(&invoices[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *InvoiceService) transition(
	ctx context.Context,
	op string,
	req InvoiceTransitionRequest,
	action shared.AuditAction,
	apply func(inv *finance.Invoice) error,
) (*InvoiceResponse, error) {
	var from finance.InvoiceStatus
	return s.mutate(ctx, op, req.TenantID, req.InvoiceID, req.ActorID, action,
		func(ctx context.Context, repos TransactionalRepositories, inv *finance.Invoice) error {
			from = inv.Status
			if err := apply(inv); err != nil {
				return err
			}
			return repos.Invoices().SaveWithLock(ctx, inv)
		},
		func(inv *finance.Invoice) (map[string]any, map[string]any) {
			newValues := map[string]any{"status": string(inv.Status)}
			if req.Reason != "" {
				newValues["reason"] = req.Reason
			}
			return map[string]any{"status": string(from)}, newValues
		},
	)
}

// mutate locks customer then invoice, applies change and recomputes the
// customer's balances in one transaction.
func (s *InvoiceService) mutate(
	ctx context.Context,
	op string,
	tenantID, invoiceID, actorID uuid.UUID,
	action shared.AuditAction,
	change func(ctx context.Context, repos TransactionalRepositories, inv *finance.Invoice) error,
	values func(inv *finance.Invoice) (oldValues, newValues map[string]any),
) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", op,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, op+"_invoice", err)
	}()

	current, err := s.reader.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if current == nil {
		return nil, shared.NewNotFoundError(entityInvoice, invoiceID)
	}

	var (
		invoice  *finance.Invoice
		customer *partner.Customer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := lockCustomer(ctx, repos, tenantID, current.CustomerID); err != nil {
			return err
		}
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to lock invoice: %w", err)
		}
		if inv == nil {
			return shared.NewNotFoundError(entityInvoice, invoiceID)
		}
		if err := change(ctx, repos, inv); err != nil {
			return err
		}
		invoice = inv
		customer, err = s.balances.Recompute(ctx, repos, tenantID, inv.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, shared.CollectEvents(invoice, customer))
	oldValues, newValues := values(invoice)
	s.dispatcher.Audit(ctx, shared.AuditEntry{
		TenantID:   tenantID,
		UserID:     actorID,
		EntityType: entityInvoice,
		EntityID:   invoice.ID,
		Action:     action,
		OldValues:  oldValues,
		NewValues:  newValues,
	})
	s.logger.Info("Invoice changed",
		zap.String("operation", op),
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("status", string(invoice.Status)),
	)

	out := ToInvoiceResponse(invoice)
	return &out, nil
}
