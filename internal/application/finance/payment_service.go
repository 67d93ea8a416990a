package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bizcms/backend/internal/application/event"
	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/domain/shared/valueobject"
	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Entity names used in errors and audit entries
const (
	entityPayment  = "payment"
	entityInvoice  = "invoice"
	entityCustomer = "customer"
)

// PaymentService records payments and moves money between payments and invoices.
type PaymentService struct {
	scope          TransactionScope
	reader         TransactionalRepositories
	balances       *BalanceService
	dispatcher     *event.Dispatcher
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// PaymentServiceOption configures a PaymentService
type PaymentServiceOption func(*PaymentService)

// WithIdempotencyStore enables duplicate detection of RecordPayment requests
// carrying an idempotency key.
func WithIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		s.idempotency = store
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	reader TransactionalRepositories,
	balances *BalanceService,
	dispatcher *event.Dispatcher,
	logger *zap.Logger,
	opts ...PaymentServiceOption,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = event.NewDispatcher(logger)
	}
	s := &PaymentService{
		scope:          scope,
		reader:         reader,
		balances:       balances,
		dispatcher:     dispatcher,
		idempotencyTTL: shared.DefaultIdempotencyTTL,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPayment stores a payment and applies the requested allocations in
// one transaction.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (resp *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrPaymentMethod, string(req.Method),
		telemetry.SpanAttrAllocations, len(req.Allocations),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, "record_payment", err)
	}()

	key, err := s.claimIdempotencyKey(ctx, req)
	if err != nil {
		return nil, err
	}

	invoiceIDs, err := allocationOrder(req.Allocations)
	if err != nil {
		s.forgetIdempotencyKey(ctx, key)
		return nil, err
	}

	var (
		payment  *finance.Payment
		invoices []*finance.Invoice
		customer *partner.Customer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices = nil
		if _, err := lockCustomer(ctx, repos, req.TenantID, req.CustomerID); err != nil {
			return err
		}

		paymentDate := req.PaymentDate
		if paymentDate.IsZero() {
			paymentDate = time.Now()
		}
		seq, err := repos.Numbers().Next(ctx, shared.SequenceKey{
			TenantID: req.TenantID,
			Prefix:   finance.PaymentNumberPrefix,
			Period:   paymentDate.Year(),
		})
		if err != nil {
			return fmt.Errorf("failed to allocate payment number: %w", err)
		}

		payment, err = finance.NewPayment(req.TenantID, finance.NewPaymentInput{
			CustomerID:      req.CustomerID,
			PaymentNumber:   finance.FormatPaymentNumber(paymentDate.Year(), seq),
			Amount:          req.Amount,
			Method:          req.Method,
			ReferenceNumber: req.Reference,
			Notes:           req.Notes,
			PaymentDate:     paymentDate,
		}, req.ActorID)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, id := range invoiceIDs {
			total = total.Add(valueobject.RoundMoney(req.Allocations[id]))
		}
		if total.GreaterThan(payment.Amount) {
			return shared.NewValidationError("allocations total %s exceeds payment amount %s",
				total.StringFixed(2), payment.Amount.StringFixed(2))
		}

		for _, invoiceID := range invoiceIDs {
			inv, err := s.lockInvoiceForCustomer(ctx, repos, req.TenantID, req.CustomerID, invoiceID)
			if err != nil {
				return err
			}
			if _, err := allocate(payment, inv, req.Allocations[invoiceID], req.ActorID); err != nil {
				return err
			}
			invoices = append(invoices, inv)
		}

		if err := repos.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		for i := range payment.Allocations {
			if err := repos.Allocations().Create(ctx, &payment.Allocations[i]); err != nil {
				return fmt.Errorf("failed to create allocation: %w", err)
			}
		}
		for _, inv := range invoices {
			if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
				return err
			}
		}

		customer, err = s.balances.Recompute(ctx, repos, req.TenantID, req.CustomerID)
		return err
	})
	if err != nil {
		s.forgetIdempotencyKey(ctx, key)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, payment.ID.String())
	s.dispatcher.Publish(ctx, collect(payment, customer, invoices...))
	s.dispatcher.Metrics().RecordPayment(ctx, req.TenantID, string(payment.Method), payment.Amount)
	for range payment.Allocations {
		s.dispatcher.Metrics().RecordAllocation(ctx, req.TenantID, "record")
	}
	s.dispatcher.Audit(ctx, shared.AuditEntry{
		TenantID:   req.TenantID,
		UserID:     req.ActorID,
		EntityType: entityPayment,
		EntityID:   payment.ID,
		Action:     shared.AuditActionCreate,
		NewValues: map[string]any{
			"payment_number":     payment.PaymentNumber,
			"amount":             payment.Amount.StringFixed(2),
			"unallocated_amount": payment.UnallocatedAmount.StringFixed(2),
			"allocations":        len(payment.Allocations),
		},
	})

	s.logger.Info("Payment recorded",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.Int("allocations", len(payment.Allocations)),
	)

	out := ToPaymentResponse(payment)
	return &out, nil
}

// AllocatePayment applies part of a payment's unallocated amount to an invoice
// of the same customer.
func (s *PaymentService) AllocatePayment(ctx context.Context, req AllocatePaymentRequest) (resp *AllocationResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "allocate",
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrPaymentID, req.PaymentID.String(),
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, "allocate_payment", err)
	}()

	// Resolve the customer first so its lock is taken before the payment's.
	current, err := s.reader.Payments().FindByIDForTenant(ctx, req.TenantID, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if current == nil {
		return nil, shared.NewNotFoundError(entityPayment, req.PaymentID)
	}

	var (
		payment  *finance.Payment
		invoice  *finance.Invoice
		alloc    *finance.PaymentAllocation
		customer *partner.Customer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := lockCustomer(ctx, repos, req.TenantID, current.CustomerID); err != nil {
			return err
		}
		payment, err = lockPayment(ctx, repos, req.TenantID, req.PaymentID)
		if err != nil {
			return err
		}
		invoice, err = s.lockInvoiceForCustomer(ctx, repos, req.TenantID, payment.CustomerID, req.InvoiceID)
		if err != nil {
			return err
		}

		alloc, err = allocate(payment, invoice, req.Amount, req.ActorID)
		if err != nil {
			return err
		}
		if err := repos.Allocations().Create(ctx, alloc); err != nil {
			return fmt.Errorf("failed to create allocation: %w", err)
		}
		if err := repos.Payments().SaveWithLock(ctx, payment); err != nil {
			return err
		}
		if err := repos.Invoices().SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		customer, err = s.balances.Recompute(ctx, repos, req.TenantID, payment.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, collect(payment, customer, invoice))
	s.dispatcher.Metrics().RecordAllocation(ctx, req.TenantID, "allocate")
	s.dispatcher.Audit(ctx, shared.AuditEntry{
		TenantID:   req.TenantID,
		UserID:     req.ActorID,
		EntityType: entityPayment,
		EntityID:   payment.ID,
		Action:     shared.AuditActionAllocate,
		NewValues: map[string]any{
			"invoice_id":         invoice.ID.String(),
			"amount":             alloc.Amount.StringFixed(2),
			"unallocated_amount": payment.UnallocatedAmount.StringFixed(2),
			"invoice_status":     string(invoice.Status),
		},
	})

	out := ToAllocationResponse(alloc)
	return &out, nil
}

// VoidPayment unwinds every allocation of a payment and marks it voided.
func (s *PaymentService) VoidPayment(ctx context.Context, req VoidPaymentRequest) (resp *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "void",
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrPaymentID, req.PaymentID.String(),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, "void_payment", err)
	}()

	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewValidationError("void reason is required")
	}
	current, err := s.reader.Payments().FindByIDForTenant(ctx, req.TenantID, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if current == nil {
		return nil, shared.NewNotFoundError(entityPayment, req.PaymentID)
	}

	var (
		payment  *finance.Payment
		invoices []*finance.Invoice
		removed  []finance.PaymentAllocation
		customer *partner.Customer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices = nil
		if _, err := lockCustomer(ctx, repos, req.TenantID, current.CustomerID); err != nil {
			return err
		}
		payment, err = lockPayment(ctx, repos, req.TenantID, req.PaymentID)
		if err != nil {
			return err
		}
		removed, err = payment.Void(req.Reason, req.ActorID)
		if err != nil {
			return err
		}

		reversals := make(map[uuid.UUID]decimal.Decimal)
		for _, a := range removed {
			reversals[a.InvoiceID] = reversals[a.InvoiceID].Add(a.Amount)
		}
		for _, invoiceID := range sortedIDs(reversals) {
			inv, err := repos.Invoices().FindByIDForUpdate(ctx, req.TenantID, invoiceID)
			if err != nil {
				return fmt.Errorf("failed to lock invoice: %w", err)
			}
			if inv == nil {
				return shared.NewNotFoundError(entityInvoice, invoiceID)
			}
			if err := inv.ReversePayment(reversals[invoiceID]); err != nil {
				return err
			}
			if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
				return err
			}
			invoices = append(invoices, inv)
		}

		if _, err := repos.Allocations().DeleteByPayment(ctx, req.TenantID, payment.ID); err != nil {
			return fmt.Errorf("failed to delete allocations: %w", err)
		}
		if err := repos.Payments().SaveWithLock(ctx, payment); err != nil {
			return err
		}
		customer, err = s.balances.Recompute(ctx, repos, req.TenantID, payment.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Publish(ctx, collect(payment, customer, invoices...))
	s.dispatcher.Metrics().RecordPaymentVoided(ctx, req.TenantID)
	s.dispatcher.Audit(ctx, shared.AuditEntry{
		TenantID:   req.TenantID,
		UserID:     req.ActorID,
		EntityType: entityPayment,
		EntityID:   payment.ID,
		Action:     shared.AuditActionVoid,
		OldValues:  map[string]any{"allocations": len(removed)},
		NewValues:  map[string]any{"is_voided": true, "void_reason": payment.VoidReason},
	})

	s.logger.Info("Payment voided",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.Int("reversed_allocations", len(removed)),
		zap.Int("invoices", len(invoices)),
	)

	out := ToPaymentResponse(payment)
	return &out, nil
}

// ApplyCreditToInvoice pays an invoice from the customer's unallocated
// payments, oldest payment first.
func (s *PaymentService) ApplyCreditToInvoice(ctx context.Context, req ApplyCreditRequest) (resp *ApplyCreditResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "apply_credit",
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.dispatcher.Outcome(ctx, "apply_credit", err)
	}()

	amount, ok := valueobject.PositiveAmount(req.Amount)
	if !ok {
		return nil, shared.NewValidationError("credit amount must be positive")
	}

	var (
		invoice  *finance.Invoice
		payments []*finance.Payment
		allocs   []finance.PaymentAllocation
		customer *partner.Customer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payments, allocs = nil, nil
		customer, err = s.balances.Recompute(ctx, repos, req.TenantID, req.CustomerID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(customer.CreditBalance) {
			return shared.NewValidationError("credit amount %s exceeds customer credit balance %s",
				amount.StringFixed(2), customer.CreditBalance.StringFixed(2))
		}

		credits, err := repos.Payments().FindCreditsForUpdate(ctx, req.TenantID, req.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to lock customer credits: %w", err)
		}
		invoice, err = s.lockInvoiceForCustomer(ctx, repos, req.TenantID, req.CustomerID, req.InvoiceID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(invoice.BalanceDue()) {
			return shared.NewValidationError("invoice balance due exceeded: %s requested, %s due",
				amount.StringFixed(2), invoice.BalanceDue().StringFixed(2))
		}

		remaining := amount
		for i := range credits {
			if !remaining.IsPositive() {
				break
			}
			p := &credits[i]
			if !p.HasCredit() {
				continue
			}
			take := decimal.Min(remaining, p.UnallocatedAmount)
			alloc, err := p.Allocate(invoice.ID, take, req.ActorID)
			if err != nil {
				return err
			}
			if err := repos.Allocations().Create(ctx, alloc); err != nil {
				return fmt.Errorf("failed to create allocation: %w", err)
			}
			if err := repos.Payments().SaveWithLock(ctx, p); err != nil {
				return err
			}
			remaining = remaining.Sub(take)
			payments = append(payments, p)
			allocs = append(allocs, *alloc)
		}
		if remaining.IsPositive() {
			return shared.NewValidationError("customer credit short by %s", remaining.StringFixed(2))
		}

		if err := invoice.ApplyPayment(amount); err != nil {
			return err
		}
		if err := repos.Invoices().SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		customer, err = s.balances.Recompute(ctx, repos, req.TenantID, req.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	aggs := []shared.AggregateRoot{invoice, customer}
	for _, p := range payments {
		aggs = append(aggs, p)
	}
	s.dispatcher.Publish(ctx, shared.CollectEvents(aggs...))

	out := &ApplyCreditResponse{
		Invoice:     ToInvoiceResponse(invoice),
		Allocations: make([]AllocationResponse, len(allocs)),
		Applied:     amount,
		Customer:    ToCustomerBalanceResponse(customer),
	}
	for i := range allocs {
		out.Allocations[i] = ToAllocationResponse(&allocs[i])
		s.dispatcher.Metrics().RecordAllocation(ctx, req.TenantID, "credit")
	}
	s.dispatcher.Audit(ctx, shared.AuditEntry{
		TenantID:   req.TenantID,
		UserID:     req.ActorID,
		EntityType: entityInvoice,
		EntityID:   invoice.ID,
		Action:     shared.AuditActionAllocate,
		NewValues: map[string]any{
			"credit_applied":   amount.StringFixed(2),
			"payments_used":    len(payments),
			"amount_paid":      invoice.AmountPaid.StringFixed(2),
			"status":           string(invoice.Status),
			"remaining_credit": customer.CreditBalance.StringFixed(2),
		},
	})
	return out, nil
}

// GetPayment returns one payment with its allocations
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.reader.Payments().FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewNotFoundError(entityPayment, paymentID)
	}
	out := ToPaymentResponse(payment)
	return &out, nil
}

// ListPayments returns a page of payments
func (s *PaymentService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (shared.Paginated[PaymentResponse], error) {
	payments, total, err := s.reader.Payments().FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, fmt.Errorf("failed to list payments: %w", err)
	}
	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListAllocations returns the live allocations of a payment
func (s *PaymentService) ListAllocations(ctx context.Context, tenantID, paymentID uuid.UUID) ([]AllocationResponse, error) {
	payment, err := s.reader.Payments().FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewNotFoundError(entityPayment, paymentID)
	}
	allocs, err := s.reader.Allocations().FindByPayment(ctx, tenantID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	out := make([]AllocationResponse, len(allocs))
	for i := range allocs {
		out[i] = ToAllocationResponse(&allocs[i])
	}
	return out, nil
}

// ==================== helpers ====================

func (s *PaymentService) claimIdempotencyKey(ctx context.Context, req RecordPaymentRequest) (string, error) {
	if s.idempotency == nil || req.IdempotencyKey == "" {
		return "", nil
	}
	key := fmt.Sprintf("payment:%s:%s", req.TenantID, req.IdempotencyKey)
	fresh, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
	if err != nil {
		return "", fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if !fresh {
		return "", shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("payment request %q was already processed", req.IdempotencyKey))
	}
	return key, nil
}

func (s *PaymentService) forgetIdempotencyKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idempotency.Forget(ctx, key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *PaymentService) lockInvoiceForCustomer(ctx context.Context, repos TransactionalRepositories, tenantID, customerID, invoiceID uuid.UUID) (*finance.Invoice, error) {
	inv, err := repos.Invoices().FindByIDForUpdate(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock invoice: %w", err)
	}
	if inv == nil {
		return nil, shared.NewNotFoundError(entityInvoice, invoiceID)
	}
	if inv.CustomerID != customerID {
		return nil, shared.NewValidationError("invoice %s belongs to a different customer", inv.InvoiceNumber)
	}
	return inv, nil
}

// allocate moves amount from payment to invoice after checking both limits.
func allocate(payment *finance.Payment, invoice *finance.Invoice, amount decimal.Decimal, actor uuid.UUID) (*finance.PaymentAllocation, error) {
	amount, ok := valueobject.PositiveAmount(amount)
	if !ok {
		return nil, shared.NewValidationError("allocation amount must be positive")
	}
	if invoice.Status.IsTerminal() {
		return nil, shared.NewInvalidStateError("invoice %s is %s and cannot receive payments", invoice.InvoiceNumber, invoice.Status)
	}
	if amount.GreaterThan(payment.UnallocatedAmount) {
		return nil, shared.NewValidationError("payment unallocated amount exceeded: %s requested, %s available",
			amount.StringFixed(2), payment.UnallocatedAmount.StringFixed(2))
	}
	if amount.GreaterThan(invoice.BalanceDue()) {
		return nil, shared.NewValidationError("invoice balance due exceeded: %s requested, %s due",
			amount.StringFixed(2), invoice.BalanceDue().StringFixed(2))
	}
	alloc, err := payment.Allocate(invoice.ID, amount, actor)
	if err != nil {
		return nil, err
	}
	if err := invoice.ApplyPayment(alloc.Amount); err != nil {
		return nil, err
	}
	return alloc, nil
}

// allocationOrder returns the invoices with a positive requested amount in a
// stable lock order. Negative amounts are rejected.
func allocationOrder(allocations map[uuid.UUID]decimal.Decimal) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(allocations))
	for id, amount := range allocations {
		if amount.IsNegative() {
			return nil, shared.NewValidationError("allocation for invoice %s cannot be negative", id)
		}
		if valueobject.RoundMoney(amount).IsPositive() {
			ids = append(ids, id)
		}
	}
	sortUUIDs(ids)
	return ids, nil
}

func lockPayment(ctx context.Context, repos TransactionalRepositories, tenantID, paymentID uuid.UUID) (*finance.Payment, error) {
	payment, err := repos.Payments().FindByIDForUpdate(ctx, tenantID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewNotFoundError(entityPayment, paymentID)
	}
	return payment, nil
}

func sortedIDs(m map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sortUUIDs(ids)
	return ids
}

func sortUUIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func collect(payment *finance.Payment, customer *partner.Customer, invoices ...*finance.Invoice) []shared.DomainEvent {
	aggs := make([]shared.AggregateRoot, 0, len(invoices)+2)
	aggs = append(aggs, payment)
	for _, inv := range invoices {
		aggs = append(aggs, inv)
	}
	if customer != nil {
		aggs = append(aggs, customer)
	}
	return shared.CollectEvents(aggs...)
}
