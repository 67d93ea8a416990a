package finance

import (
	"context"
	"fmt"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceService keeps the cached customer balances in line with invoices
// and payments. Balances are always recomputed from scratch.
type BalanceService struct {
	scope  TransactionScope
	reader TransactionalRepositories
	logger *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(scope TransactionScope, reader TransactionalRepositories, logger *zap.Logger) *BalanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceService{scope: scope, reader: reader, logger: logger}
}

// Recompute derives and stores both balances of a customer inside the
// caller's transaction.
func (s *BalanceService) Recompute(ctx context.Context, repos TransactionalRepositories, tenantID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := lockCustomer(ctx, repos, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	invoices, err := repos.Invoices().FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer invoices: %w", err)
	}
	payments, err := repos.Payments().FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer payments: %w", err)
	}

	balances := finance.ComputeCustomerBalances(invoices, payments)
	if !customer.SetBalances(balances.Outstanding, balances.Credit) {
		return customer, nil
	}
	if err := repos.Customers().SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// RecalculateResult summarizes a RecalculateAll run
type RecalculateResult struct {
	Customers int `json:"customers"`
	Changed   int `json:"changed"`
}

// RecalculateCustomer recomputes one customer in its own transaction.
// The flag reports whether a stored balance moved.
func (s *BalanceService) RecalculateCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerBalanceResponse, bool, error) {
	var (
		customer *partner.Customer
		changed  bool
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		locked, err := lockCustomer(ctx, repos, tenantID, customerID)
		if err != nil {
			return err
		}
		before := locked.Version
		customer, err = s.Recompute(ctx, repos, tenantID, customerID)
		if err != nil {
			return err
		}
		changed = customer.Version != before
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return ToCustomerBalanceResponse(customer), changed, nil
}

// RecalculateAll recomputes every customer of a tenant, one transaction per
// customer, and stops at the first failure.
func (s *BalanceService) RecalculateAll(ctx context.Context, tenantID uuid.UUID) (*RecalculateResult, error) {
	ids, err := s.reader.Customers().ListIDs(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	result := &RecalculateResult{}
	var runErr error
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("balance.recalculate_all", tenantID.String()), func(c context.Context) {
		for _, id := range ids {
			_, changed, err := s.RecalculateCustomer(c, tenantID, id)
			if err != nil {
				runErr = fmt.Errorf("customer %s: %w", id, err)
				return
			}
			result.Customers++
			if changed {
				result.Changed++
			}
		}
	})
	if runErr != nil {
		return result, runErr
	}
	s.logger.Info("Customer balances recalculated",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("customers", result.Customers),
		zap.Int("changed", result.Changed),
	)
	return result, nil
}

func lockCustomer(ctx context.Context, repos TransactionalRepositories, tenantID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock customer: %w", err)
	}
	if customer == nil {
		return nil, shared.NewNotFoundError("customer", customerID)
	}
	return customer, nil
}
