// Package partner manages the customers invoices and payments are billed to.
package partner

import (
	"context"

	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer master data. Balances are owned by the
// finance balance service and are read-only here.
type CustomerService struct {
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{customerRepo: customerRepo, logger: logger}
}

// Create creates a customer with zero balances. Duplicate codes surface as
// ALREADY_EXISTS from the unique index.
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(tenantID, req.Code, req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("Customer created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("code", customer.Code),
	)
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID returns a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewNotFoundError("customer", customerID)
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[CustomerResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
		filter.OrderDir = "asc"
	}

	customers, total, err := s.customerRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	items := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, ToCustomerResponse(&customers[i]))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
