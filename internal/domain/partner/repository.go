package partner

import (
	"context"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository persists customers. Lookups return (nil, nil) when
// the customer does not exist for the tenant.
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	// FindByIDForUpdate row-locks the customer; every balance-affecting
	// operation takes this lock first so recomputations serialize per customer.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)
	ListIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
	Create(ctx context.Context, customer *Customer) error
	SaveWithLock(ctx context.Context, customer *Customer) error
}
