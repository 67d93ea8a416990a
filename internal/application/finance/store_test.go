package finance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/partner"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// In-memory store
// =============================================================================

// memoryStore backs every repository with maps and hands out copies, so
// optimistic version checks behave like the database ones.
type memoryStore struct {
	mu          sync.Mutex
	invoices    map[uuid.UUID]finance.Invoice
	payments    map[uuid.UUID]finance.Payment
	allocations []finance.PaymentAllocation
	customers   map[uuid.UUID]partner.Customer
	sequences   map[shared.SequenceKey]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		invoices:  make(map[uuid.UUID]finance.Invoice),
		payments:  make(map[uuid.UUID]finance.Payment),
		customers: make(map[uuid.UUID]partner.Customer),
		sequences: make(map[shared.SequenceKey]int64),
	}
}

func (s *memoryStore) Invoices() finance.InvoiceRepository       { return memInvoices{s} }
func (s *memoryStore) Payments() finance.PaymentRepository       { return memPayments{s} }
func (s *memoryStore) Allocations() finance.AllocationRepository { return memAllocations{s} }
func (s *memoryStore) Customers() partner.CustomerRepository     { return memCustomers{s} }
func (s *memoryStore) Numbers() shared.NumberGenerator           { return memNumbers{s} }

type memorySnapshot struct {
	invoices    map[uuid.UUID]finance.Invoice
	payments    map[uuid.UUID]finance.Payment
	allocations []finance.PaymentAllocation
	customers   map[uuid.UUID]partner.Customer
	sequences   map[shared.SequenceKey]int64
}

func (s *memoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memorySnapshot{
		invoices:    make(map[uuid.UUID]finance.Invoice, len(s.invoices)),
		payments:    make(map[uuid.UUID]finance.Payment, len(s.payments)),
		allocations: append([]finance.PaymentAllocation(nil), s.allocations...),
		customers:   make(map[uuid.UUID]partner.Customer, len(s.customers)),
		sequences:   make(map[shared.SequenceKey]int64, len(s.sequences)),
	}
	for k, v := range s.invoices {
		snap.invoices[k] = cloneInvoice(v)
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	for k, v := range s.customers {
		snap.customers[k] = v
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = snap.invoices
	s.payments = snap.payments
	s.allocations = snap.allocations
	s.customers = snap.customers
	s.sequences = snap.sequences
}

// memoryScope rolls the store back when the unit of work fails.
type memoryScope struct {
	store *memoryStore
	calls int
}

func (m *memoryScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	m.calls++
	snap := m.store.snapshot()
	if err := fn(m.store); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

func cloneInvoice(inv finance.Invoice) finance.Invoice {
	inv.Items = append([]finance.InvoiceItem(nil), inv.Items...)
	inv.ClearDomainEvents()
	return inv
}

// ----------------------------------------------------------------------------
// invoices

type memInvoices struct{ s *memoryStore }

func (r memInvoices) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, nil
	}
	c := cloneInvoice(inv)
	return &c, nil
}

func (r memInvoices) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r memInvoices) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []finance.Invoice
	for _, inv := range r.s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if filter.CustomerID != nil && inv.CustomerID != *filter.CustomerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, inv.Status) {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out, int64(len(out)), nil
}

func containsStatus(statuses []finance.InvoiceStatus, s finance.InvoiceStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func (r memInvoices) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Invoice, error) {
	out, _, err := r.FindAllForTenant(ctx, tenantID, finance.InvoiceFilter{CustomerID: &customerID})
	return out, err
}

func (r memInvoices) Create(_ context.Context, inv *finance.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invoices {
		if existing.TenantID == inv.TenantID && existing.InvoiceNumber == inv.InvoiceNumber {
			return shared.NewDomainError(shared.CodeAlreadyExists, "invoice number taken")
		}
	}
	r.s.invoices[inv.ID] = cloneInvoice(*inv)
	return nil
}

func (r memInvoices) SaveWithLock(_ context.Context, inv *finance.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.invoices[inv.ID]
	if !ok || stored.Version != inv.Version {
		return shared.NewConcurrencyError("invoice")
	}
	inv.Version++
	c := cloneInvoice(*inv)
	c.Items = stored.Items
	r.s.invoices[inv.ID] = c
	return nil
}

func (r memInvoices) ReplaceItems(_ context.Context, inv *finance.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.invoices[inv.ID]
	stored.Items = append([]finance.InvoiceItem(nil), inv.Items...)
	r.s.invoices[inv.ID] = stored
	return nil
}

// ----------------------------------------------------------------------------
// payments

type memPayments struct{ s *memoryStore }

// load assembles a payment with its live allocations; callers hold the lock.
func (r memPayments) load(p finance.Payment) finance.Payment {
	p.ClearDomainEvents()
	p.Allocations = nil
	for _, a := range r.s.allocations {
		if a.PaymentID == p.ID {
			p.Allocations = append(p.Allocations, a)
		}
	}
	return p
}

func (r memPayments) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	c := r.load(p)
	return &c, nil
}

func (r memPayments) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r memPayments) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []finance.Payment
	for _, p := range r.s.payments {
		if p.TenantID != tenantID {
			continue
		}
		if filter.CustomerID != nil && p.CustomerID != *filter.CustomerID {
			continue
		}
		if p.IsVoided && !filter.IncludeVoided {
			continue
		}
		if filter.HasUnallocated && !p.UnallocatedAmount.IsPositive() {
			continue
		}
		out = append(out, r.load(p))
	}
	sortPayments(out)
	return out, int64(len(out)), nil
}

func (r memPayments) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Payment, error) {
	out, _, err := r.FindAllForTenant(ctx, tenantID, finance.PaymentFilter{CustomerID: &customerID, IncludeVoided: true})
	return out, err
}

func (r memPayments) FindCreditsForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Payment, error) {
	out, _, err := r.FindAllForTenant(ctx, tenantID, finance.PaymentFilter{CustomerID: &customerID, HasUnallocated: true})
	return out, err
}

func sortPayments(ps []finance.Payment) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].PaymentDate.Equal(ps[j].PaymentDate) {
			return ps[i].PaymentDate.Before(ps[j].PaymentDate)
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}

func (r memPayments) Create(_ context.Context, p *finance.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	c.Allocations = nil
	c.ClearDomainEvents()
	r.s.payments[p.ID] = c
	return nil
}

func (r memPayments) SaveWithLock(_ context.Context, p *finance.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.payments[p.ID]
	if !ok || stored.Version != p.Version {
		return shared.NewConcurrencyError("payment")
	}
	p.Version++
	c := *p
	c.Allocations = nil
	c.ClearDomainEvents()
	r.s.payments[p.ID] = c
	return nil
}

// ----------------------------------------------------------------------------
// allocations

type memAllocations struct{ s *memoryStore }

func (r memAllocations) Create(_ context.Context, a *finance.PaymentAllocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.allocations = append(r.s.allocations, *a)
	return nil
}

func (r memAllocations) FindByPayment(_ context.Context, tenantID, paymentID uuid.UUID) ([]finance.PaymentAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []finance.PaymentAllocation
	for _, a := range r.s.allocations {
		if a.TenantID == tenantID && a.PaymentID == paymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memAllocations) FindByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]finance.PaymentAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []finance.PaymentAllocation
	for _, a := range r.s.allocations {
		if a.TenantID == tenantID && a.InvoiceID == invoiceID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memAllocations) DeleteByPayment(_ context.Context, tenantID, paymentID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.allocations[:0:0]
	var deleted int64
	for _, a := range r.s.allocations {
		if a.TenantID == tenantID && a.PaymentID == paymentID {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.s.allocations = kept
	return deleted, nil
}

// ----------------------------------------------------------------------------
// customers

type memCustomers struct{ s *memoryStore }

func (r memCustomers) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	c.ClearDomainEvents()
	return &c, nil
}

func (r memCustomers) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r memCustomers) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]partner.Customer, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []partner.Customer
	for _, c := range r.s.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, int64(len(out)), nil
}

func (r memCustomers) ListIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	customers, _, err := r.FindAllForTenant(ctx, tenantID, shared.DefaultFilter())
	ids := make([]uuid.UUID, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	return ids, err
}

func (r memCustomers) Create(_ context.Context, c *partner.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *c
	stored.ClearDomainEvents()
	r.s.customers[c.ID] = stored
	return nil
}

func (r memCustomers) SaveWithLock(_ context.Context, c *partner.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.customers[c.ID]
	if !ok || stored.Version != c.Version {
		return shared.NewConcurrencyError("customer")
	}
	c.Version++
	next := *c
	next.ClearDomainEvents()
	r.s.customers[c.ID] = next
	return nil
}

// ----------------------------------------------------------------------------
// numbering

type memNumbers struct{ s *memoryStore }

func (r memNumbers) Next(_ context.Context, key shared.SequenceKey) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sequences[key]++
	return r.s.sequences[key], nil
}

// =============================================================================
// Mocks
// =============================================================================

type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) Log(ctx context.Context, entry shared.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (s *memoryStore) seedCustomer(tenantID uuid.UUID, code string) *partner.Customer {
	c, err := partner.NewCustomer(tenantID, code, "Customer "+code, "")
	if err != nil {
		panic(err)
	}
	_ = s.Customers().Create(context.Background(), c)
	return c
}

// seedInvoice stores a single line invoice of total, sent unless draft is asked for.
func (s *memoryStore) seedInvoice(tenantID, customerID uuid.UUID, number string, total decimal.Decimal, status finance.InvoiceStatus) *finance.Invoice {
	inv, err := finance.NewInvoice(tenantID, customerID, number, finance.InvoiceDraft{
		InvoiceDate: time.Now(),
		TaxRate:     decimal.Zero,
		Items: []finance.InvoiceItemInput{
			{Description: "Services", Quantity: decimal.NewFromInt(1), UnitPrice: total},
		},
	}, uuid.Nil)
	if err != nil {
		panic(err)
	}
	if status != finance.InvoiceStatusDraft {
		if err := inv.Send(); err != nil {
			panic(err)
		}
	}
	_ = s.Invoices().Create(context.Background(), inv)
	return inv
}

func (s *memoryStore) invoice(id uuid.UUID) finance.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoices[id]
}

func (s *memoryStore) payment(id uuid.UUID) finance.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memPayments{s}.load(s.payments[id])
}

func (s *memoryStore) customer(id uuid.UUID) partner.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers[id]
}

// checkInvariants reports every broken allocation or balance invariant.
func (s *memoryStore) checkInvariants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var problems []string

	paidByInvoice := make(map[uuid.UUID]decimal.Decimal)
	allocByPayment := make(map[uuid.UUID]decimal.Decimal)
	for _, a := range s.allocations {
		paidByInvoice[a.InvoiceID] = paidByInvoice[a.InvoiceID].Add(a.Amount)
		allocByPayment[a.PaymentID] = allocByPayment[a.PaymentID].Add(a.Amount)
	}
	for id, inv := range s.invoices {
		if !inv.AmountPaid.Equal(paidByInvoice[id]) {
			problems = append(problems, "invoice "+inv.InvoiceNumber+" paid does not match allocations")
		}
	}
	for id, p := range s.payments {
		if !p.UnallocatedAmount.Equal(p.Amount.Sub(allocByPayment[id])) || p.UnallocatedAmount.IsNegative() {
			problems = append(problems, "payment "+p.PaymentNumber+" unallocated does not match allocations")
		}
	}
	for id, c := range s.customers {
		var invs []finance.Invoice
		var pays []finance.Payment
		for _, inv := range s.invoices {
			if inv.CustomerID == id {
				invs = append(invs, inv)
			}
		}
		for _, p := range s.payments {
			if p.CustomerID == id {
				pays = append(pays, p)
			}
		}
		want := finance.ComputeCustomerBalances(invs, pays)
		if !c.OutstandingBalance.Equal(want.Outstanding) || !c.CreditBalance.Equal(want.Credit) {
			problems = append(problems, "customer "+c.Code+" balances are stale")
		}
	}
	return problems
}
