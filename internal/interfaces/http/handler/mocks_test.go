package handler

import (
	"context"

	financeapp "github.com/bizcms/backend/internal/application/finance"
	ledgerapp "github.com/bizcms/backend/internal/application/ledger"
	partnerapp "github.com/bizcms/backend/internal/application/partner"
	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockInvoiceService struct{ mock.Mock }

func (m *mockInvoiceService) invoice(args mock.Arguments) (*financeapp.InvoiceResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*financeapp.InvoiceResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceService) CreateInvoice(ctx context.Context, req financeapp.CreateInvoiceRequest) (*financeapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, req))
}

func (m *mockInvoiceService) UpdateDraft(ctx context.Context, req financeapp.UpdateInvoiceRequest) (*financeapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, req))
}

func (m *mockInvoiceService) SendInvoice(ctx context.Context, req financeapp.InvoiceTransitionRequest) (*financeapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, req))
}

func (m *mockInvoiceService) CancelInvoice(ctx context.Context, req financeapp.InvoiceTransitionRequest) (*financeapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, req))
}

func (m *mockInvoiceService) VoidInvoice(ctx context.Context, req financeapp.InvoiceTransitionRequest) (*financeapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, req))
}

func (m *mockInvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*financeapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, invoiceID))
}

func (m *mockInvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) (shared.Paginated[financeapp.InvoiceResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[financeapp.InvoiceResponse]), args.Error(1)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) payment(args mock.Arguments) (*financeapp.PaymentResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*financeapp.PaymentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentService) RecordPayment(ctx context.Context, req financeapp.RecordPaymentRequest) (*financeapp.PaymentResponse, error) {
	return m.payment(m.Called(ctx, req))
}

func (m *mockPaymentService) AllocatePayment(ctx context.Context, req financeapp.AllocatePaymentRequest) (*financeapp.AllocationResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*financeapp.AllocationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentService) VoidPayment(ctx context.Context, req financeapp.VoidPaymentRequest) (*financeapp.PaymentResponse, error) {
	return m.payment(m.Called(ctx, req))
}

func (m *mockPaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*financeapp.PaymentResponse, error) {
	return m.payment(m.Called(ctx, tenantID, paymentID))
}

func (m *mockPaymentService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (shared.Paginated[financeapp.PaymentResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[financeapp.PaymentResponse]), args.Error(1)
}

func (m *mockPaymentService) ListAllocations(ctx context.Context, tenantID, paymentID uuid.UUID) ([]financeapp.AllocationResponse, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if v := args.Get(0); v != nil {
		return v.([]financeapp.AllocationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCustomerService struct{ mock.Mock }

func (m *mockCustomerService) Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if v := args.Get(0); v != nil {
		return v.(*partnerapp.CustomerResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, tenantID, customerID)
	if v := args.Get(0); v != nil {
		return v.(*partnerapp.CustomerResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[partnerapp.CustomerResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[partnerapp.CustomerResponse]), args.Error(1)
}

type mockCreditService struct{ mock.Mock }

func (m *mockCreditService) ApplyCreditToInvoice(ctx context.Context, req financeapp.ApplyCreditRequest) (*financeapp.ApplyCreditResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*financeapp.ApplyCreditResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBalanceService struct{ mock.Mock }

func (m *mockBalanceService) RecalculateCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*financeapp.CustomerBalanceResponse, bool, error) {
	args := m.Called(ctx, tenantID, customerID)
	if v := args.Get(0); v != nil {
		return v.(*financeapp.CustomerBalanceResponse), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *mockBalanceService) RecalculateAll(ctx context.Context, tenantID uuid.UUID) (*financeapp.RecalculateResult, error) {
	args := m.Called(ctx, tenantID)
	if v := args.Get(0); v != nil {
		return v.(*financeapp.RecalculateResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLedgerService struct{ mock.Mock }

func (m *mockLedgerService) InitializeChartOfAccounts(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func (m *mockLedgerService) CreateAccount(ctx context.Context, req ledgerapp.CreateAccountRequest) (*ledgerapp.AccountResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*ledgerapp.AccountResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLedgerService) ListAccounts(ctx context.Context, tenantID uuid.UUID, filter ledger.AccountFilter) ([]ledgerapp.AccountResponse, error) {
	args := m.Called(ctx, tenantID, filter)
	if v := args.Get(0); v != nil {
		return v.([]ledgerapp.AccountResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLedgerService) CreateJournalEntry(ctx context.Context, req ledgerapp.CreateJournalEntryRequest) (*ledgerapp.JournalEntryResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*ledgerapp.JournalEntryResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLedgerService) GetJournalEntry(ctx context.Context, tenantID, entryID uuid.UUID) (*ledgerapp.JournalEntryResponse, error) {
	args := m.Called(ctx, tenantID, entryID)
	if v := args.Get(0); v != nil {
		return v.(*ledgerapp.JournalEntryResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLedgerService) PostJournalEntry(ctx context.Context, tenantID, entryID, actorID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, entryID, actorID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedgerService) GetTrialBalance(ctx context.Context, tenantID uuid.UUID) (*ledger.TrialBalance, error) {
	args := m.Called(ctx, tenantID)
	if v := args.Get(0); v != nil {
		return v.(*ledger.TrialBalance), args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	_ InvoiceService  = (*mockInvoiceService)(nil)
	_ PaymentService  = (*mockPaymentService)(nil)
	_ CustomerService = (*mockCustomerService)(nil)
	_ CreditService   = (*mockCreditService)(nil)
	_ BalanceService  = (*mockBalanceService)(nil)
	_ LedgerService   = (*mockLedgerService)(nil)
)
