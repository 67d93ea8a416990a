package integration

import (
	"fmt"
	"net/http"
	"testing"

	financeapp "github.com/bizcms/backend/internal/application/finance"
	partnerapp "github.com/bizcms/backend/internal/application/partner"
	"github.com/bizcms/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerSeq int

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func createCustomer(t *testing.T, c *testutil.APIClient) partnerapp.CustomerResponse {
	t.Helper()
	customerSeq++
	resp := c.Post(t, "/customers", map[string]string{
		"code": fmt.Sprintf("C%04d", customerSeq),
		"name": "Customer " + fmt.Sprint(customerSeq),
	})
	return testutil.Decode[partnerapp.CustomerResponse](t, resp, http.StatusCreated)
}

func getCustomer(t *testing.T, c *testutil.APIClient, id uuid.UUID) partnerapp.CustomerResponse {
	t.Helper()
	return testutil.Decode[partnerapp.CustomerResponse](t, c.Get(t, "/customers/"+id.String()), http.StatusOK)
}

// sentInvoice creates a one line invoice without tax and sends it
func sentInvoice(t *testing.T, c *testutil.APIClient, customerID uuid.UUID, amount string) financeapp.InvoiceResponse {
	t.Helper()
	resp := c.Post(t, "/invoices", map[string]any{
		"customer_id":  customerID,
		"title":        "Services",
		"invoice_date": "2026-10-01",
		"due_date":     "2026-10-31",
		"tax_rate":     "0",
		"items": []map[string]string{
			{"description": "Work", "quantity": "1", "unit_price": amount},
		},
	})
	inv := testutil.Decode[financeapp.InvoiceResponse](t, resp, http.StatusCreated)
	require.Equal(t, "draft", inv.Status)

	resp = c.Post(t, "/invoices/"+inv.ID.String()+"/send", nil)
	inv = testutil.Decode[financeapp.InvoiceResponse](t, resp, http.StatusOK)
	require.Equal(t, "sent", inv.Status)
	return inv
}

func getInvoice(t *testing.T, c *testutil.APIClient, id uuid.UUID) financeapp.InvoiceResponse {
	t.Helper()
	return testutil.Decode[financeapp.InvoiceResponse](t, c.Get(t, "/invoices/"+id.String()), http.StatusOK)
}

type allocation struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Amount    string    `json:"amount"`
}

func recordPayment(t *testing.T, c *testutil.APIClient, customerID uuid.UUID, amount string, allocs ...allocation) *testutil.Response {
	t.Helper()
	body := map[string]any{
		"customer_id":    customerID,
		"amount":         amount,
		"payment_method": "bank_transfer",
		"payment_date":   "2026-10-15",
	}
	if len(allocs) > 0 {
		body["allocations"] = allocs
	}
	return c.Post(t, "/payments", body)
}
