package integration

import (
	"net/http"
	"testing"

	financeapp "github.com/bizcms/backend/internal/application/finance"
	partnerapp "github.com/bizcms/backend/internal/application/partner"
	"github.com/bizcms/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTenantIsolation(t *testing.T) {
	s := newStack(t)
	a := s.client
	b := a.AsTenant(uuid.New())

	customer := createCustomer(t, a)
	inv := sentInvoice(t, a, customer.ID, "75.00")
	pay := testutil.Decode[financeapp.PaymentResponse](t, recordPayment(t, a, customer.ID, "20.00"), http.StatusCreated)

	for _, path := range []string{
		"/customers/" + customer.ID.String(),
		"/invoices/" + inv.ID.String(),
		"/payments/" + pay.ID.String(),
	} {
		testutil.RequireError(t, b.Get(t, path), http.StatusNotFound, "ERR_NOT_FOUND")
	}

	assert.Empty(t, testutil.Decode[[]financeapp.InvoiceResponse](t, b.Get(t, "/invoices"), http.StatusOK))
	assert.Empty(t, testutil.Decode[[]financeapp.PaymentResponse](t, b.Get(t, "/payments"), http.StatusOK))
	assert.Empty(t, testutil.Decode[[]partnerapp.CustomerResponse](t, b.Get(t, "/customers"), http.StatusOK))

	t.Run("cannot pay into another tenant", func(t *testing.T) {
		own := createCustomer(t, b)
		resp := recordPayment(t, b, own.ID, "10.00", allocation{InvoiceID: inv.ID, Amount: "10.00"})
		testutil.RequireError(t, resp, http.StatusNotFound, "ERR_NOT_FOUND")

		resp = b.Post(t, "/payments/"+pay.ID.String()+"/void", map[string]string{"reason": "not mine"})
		testutil.RequireError(t, resp, http.StatusNotFound, "ERR_NOT_FOUND")
	})

	t.Run("customer codes are per tenant", func(t *testing.T) {
		resp := b.Post(t, "/customers", map[string]string{"code": customer.Code, "name": "Same code"})
		assert.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body)

		resp = a.Post(t, "/customers", map[string]string{"code": customer.Code, "name": "Same code"})
		testutil.RequireError(t, resp, http.StatusConflict, "ERR_ALREADY_EXISTS")
	})

	t.Run("missing tenant header", func(t *testing.T) {
		anon := a.AsTenant(uuid.Nil)
		resp := anon.Get(t, "/invoices")
		testutil.RequireError(t, resp, http.StatusBadRequest, "ERR_TENANT_REQUIRED")
	})

	got := getInvoice(t, a, inv.ID)
	assert.Equal(t, "sent", got.Status)
	assertAmount(t, "0", got.AmountPaid)
}
