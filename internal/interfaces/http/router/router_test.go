package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/bizcms/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	var seen []string
	r.Use(func(c *gin.Context) {
		seen = append(seen, c.Request.URL.Path)
		c.Next()
	})
	r.Register(NewDomainGroup("invoices", "/invoices").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	}))
	r.Setup()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"/api/v1/invoices/ping"}, seen, "router middleware stays on the api group")
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("payments", "/payments")
		assert.Equal(t, "payments", g.Name())
		assert.Equal(t, "/payments", g.Prefix())
	})

	t.Run("methods and group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("payments", "/payments").
			Use(func(c *gin.Context) {
				c.Header("X-Group", "payments")
				c.Next()
			}).
			GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }).
			POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
			PUT("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/42", nil))
		assert.Equal(t, "42", w.Body.String())
		assert.Equal(t, "payments", w.Header().Get("X-Group"))

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil))
		assert.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/payments/1", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("subgroups nest under the parent prefix", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("ledger", "/ledger")
		g.Group("accounts", "/accounts").GET("", func(c *gin.Context) { c.String(http.StatusOK, "accounts") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/accounts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "accounts", w.Body.String())
	})
}

func TestFinanceGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	for _, g := range FinanceGroups(Handlers{
		Invoices:  handler.NewInvoiceHandler(nil),
		Payments:  handler.NewPaymentHandler(nil),
		Customers: handler.NewCustomerHandler(nil, nil, nil),
		Ledger:    handler.NewLedgerHandler(nil),
	}) {
		r.Register(g)
	}
	r.Setup()

	var got []string
	for _, route := range engine.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}
	sort.Strings(got)

	want := []string{
		"GET /api/v1/customers",
		"GET /api/v1/customers/:id",
		"GET /api/v1/invoices",
		"GET /api/v1/invoices/:id",
		"GET /api/v1/ledger/accounts",
		"GET /api/v1/ledger/journal-entries/:id",
		"GET /api/v1/ledger/trial-balance",
		"GET /api/v1/payments",
		"GET /api/v1/payments/:id",
		"GET /api/v1/payments/:id/allocations",
		"POST /api/v1/customers",
		"POST /api/v1/customers/:id/apply-credit",
		"POST /api/v1/customers/:id/recalculate",
		"POST /api/v1/customers/recalculate",
		"POST /api/v1/invoices",
		"POST /api/v1/invoices/:id/cancel",
		"POST /api/v1/invoices/:id/send",
		"POST /api/v1/invoices/:id/void",
		"POST /api/v1/ledger/accounts",
		"POST /api/v1/ledger/accounts/initialize",
		"POST /api/v1/ledger/journal-entries",
		"POST /api/v1/ledger/journal-entries/:id/post",
		"POST /api/v1/payments",
		"POST /api/v1/payments/:id/allocations",
		"POST /api/v1/payments/:id/void",
		"PUT /api/v1/invoices/:id",
	}
	sort.Strings(want)
	require.Equal(t, want, got)
}

func TestFinanceGroups_PaymentRecordChecksIdempotencyKey(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	for _, g := range FinanceGroups(Handlers{
		Invoices:  handler.NewInvoiceHandler(nil),
		Payments:  handler.NewPaymentHandler(nil),
		Customers: handler.NewCustomerHandler(nil, nil, nil),
		Ledger:    handler.NewLedgerHandler(nil),
	}) {
		r.Register(g)
	}
	r.Setup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)
	req.Header.Set("Idempotency-Key", "has space")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_IDEMPOTENCY_KEY")
}
