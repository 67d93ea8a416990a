package router

import (
	"github.com/bizcms/backend/internal/interfaces/http/handler"
	"github.com/bizcms/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers of the finance API
type Handlers struct {
	Invoices  *handler.InvoiceHandler
	Payments  *handler.PaymentHandler
	Customers *handler.CustomerHandler
	Ledger    *handler.LedgerHandler
}

// FinanceGroups returns the route groups of the finance API. Only payment
// recording reads the Idempotency-Key header.
func FinanceGroups(h Handlers) []*DomainGroup {
	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Invoices.Create).
		GET("", h.Invoices.List).
		GET("/:id", h.Invoices.Get).
		PUT("/:id", h.Invoices.Update).
		POST("/:id/send", h.Invoices.Send).
		POST("/:id/cancel", h.Invoices.Cancel).
		POST("/:id/void", h.Invoices.Void)

	payments := NewDomainGroup("payments", "/payments").
		POST("", middleware.IdempotencyKey(), h.Payments.Record).
		GET("", h.Payments.List).
		GET("/:id", h.Payments.Get).
		GET("/:id/allocations", h.Payments.ListAllocations).
		POST("/:id/allocations", h.Payments.Allocate).
		POST("/:id/void", h.Payments.Void)

	customers := NewDomainGroup("customers", "/customers").
		POST("", h.Customers.Create).
		GET("", h.Customers.List).
		POST("/recalculate", h.Customers.RecalculateAll).
		GET("/:id", h.Customers.Get).
		POST("/:id/apply-credit", h.Customers.ApplyCredit).
		POST("/:id/recalculate", h.Customers.Recalculate)

	ledger := NewDomainGroup("ledger", "/ledger")
	ledger.Group("accounts", "/accounts").
		POST("", h.Ledger.CreateAccount).
		GET("", h.Ledger.ListAccounts).
		POST("/initialize", h.Ledger.InitializeAccounts)
	ledger.Group("journal-entries", "/journal-entries").
		POST("", h.Ledger.CreateJournalEntry).
		GET("/:id", h.Ledger.GetJournalEntry).
		POST("/:id/post", h.Ledger.PostJournalEntry)
	ledger.GET("/trial-balance", h.Ledger.TrialBalance)

	return []*DomainGroup{invoices, payments, customers, ledger}
}
