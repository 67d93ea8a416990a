// Package models contains GORM persistence models that map to database tables.
// Domain types carry no ORM tags; each model here owns the table mapping and
// converts to and from its domain counterpart with ToDomain / FromDomain.
//
// Structure:
//   - base.go: shared columns (id, timestamps, version, tenant)
//   - finance.go: invoices, invoice items, payments, payment allocations
//   - partner.go: customers and their cached balances
//   - ledger.go: chart of accounts, journal entries and lines
//   - numbering.go: per-tenant document number sequences
package models
