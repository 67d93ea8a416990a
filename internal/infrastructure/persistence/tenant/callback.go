// Package tenant guards multi-tenant writes at the GORM layer.
//
// Repositories always scope their statements by tenant explicitly. The guard
// registered here is a second line: an UPDATE or DELETE against a table that
// has a tenant column fails before reaching the database unless its WHERE
// clause names that column.
package tenant

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnscopedWrite is returned for a tenant table write without a tenant condition
var ErrUnscopedWrite = errors.New("write on tenant table without tenant_id condition")

// Guard holds the tenant column the callbacks look for
type Guard struct {
	tenantColumn string
}

// NewGuard creates a guard for tenantColumn, "tenant_id" when empty
func NewGuard(tenantColumn string) *Guard {
	if tenantColumn == "" {
		tenantColumn = "tenant_id"
	}
	return &Guard{tenantColumn: tenantColumn}
}

// Register installs the guard on the update and delete chains
func (g *Guard) Register(db *gorm.DB) error {
	if err := db.Callback().Update().Before("gorm:update").Register("tenant:guard_update", g.check); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("tenant:guard_delete", g.check)
}

// Unregister removes the callbacks again
func (g *Guard) Unregister(db *gorm.DB) {
	_ = db.Callback().Update().Remove("tenant:guard_update")
	_ = db.Callback().Delete().Remove("tenant:guard_delete")
}

func (g *Guard) check(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	if db.Statement.Schema.LookUpField(g.tenantColumn) == nil {
		return
	}
	if !g.hasTenantCondition(db) {
		_ = db.AddError(ErrUnscopedWrite)
	}
}

func (g *Guard) hasTenantCondition(db *gorm.DB) bool {
	whereClause, ok := db.Statement.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := whereClause.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if g.exprContainsTenant(expr) {
			return true
		}
	}
	return false
}

func (g *Guard) exprContainsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Expr:
		return strings.Contains(e.SQL, g.tenantColumn)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, g.tenantColumn)
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == g.tenantColumn
		}
		if col, ok := e.Column.(string); ok {
			return col == g.tenantColumn
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == g.tenantColumn
		}
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if g.exprContainsTenant(cond) {
				return true
			}
		}
	}
	// an OR branch can escape the tenant, so it never counts
	return false
}
