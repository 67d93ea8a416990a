package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bizcms/backend/internal/infrastructure/persistence/models"
	"github.com/bizcms/backend/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newMockGormDB opens GORM with the postgres dialector on a sqlmock connection
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// newSQLiteDB returns an in-memory database with every finance table and the
// tenant-scoped unique keys the migrations define
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, tenant.NewGuard("").Register(db))
	for _, stmt := range []string{
		"CREATE UNIQUE INDEX ux_customers_tenant_code ON customers(tenant_id, code)",
		"CREATE UNIQUE INDEX ux_invoices_tenant_number ON invoices(tenant_id, invoice_number)",
		"CREATE UNIQUE INDEX ux_payments_tenant_number ON payments(tenant_id, payment_number)",
		"CREATE UNIQUE INDEX ux_accounts_tenant_code ON accounts(tenant_id, code)",
		"CREATE UNIQUE INDEX ux_journal_entries_tenant_number ON journal_entries(tenant_id, entry_number)",
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
