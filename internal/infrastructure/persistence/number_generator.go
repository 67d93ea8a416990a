package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bizcms/backend/internal/domain/finance"
	"github.com/bizcms/backend/internal/domain/ledger"
	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/bizcms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// numberSource names the table and column holding documents of a series.
// A series that has no sequence row yet starts after the highest number
// already stored there, so imported or pre-existing documents never collide.
type numberSource struct {
	table  string
	column string
}

var numberSources = map[string]numberSource{
	finance.InvoiceNumberPrefix: {table: "invoices", column: "invoice_number"},
	finance.PaymentNumberPrefix: {table: "payments", column: "payment_number"},
	ledger.EntryNumberPrefix:    {table: "journal_entries", column: "entry_number"},
}

// GormNumberGenerator implements shared.NumberGenerator on the
// number_sequences table. Bind it to the transaction that stores the
// document; the series row stays locked until that transaction ends.
type GormNumberGenerator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormNumberGenerator creates a new GormNumberGenerator
func NewGormNumberGenerator(db *gorm.DB) *GormNumberGenerator {
	return &GormNumberGenerator{db: db, now: time.Now}
}

// Next increments the series and returns the new value
func (g *GormNumberGenerator) Next(ctx context.Context, key shared.SequenceKey) (int64, error) {
	db := g.db.WithContext(ctx)
	now := g.now()

	var seq models.NumberSequenceModel
	result := db.Model(&seq).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "last_value"}}}).
		Where("tenant_id = ? AND prefix = ? AND period = ?", key.TenantID, key.Prefix, key.Period).
		Updates(map[string]any{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("advance sequence %s/%d: %w", key.Prefix, key.Period, result.Error)
	}
	if result.RowsAffected > 0 {
		return seq.LastValue, nil
	}

	seed, err := g.highestExisting(db, key)
	if err != nil {
		return 0, err
	}

	// Two first callers can race here; the loser turns into an increment.
	row := models.NumberSequenceModel{
		TenantID:  key.TenantID,
		Prefix:    key.Prefix,
		Period:    key.Period,
		LastValue: seed + 1,
		UpdatedAt: now,
	}
	err = db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "prefix"}, {Name: "period"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_value": gorm.Expr("number_sequences.last_value + 1"),
				"updated_at": now,
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "last_value"}}},
	).Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("start sequence %s/%d: %w", key.Prefix, key.Period, err)
	}
	return row.LastValue, nil
}

// highestExisting returns the largest numeric suffix among stored documents
// of the series, or 0.
func (g *GormNumberGenerator) highestExisting(db *gorm.DB, key shared.SequenceKey) (int64, error) {
	src, ok := numberSources[key.Prefix]
	if !ok {
		return 0, nil
	}
	var numbers []string
	err := db.Table(src.table).
		Where("tenant_id = ? AND "+src.column+" LIKE ?", key.TenantID, seriesPattern(key)).
		Pluck(src.column, &numbers).Error
	if err != nil {
		return 0, fmt.Errorf("scan existing %s numbers: %w", key.Prefix, err)
	}
	var highest int64
	for _, n := range numbers {
		if v, ok := numberSuffix(n); ok && v > highest {
			highest = v
		}
	}
	return highest, nil
}

func seriesPattern(key shared.SequenceKey) string {
	if key.Period > 0 {
		return fmt.Sprintf("%s-%04d-%%", key.Prefix, key.Period)
	}
	return key.Prefix + "-%"
}

func numberSuffix(number string) (int64, bool) {
	i := strings.LastIndex(number, "-")
	if i < 0 || i == len(number)-1 {
		return 0, false
	}
	v, err := strconv.ParseInt(number[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var _ shared.NumberGenerator = (*GormNumberGenerator)(nil)
