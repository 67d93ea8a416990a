package ledger

import (
	"testing"
	"time"

	"github.com/bizcms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestAccount(t *testing.T, tenantID uuid.UUID, code string, typ AccountType) *Account {
	t.Helper()
	acc, err := NewAccount(tenantID, code, "Account "+code, typ, "")
	require.NoError(t, err)
	return acc
}

func newTestEntry(t *testing.T, tenantID uuid.UUID, lines ...JournalLineInput) *JournalEntry {
	t.Helper()
	je, err := NewJournalEntry(tenantID, FormatEntryNumber(1), JournalEntryInput{
		EntryDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Description: "Cash sale",
		Lines:       lines,
	}, uuid.New())
	require.NoError(t, err)
	return je
}

// ============================================
// Account Tests
// ============================================

func TestAccountType_IsDebitNormal(t *testing.T) {
	tests := []struct {
		typ  AccountType
		want bool
	}{
		{AccountTypeAsset, true},
		{AccountTypeExpense, true},
		{AccountTypeLiability, false},
		{AccountTypeEquity, false},
		{AccountTypeIncome, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.True(t, tt.typ.IsValid())
			assert.Equal(t, tt.want, tt.typ.IsDebitNormal())
		})
	}
	assert.False(t, AccountType("revenue").IsValid())
}

func TestAccount_ApplyLine(t *testing.T) {
	tenant := uuid.New()
	cash := newTestAccount(t, tenant, "1000", AccountTypeAsset)
	revenue := newTestAccount(t, tenant, "4000", AccountTypeIncome)

	cash.ApplyLine(d("100"), decimal.Zero)
	revenue.ApplyLine(decimal.Zero, d("100"))
	assert.True(t, d("100").Equal(cash.CurrentBalance))
	assert.True(t, d("100").Equal(revenue.CurrentBalance))

	cash.ApplyLine(decimal.Zero, d("150"))
	assert.True(t, d("-50").Equal(cash.CurrentBalance))
	debit, credit := cash.Columns()
	assert.True(t, debit.IsZero())
	assert.True(t, d("50").Equal(credit))

	revenue.ApplyLine(d("130"), decimal.Zero)
	debit, credit = revenue.Columns()
	assert.True(t, d("30").Equal(debit))
	assert.True(t, credit.IsZero())
}

func TestNewAccount_Validation(t *testing.T) {
	_, err := NewAccount(uuid.New(), "", "Cash", AccountTypeAsset, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = NewAccount(uuid.New(), "1000", "", AccountTypeAsset, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = NewAccount(uuid.New(), "1000", "Cash", "bogus", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

// ============================================
// Journal Entry Tests
// ============================================

func TestFormatEntryNumber(t *testing.T) {
	assert.Equal(t, "JE-000001", FormatEntryNumber(1))
	assert.Equal(t, "JE-123456", FormatEntryNumber(123456))
}

func TestNewJournalEntry_Validation(t *testing.T) {
	acc := uuid.New()
	tests := []struct {
		name  string
		lines []JournalLineInput
	}{
		{"single line", []JournalLineInput{{AccountID: acc, DebitAmount: d("1")}}},
		{"both sides", []JournalLineInput{
			{AccountID: acc, DebitAmount: d("1"), CreditAmount: d("1")},
			{AccountID: acc, CreditAmount: d("1")},
		}},
		{"neither side", []JournalLineInput{
			{AccountID: acc},
			{AccountID: acc, CreditAmount: d("1")},
		}},
		{"negative", []JournalLineInput{
			{AccountID: acc, DebitAmount: d("-1")},
			{AccountID: acc, CreditAmount: d("1")},
		}},
		{"no account", []JournalLineInput{
			{DebitAmount: d("1")},
			{AccountID: acc, CreditAmount: d("1")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJournalEntry(uuid.New(), "JE-000001", JournalEntryInput{Description: "x", Lines: tt.lines}, uuid.Nil)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestJournalEntry_Post(t *testing.T) {
	tenant := uuid.New()
	cash := newTestAccount(t, tenant, "1000", AccountTypeAsset)
	revenue := newTestAccount(t, tenant, "4000", AccountTypeIncome)
	accounts := map[uuid.UUID]*Account{cash.ID: cash, revenue.ID: revenue}

	je := newTestEntry(t, tenant,
		JournalLineInput{AccountID: cash.ID, DebitAmount: d("100")},
		JournalLineInput{AccountID: revenue.ID, CreditAmount: d("100")},
	)
	assert.False(t, je.IsPosted)
	assert.True(t, je.IsBalanced())

	actor := uuid.New()
	require.NoError(t, je.Post(accounts, actor))
	assert.True(t, je.IsPosted)
	assert.NotNil(t, je.PostedAt)
	assert.Equal(t, actor, *je.PostedBy)
	assert.True(t, d("100").Equal(cash.CurrentBalance))
	assert.True(t, d("100").Equal(revenue.CurrentBalance))

	err := je.Post(accounts, actor)
	assert.ErrorIs(t, err, ErrAlreadyPosted)
	assert.True(t, d("100").Equal(cash.CurrentBalance))
}

func TestJournalEntry_PostUnbalanced(t *testing.T) {
	tenant := uuid.New()
	cash := newTestAccount(t, tenant, "1000", AccountTypeAsset)
	revenue := newTestAccount(t, tenant, "4000", AccountTypeIncome)
	accounts := map[uuid.UUID]*Account{cash.ID: cash, revenue.ID: revenue}

	je := newTestEntry(t, tenant,
		JournalLineInput{AccountID: cash.ID, DebitAmount: d("100")},
		JournalLineInput{AccountID: revenue.ID, CreditAmount: d("90")},
	)
	err := je.Post(accounts, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.False(t, je.IsPosted)
	assert.True(t, cash.CurrentBalance.IsZero())
	assert.True(t, revenue.CurrentBalance.IsZero())
}

func TestJournalEntry_PostMissingAccount(t *testing.T) {
	tenant := uuid.New()
	cash := newTestAccount(t, tenant, "1000", AccountTypeAsset)
	foreign := newTestAccount(t, uuid.New(), "4000", AccountTypeIncome)

	je := newTestEntry(t, tenant,
		JournalLineInput{AccountID: cash.ID, DebitAmount: d("10")},
		JournalLineInput{AccountID: foreign.ID, CreditAmount: d("10")},
	)
	err := je.Post(map[uuid.UUID]*Account{cash.ID: cash, foreign.ID: foreign}, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.True(t, cash.CurrentBalance.IsZero())
}

func TestJournalEntry_AccountIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	je := newTestEntry(t, uuid.New(),
		JournalLineInput{AccountID: a, DebitAmount: d("5")},
		JournalLineInput{AccountID: b, CreditAmount: d("3")},
		JournalLineInput{AccountID: a, CreditAmount: d("2")},
	)
	assert.Equal(t, []uuid.UUID{a, b}, je.AccountIDs())
	assert.True(t, d("5").Equal(je.TotalDebit()))
	assert.True(t, d("5").Equal(je.TotalCredit()))
}

// ============================================
// Trial Balance Tests
// ============================================

func TestBuildTrialBalance(t *testing.T) {
	tenant := uuid.New()
	revenue := newTestAccount(t, tenant, "4000", AccountTypeIncome)
	revenue.CurrentBalance = d("100")
	cash := newTestAccount(t, tenant, "1000", AccountTypeAsset)
	cash.CurrentBalance = d("100")
	inactive := newTestAccount(t, tenant, "1500", AccountTypeAsset)
	inactive.CurrentBalance = d("999")
	inactive.IsActive = false

	tb := BuildTrialBalance(tenant, []Account{*revenue, *cash, *inactive})
	require.Len(t, tb.Lines, 2)
	assert.Equal(t, "1000", tb.Lines[0].Code)
	assert.True(t, d("100").Equal(tb.Lines[0].Debit))
	assert.Equal(t, "4000", tb.Lines[1].Code)
	assert.True(t, d("100").Equal(tb.Lines[1].Credit))
	assert.True(t, d("100").Equal(tb.TotalDebit))
	assert.True(t, d("100").Equal(tb.TotalCredit))
	assert.True(t, tb.IsBalanced)

	again := BuildTrialBalance(tenant, []Account{*revenue, *cash, *inactive})
	assert.Equal(t, tb, again)
}

func TestBuildTrialBalance_Unbalanced(t *testing.T) {
	tenant := uuid.New()
	cash := newTestAccount(t, tenant, "1000", AccountTypeAsset)
	cash.CurrentBalance = d("100.01")
	revenue := newTestAccount(t, tenant, "4000", AccountTypeIncome)
	revenue.CurrentBalance = d("100")

	tb := BuildTrialBalance(tenant, []Account{*cash, *revenue})
	assert.False(t, tb.IsBalanced)
	assert.True(t, d("0.01").Equal(tb.Difference()))
}

func TestDefaultChart(t *testing.T) {
	require.Len(t, DefaultChart, 30)
	codes := make(map[string]bool)
	for _, tpl := range DefaultChart {
		assert.False(t, codes[tpl.Code], "duplicate code %s", tpl.Code)
		codes[tpl.Code] = true
		assert.True(t, tpl.Type.IsValid(), tpl.Code)
	}
}
