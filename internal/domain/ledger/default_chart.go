package ledger

// AccountTemplate describes one seeded account
type AccountTemplate struct {
	Code     string
	Name     string
	Type     AccountType
	Category string
}

// Account categories used by the default chart
const (
	CategoryCurrentAsset      = "current_asset"
	CategoryFixedAsset        = "fixed_asset"
	CategoryCurrentLiability  = "current_liability"
	CategoryLongTermLiability = "long_term_liability"
	CategoryEquity            = "equity"
	CategoryOperatingRevenue  = "operating_revenue"
	CategoryOtherRevenue      = "other_revenue"
	CategoryCostOfSales       = "cost_of_sales"
	CategoryOperatingExpense  = "operating_expense"
)

// DefaultChart is the fixed chart every tenant starts with. Seeded accounts
// are marked as system accounts.
var DefaultChart = []AccountTemplate{
	{"1000", "Cash", AccountTypeAsset, CategoryCurrentAsset},
	{"1010", "Petty Cash", AccountTypeAsset, CategoryCurrentAsset},
	{"1020", "Bank - Operating", AccountTypeAsset, CategoryCurrentAsset},
	{"1030", "Bank - Savings", AccountTypeAsset, CategoryCurrentAsset},
	{"1100", "Accounts Receivable", AccountTypeAsset, CategoryCurrentAsset},
	{"1150", "Allowance for Doubtful Accounts", AccountTypeAsset, CategoryCurrentAsset},
	{"1200", "Inventory", AccountTypeAsset, CategoryCurrentAsset},
	{"1300", "Prepaid Expenses", AccountTypeAsset, CategoryCurrentAsset},
	{"1500", "Equipment", AccountTypeAsset, CategoryFixedAsset},
	{"1510", "Accumulated Depreciation", AccountTypeAsset, CategoryFixedAsset},

	{"2000", "Accounts Payable", AccountTypeLiability, CategoryCurrentLiability},
	{"2100", "Accrued Liabilities", AccountTypeLiability, CategoryCurrentLiability},
	{"2200", "Sales Tax Payable", AccountTypeLiability, CategoryCurrentLiability},
	{"2300", "Customer Deposits", AccountTypeLiability, CategoryCurrentLiability},
	{"2400", "Payroll Liabilities", AccountTypeLiability, CategoryCurrentLiability},
	{"2500", "Loans Payable", AccountTypeLiability, CategoryLongTermLiability},

	{"3000", "Owner's Capital", AccountTypeEquity, CategoryEquity},
	{"3100", "Retained Earnings", AccountTypeEquity, CategoryEquity},
	{"3200", "Owner's Drawings", AccountTypeEquity, CategoryEquity},

	{"4000", "Sales Revenue", AccountTypeIncome, CategoryOperatingRevenue},
	{"4100", "Service Revenue", AccountTypeIncome, CategoryOperatingRevenue},
	{"4200", "Interest Income", AccountTypeIncome, CategoryOtherRevenue},
	{"4900", "Other Income", AccountTypeIncome, CategoryOtherRevenue},

	{"5000", "Cost of Goods Sold", AccountTypeExpense, CategoryCostOfSales},
	{"6000", "Salaries and Wages", AccountTypeExpense, CategoryOperatingExpense},
	{"6100", "Rent Expense", AccountTypeExpense, CategoryOperatingExpense},
	{"6200", "Utilities", AccountTypeExpense, CategoryOperatingExpense},
	{"6300", "Office Supplies", AccountTypeExpense, CategoryOperatingExpense},
	{"6400", "Depreciation Expense", AccountTypeExpense, CategoryOperatingExpense},
	{"6500", "Bank Fees", AccountTypeExpense, CategoryOperatingExpense},
}
