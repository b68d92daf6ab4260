package accounts

import "github.com/closebooks-dev/closebooks/internal/model"

// DefaultChartEntry seeds one account when initializing a company's books.
// Parent links are by code so the chart is order-independent to read.
type DefaultChartEntry struct {
	Code       string
	Name       string
	Type       model.AccountType
	Category   model.AccountCategory
	ParentCode string // empty = root
}

// DefaultChart returns the seed chart of accounts for a new company:
// typed roots with postable leaves underneath.
func DefaultChart() []DefaultChartEntry {
	return []DefaultChartEntry{
		{Code: "1000", Name: "Assets", Type: model.AccountTypeAsset, Category: model.CategoryCurrentAsset},
		{Code: "1100", Name: "Cash and Bank", Type: model.AccountTypeAsset, Category: model.CategoryCurrentAsset, ParentCode: "1000"},
		{Code: "1200", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Category: model.CategoryCurrentAsset, ParentCode: "1000"},
		{Code: "1500", Name: "Equipment", Type: model.AccountTypeAsset, Category: model.CategoryNonCurrentAsset, ParentCode: "1000"},
		{Code: "2000", Name: "Liabilities", Type: model.AccountTypeLiability, Category: model.CategoryCurrentLiability},
		{Code: "2100", Name: "Accounts Payable", Type: model.AccountTypeLiability, Category: model.CategoryCurrentLiability, ParentCode: "2000"},
		{Code: "2500", Name: "Long-Term Debt", Type: model.AccountTypeLiability, Category: model.CategoryNonCurrentLiability, ParentCode: "2000"},
		{Code: "3000", Name: "Equity", Type: model.AccountTypeEquity, Category: model.CategoryCapital},
		{Code: "3100", Name: "Paid-In Capital", Type: model.AccountTypeEquity, Category: model.CategoryCapital, ParentCode: "3000"},
		{Code: "3200", Name: "Retained Earnings", Type: model.AccountTypeEquity, Category: model.CategoryRetainedEarnings, ParentCode: "3000"},
		{Code: "4000", Name: "Revenue", Type: model.AccountTypeRevenue, Category: model.CategoryOperatingRevenue},
		{Code: "4100", Name: "Sales Revenue", Type: model.AccountTypeRevenue, Category: model.CategoryOperatingRevenue, ParentCode: "4000"},
		{Code: "4900", Name: "Other Revenue", Type: model.AccountTypeRevenue, Category: model.CategoryOtherRevenue, ParentCode: "4000"},
		{Code: "5000", Name: "Expenses", Type: model.AccountTypeExpense, Category: model.CategoryOperatingExpense},
		{Code: "5100", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense, Category: model.CategoryOperatingExpense, ParentCode: "5000"},
		{Code: "5200", Name: "Salaries and Wages", Type: model.AccountTypeExpense, Category: model.CategoryOperatingExpense, ParentCode: "5000"},
		{Code: "5300", Name: "Rent", Type: model.AccountTypeExpense, Category: model.CategoryOperatingExpense, ParentCode: "5000"},
		{Code: "5900", Name: "Other Expenses", Type: model.AccountTypeExpense, Category: model.CategoryOtherExpense, ParentCode: "5000"},
	}
}
