package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportType identifies a generated financial statement.
type ReportType string

const (
	ReportBalanceSheet    ReportType = "balance_sheet"
	ReportIncomeStatement ReportType = "income_statement"
)

// ReportItemKind classifies a statement line.
type ReportItemKind string

const (
	ItemHeader     ReportItemKind = "header"
	ItemAccount    ReportItemKind = "account"
	ItemSubtotal   ReportItemKind = "subtotal"
	ItemTotal      ReportItemKind = "total"
	ItemCalculated ReportItemKind = "calculated"
)

// FinancialReport is a regenerable statement snapshot, unique on
// (company, type, fiscal year, fiscal period). Regeneration updates the
// existing row in place, never duplicates.
type FinancialReport struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Type         ReportType
	FiscalYear   int
	FiscalPeriod int
	BaseDate     time.Time
	GeneratedAt  time.Time

	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
	TotalRevenue     decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetIncome        decimal.Decimal

	CurrentRatio decimal.Decimal
	DebtRatio    decimal.Decimal
	EquityRatio  decimal.Decimal
	ReturnOnAssets decimal.Decimal
	ReturnOnEquity decimal.Decimal
	GrossMargin  decimal.Decimal
	NetMargin    decimal.Decimal

	Items []FinancialReportItem
}

// FinancialReportItem is one line of a statement. Items form a tree via
// ParentID; ACCOUNT lines reference the chart of accounts.
type FinancialReportItem struct {
	ID        uuid.UUID
	ReportID  uuid.UUID
	ParentID  uuid.UUID // uuid.Nil = top level
	Kind      ReportItemKind
	AccountID uuid.UUID // uuid.Nil unless Kind == ItemAccount
	Label     string
	SortOrder int

	Current      decimal.Decimal
	Previous     decimal.Decimal
	ChangeAmount decimal.Decimal
	ChangeRate   decimal.Decimal
}
