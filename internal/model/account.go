package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// BalanceSide is the side on which an account's balance normally increases.
type BalanceSide string

const (
	SideDebit  BalanceSide = "debit"
	SideCredit BalanceSide = "credit"
	SideBoth   BalanceSide = "both"
)

// NormalSide returns the normal balance side for an account type.
// ASSET/EXPENSE accounts grow with debits, the rest with credits.
func (t AccountType) NormalSide() BalanceSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// Rank orders account types the way statements list them:
// assets, liabilities, equity, revenue, expenses.
func (t AccountType) Rank() int {
	switch t {
	case AccountTypeAsset:
		return 0
	case AccountTypeLiability:
		return 1
	case AccountTypeEquity:
		return 2
	case AccountTypeRevenue:
		return 3
	default:
		return 4
	}
}

// Nominal reports whether the type is a nominal (income statement) account
// that gets cleared at year end.
func (t AccountType) Nominal() bool {
	return t == AccountTypeRevenue || t == AccountTypeExpense
}

// AccountCategory sub-classifies an account within its type.
type AccountCategory string

const (
	CategoryCurrentAsset        AccountCategory = "current_asset"
	CategoryNonCurrentAsset     AccountCategory = "non_current_asset"
	CategoryCurrentLiability    AccountCategory = "current_liability"
	CategoryNonCurrentLiability AccountCategory = "non_current_liability"
	CategoryCapital             AccountCategory = "capital"
	CategoryRetainedEarnings    AccountCategory = "retained_earnings"
	CategoryOperatingRevenue    AccountCategory = "operating_revenue"
	CategoryOtherRevenue        AccountCategory = "other_revenue"
	CategoryOperatingExpense    AccountCategory = "operating_expense"
	CategoryOtherExpense        AccountCategory = "other_expense"
)

// MaxAccountLevel bounds the depth of the chart of accounts.
const MaxAccountLevel = 10

// Account is one row in the chart of accounts. Parent/child links are id
// references resolved through the store; no materialized child collections.
type Account struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Code         string // numeric string, unique per company, max 20 chars
	Name         string
	Type         AccountType
	Category     AccountCategory
	Side         BalanceSide
	Level        int       // 1..MaxAccountLevel, parent.Level+1
	ParentID     uuid.UUID // uuid.Nil = root
	Leaf         bool      // no non-deleted children; only leaves are postable
	TrackBalance bool
	SortOrder    int
	Description  string

	OpeningBalance decimal.Decimal
	DebitBalance   decimal.Decimal
	CreditBalance  decimal.Decimal
	CurrentBalance decimal.Decimal
	BudgetAmount   decimal.Decimal

	Deleted bool // soft-delete tombstone, never hard-deleted
}

// SignedBalance converts raw debit/credit accumulators into a balance signed
// by the account's normal side: debit-normal accounts report debit-credit,
// credit-normal the reverse. SideBoth is treated as debit-normal.
func (a Account) SignedBalance() decimal.Decimal {
	if a.Side == SideCredit {
		return a.CreditBalance.Sub(a.DebitBalance)
	}
	return a.DebitBalance.Sub(a.CreditBalance)
}
