package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetType says what kind of account a budget may be attached to.
type BudgetType string

const (
	BudgetTypeRevenue BudgetType = "revenue"
	BudgetTypeExpense BudgetType = "expense"
	BudgetTypeCapital BudgetType = "capital"
)

// BudgetPeriod is the granularity a budget is planned at.
type BudgetPeriod string

const (
	PeriodMonthly   BudgetPeriod = "monthly"
	PeriodQuarterly BudgetPeriod = "quarterly"
	PeriodAnnual    BudgetPeriod = "annual"
)

// MaxPeriodNumber returns the largest valid period number for the
// granularity: 12 monthly, 4 quarterly, 1 annual.
func (p BudgetPeriod) MaxPeriodNumber() int {
	switch p {
	case PeriodMonthly:
		return 12
	case PeriodQuarterly:
		return 4
	default:
		return 1
	}
}

// BudgetStatus is the lifecycle state of a budget.
type BudgetStatus string

const (
	BudgetDraft     BudgetStatus = "draft"
	BudgetSubmitted BudgetStatus = "submitted"
	BudgetApproved  BudgetStatus = "approved"
	BudgetActive    BudgetStatus = "active"
	BudgetClosed    BudgetStatus = "closed"
	BudgetCancelled BudgetStatus = "cancelled"
)

// Budget is a planned amount for one account and fiscal period, unique on
// (company, account, year, period granularity, period number).
type Budget struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	AccountID    uuid.UUID
	Type         BudgetType
	FiscalYear   int
	Period       BudgetPeriod
	PeriodNumber int
	Status       BudgetStatus

	Amount         decimal.Decimal
	PreviousActual decimal.Decimal
	CurrentActual  decimal.Decimal

	// Derived by budget.CalculateVariance; stored for reporting.
	AchievementRate decimal.Decimal
	VarianceAmount  decimal.Decimal
	VarianceRate    decimal.Decimal
}

// BudgetRevision is one immutable row in a budget's revision audit trail.
// Revisions are only ever appended, never edited or deleted.
type BudgetRevision struct {
	ID        uuid.UUID
	BudgetID  uuid.UUID
	OldAmount decimal.Decimal
	NewAmount decimal.Decimal
	Reason    string
	Actor     string
	RevisedAt time.Time
}
