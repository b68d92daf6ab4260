// Package store defines the persistence ports of the accounting core.
// Adapters live in store/memory and store/postgres; services only ever see
// these interfaces.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/model"
)

// Store bundles the repositories behind a single transactional boundary.
type Store interface {
	Accounts() AccountRepository
	Transactions() TransactionRepository
	Budgets() BudgetRepository
	Reports() ReportRepository
	Sequences() SequenceRepository
	Audit() audit.Log

	// WithinTx runs fn against a transactional view of the store. All
	// writes made through the view commit atomically when fn returns nil
	// and are discarded when it returns an error. Readers outside the
	// transaction never observe a partial commit.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// AccountRepository persists the chart of accounts. Uniqueness of
// (company, code) is enforced here.
type AccountRepository interface {
	Create(ctx context.Context, account model.Account) error
	Get(ctx context.Context, id uuid.UUID) (model.Account, error)
	GetByCode(ctx context.Context, companyID uuid.UUID, code string) (model.Account, error)
	Update(ctx context.Context, account model.Account) error
	// ListByCompany returns non-deleted accounts ordered by
	// (type, sort order, code).
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Account, error)
	// ListChildren returns non-deleted direct children of an account.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]model.Account, error)
}

// TransactionFilter narrows transaction queries. Zero values mean "any".
type TransactionFilter struct {
	CompanyID   uuid.UUID
	AccountID   uuid.UUID
	Statuses    []model.TransactionStatus
	From, To    time.Time // inclusive date bounds
	FiscalYear  int
	FiscalMonth int
}

// TransactionRepository persists journal lines. Number uniqueness is
// enforced here.
type TransactionRepository interface {
	// CreateBatch writes all lines or none of them.
	CreateBatch(ctx context.Context, txns []model.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (model.Transaction, error)
	Update(ctx context.Context, txn model.Transaction) error
	// List returns matches ordered by date then number.
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	Count(ctx context.Context, filter TransactionFilter) (int, error)
}

// BudgetRepository persists budgets and their append-only revision trail.
// Uniqueness of (company, account, year, period, period number) is
// enforced here.
type BudgetRepository interface {
	Create(ctx context.Context, budget model.Budget) error
	Get(ctx context.Context, id uuid.UUID) (model.Budget, error)
	GetByKey(ctx context.Context, companyID, accountID uuid.UUID, fiscalYear int, period model.BudgetPeriod, periodNumber int) (model.Budget, error)
	Update(ctx context.Context, budget model.Budget) error
	ListByCompanyYear(ctx context.Context, companyID uuid.UUID, fiscalYear int) ([]model.Budget, error)
	AppendRevision(ctx context.Context, revision model.BudgetRevision) error
	ListRevisions(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetRevision, error)
}

// ReportRepository persists statement snapshots keyed by
// (company, type, fiscal year, fiscal period).
type ReportRepository interface {
	// Upsert inserts the report or, when the key already exists, updates
	// the existing row in place, keeping its id. Items are replaced.
	Upsert(ctx context.Context, report model.FinancialReport) (model.FinancialReport, error)
	GetByKey(ctx context.Context, companyID uuid.UUID, reportType model.ReportType, fiscalYear, fiscalPeriod int) (model.FinancialReport, error)
}

// SequenceRepository hands out durable monotonic counters, keyed per
// company. Next never returns the same value twice for a key.
type SequenceRepository interface {
	Next(ctx context.Context, companyID uuid.UUID, key string) (int, error)
}
