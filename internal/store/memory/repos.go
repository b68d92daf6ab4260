package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

type accountRepo struct{ v view }

func (r accountRepo) Create(ctx context.Context, a model.Account) error {
	return r.v.run(true, func(st *state) error { return st.createAccount(a) })
}

func (r accountRepo) Get(ctx context.Context, id uuid.UUID) (model.Account, error) {
	var out model.Account
	err := r.v.run(false, func(st *state) (err error) {
		out, err = st.getAccount(id)
		return err
	})
	return out, err
}

func (r accountRepo) GetByCode(ctx context.Context, companyID uuid.UUID, code string) (model.Account, error) {
	var out model.Account
	err := r.v.run(false, func(st *state) (err error) {
		out, err = st.getAccountByCode(companyID, code)
		return err
	})
	return out, err
}

func (r accountRepo) Update(ctx context.Context, a model.Account) error {
	return r.v.run(true, func(st *state) error { return st.updateAccount(a) })
}

func (r accountRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Account, error) {
	var out []model.Account
	err := r.v.run(false, func(st *state) error {
		out = st.listAccountsByCompany(companyID)
		return nil
	})
	return out, err
}

func (r accountRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]model.Account, error) {
	var out []model.Account
	err := r.v.run(false, func(st *state) error {
		out = st.listChildren(parentID)
		return nil
	})
	return out, err
}

type txnRepo struct{ v view }

func (r txnRepo) CreateBatch(ctx context.Context, txns []model.Transaction) error {
	return r.v.run(true, func(st *state) error { return st.createTransactions(txns) })
}

func (r txnRepo) Get(ctx context.Context, id uuid.UUID) (model.Transaction, error) {
	var out model.Transaction
	err := r.v.run(false, func(st *state) (err error) {
		out, err = st.getTransaction(id)
		return err
	})
	return out, err
}

func (r txnRepo) Update(ctx context.Context, t model.Transaction) error {
	return r.v.run(true, func(st *state) error { return st.updateTransaction(t) })
}

func (r txnRepo) List(ctx context.Context, f store.TransactionFilter) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.v.run(false, func(st *state) error {
		out = st.listTransactions(f)
		return nil
	})
	return out, err
}

func (r txnRepo) Count(ctx context.Context, f store.TransactionFilter) (int, error) {
	var n int
	err := r.v.run(false, func(st *state) error {
		n = len(st.listTransactions(f))
		return nil
	})
	return n, err
}

type budgetRepo struct{ v view }

func (r budgetRepo) Create(ctx context.Context, b model.Budget) error {
	return r.v.run(true, func(st *state) error { return st.createBudget(b) })
}

func (r budgetRepo) Get(ctx context.Context, id uuid.UUID) (model.Budget, error) {
	var out model.Budget
	err := r.v.run(false, func(st *state) (err error) {
		out, err = st.getBudget(id)
		return err
	})
	return out, err
}

func (r budgetRepo) GetByKey(ctx context.Context, companyID, accountID uuid.UUID, year int, period model.BudgetPeriod, number int) (model.Budget, error) {
	var out model.Budget
	err := r.v.run(false, func(st *state) (err error) {
		out, err = st.getBudgetByKey(companyID, accountID, year, period, number)
		return err
	})
	return out, err
}

func (r budgetRepo) Update(ctx context.Context, b model.Budget) error {
	return r.v.run(true, func(st *state) error { return st.updateBudget(b) })
}

func (r budgetRepo) ListByCompanyYear(ctx context.Context, companyID uuid.UUID, year int) ([]model.Budget, error) {
	var out []model.Budget
	err := r.v.run(false, func(st *state) error {
		out = st.listBudgetsByCompanyYear(companyID, year)
		return nil
	})
	return out, err
}

func (r budgetRepo) AppendRevision(ctx context.Context, rev model.BudgetRevision) error {
	return r.v.run(true, func(st *state) error { return st.appendRevision(rev) })
}

func (r budgetRepo) ListRevisions(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetRevision, error) {
	var out []model.BudgetRevision
	err := r.v.run(false, func(st *state) error {
		out = st.listRevisions(budgetID)
		return nil
	})
	return out, err
}

type reportRepo struct{ v view }

func (r reportRepo) Upsert(ctx context.Context, report model.FinancialReport) (model.FinancialReport, error) {
	var out model.FinancialReport
	err := r.v.run(true, func(st *state) error {
		out = st.upsertReport(report)
		return nil
	})
	return out, err
}

func (r reportRepo) GetByKey(ctx context.Context, companyID uuid.UUID, reportType model.ReportType, year, period int) (model.FinancialReport, error) {
	var out model.FinancialReport
	err := r.v.run(false, func(st *state) (err error) {
		out, err = st.getReportByKey(companyID, reportType, year, period)
		return err
	})
	return out, err
}

type seqRepo struct{ v view }

func (r seqRepo) Next(ctx context.Context, companyID uuid.UUID, key string) (int, error) {
	var n int
	err := r.v.run(true, func(st *state) error {
		n = st.nextSequence(companyID, key)
		return nil
	})
	return n, err
}

type auditRepo struct{ v view }

func (r auditRepo) Append(ctx context.Context, entries ...audit.Entry) error {
	return r.v.run(true, func(st *state) error {
		st.appendAudit(entries)
		return nil
	})
}

func (r auditRepo) List(ctx context.Context, entityID uuid.UUID) ([]audit.Entry, error) {
	var out []audit.Entry
	err := r.v.run(false, func(st *state) error {
		out = st.listAudit(entityID)
		return nil
	})
	return out, err
}
