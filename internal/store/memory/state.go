package memory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// state holds every table plus the uniqueness indexes. All methods assume
// the caller holds the appropriate lock.
type state struct {
	accounts     map[uuid.UUID]model.Account
	accountCodes map[string]uuid.UUID

	txns       map[uuid.UUID]model.Transaction
	txnNumbers map[string]uuid.UUID

	budgets    map[uuid.UUID]model.Budget
	budgetKeys map[string]uuid.UUID
	revisions  map[uuid.UUID][]model.BudgetRevision

	reports map[string]model.FinancialReport

	sequences map[string]int

	auditTrail map[uuid.UUID][]audit.Entry
}

func newState() *state {
	return &state{
		accounts:     make(map[uuid.UUID]model.Account),
		accountCodes: make(map[string]uuid.UUID),
		txns:         make(map[uuid.UUID]model.Transaction),
		txnNumbers:   make(map[string]uuid.UUID),
		budgets:      make(map[uuid.UUID]model.Budget),
		budgetKeys:   make(map[string]uuid.UUID),
		revisions:    make(map[uuid.UUID][]model.BudgetRevision),
		reports:      make(map[string]model.FinancialReport),
		sequences:    make(map[string]int),
		auditTrail:   make(map[uuid.UUID][]audit.Entry),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.accountCodes {
		c.accountCodes[k] = v
	}
	for k, v := range st.txns {
		c.txns[k] = v
	}
	for k, v := range st.txnNumbers {
		c.txnNumbers[k] = v
	}
	for k, v := range st.budgets {
		c.budgets[k] = v
	}
	for k, v := range st.budgetKeys {
		c.budgetKeys[k] = v
	}
	for k, v := range st.revisions {
		c.revisions[k] = append([]model.BudgetRevision(nil), v...)
	}
	for k, v := range st.reports {
		r := v
		r.Items = append([]model.FinancialReportItem(nil), v.Items...)
		c.reports[k] = r
	}
	for k, v := range st.sequences {
		c.sequences[k] = v
	}
	for k, v := range st.auditTrail {
		c.auditTrail[k] = append([]audit.Entry(nil), v...)
	}
	return c
}

// --- accounts ---

func (st *state) createAccount(a model.Account) error {
	if _, ok := st.accounts[a.ID]; ok {
		return apperrors.Duplicatef("account %s already exists", a.ID)
	}
	key := accountCodeKey(a.CompanyID, a.Code)
	if _, ok := st.accountCodes[key]; ok {
		return apperrors.Duplicatef("account code %s already exists for company", a.Code)
	}
	st.accounts[a.ID] = a
	st.accountCodes[key] = a.ID
	return nil
}

func (st *state) getAccount(id uuid.UUID) (model.Account, error) {
	a, ok := st.accounts[id]
	if !ok {
		return model.Account{}, apperrors.NotFoundf("account %s not found", id)
	}
	return a, nil
}

func (st *state) getAccountByCode(companyID uuid.UUID, code string) (model.Account, error) {
	id, ok := st.accountCodes[accountCodeKey(companyID, code)]
	if !ok {
		return model.Account{}, apperrors.NotFoundf("account code %s not found", code)
	}
	return st.accounts[id], nil
}

func (st *state) updateAccount(a model.Account) error {
	if _, ok := st.accounts[a.ID]; !ok {
		return apperrors.NotFoundf("account %s not found", a.ID)
	}
	st.accounts[a.ID] = a
	return nil
}

func (st *state) listAccountsByCompany(companyID uuid.UUID) []model.Account {
	var out []model.Account
	for _, a := range st.accounts {
		if a.CompanyID == companyID && !a.Deleted {
			out = append(out, a)
		}
	}
	sortAccounts(out)
	return out
}

func (st *state) listChildren(parentID uuid.UUID) []model.Account {
	var out []model.Account
	for _, a := range st.accounts {
		if a.ParentID == parentID && !a.Deleted {
			out = append(out, a)
		}
	}
	sortAccounts(out)
	return out
}

func sortAccounts(accounts []model.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		a, b := accounts[i], accounts[j]
		if a.Type != b.Type {
			return a.Type.Rank() < b.Type.Rank()
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Code < b.Code
	})
}

// --- transactions ---

func (st *state) createTransactions(txns []model.Transaction) error {
	// Check every number before writing anything.
	seen := make(map[string]bool, len(txns))
	for _, t := range txns {
		if _, ok := st.txns[t.ID]; ok {
			return apperrors.Duplicatef("transaction %s already exists", t.ID)
		}
		if _, ok := st.txnNumbers[t.Number]; ok || seen[t.Number] {
			return apperrors.Duplicatef("transaction number %s already exists", t.Number)
		}
		seen[t.Number] = true
	}
	for _, t := range txns {
		st.txns[t.ID] = t
		st.txnNumbers[t.Number] = t.ID
	}
	return nil
}

func (st *state) getTransaction(id uuid.UUID) (model.Transaction, error) {
	t, ok := st.txns[id]
	if !ok {
		return model.Transaction{}, apperrors.NotFoundf("transaction %s not found", id)
	}
	return t, nil
}

func (st *state) updateTransaction(t model.Transaction) error {
	if _, ok := st.txns[t.ID]; !ok {
		return apperrors.NotFoundf("transaction %s not found", t.ID)
	}
	st.txns[t.ID] = t
	return nil
}

func (st *state) listTransactions(f store.TransactionFilter) []model.Transaction {
	var out []model.Transaction
	for _, t := range st.txns {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Number < out[j].Number
	})
	return out
}

func matches(t model.Transaction, f store.TransactionFilter) bool {
	if f.CompanyID != uuid.Nil && t.CompanyID != f.CompanyID {
		return false
	}
	if f.AccountID != uuid.Nil && t.AccountID != f.AccountID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	if f.FiscalYear != 0 && t.FiscalYear != f.FiscalYear {
		return false
	}
	if f.FiscalMonth != 0 && t.FiscalMonth != f.FiscalMonth {
		return false
	}
	return true
}

// --- budgets ---

func (st *state) createBudget(b model.Budget) error {
	if _, ok := st.budgets[b.ID]; ok {
		return apperrors.Duplicatef("budget %s already exists", b.ID)
	}
	key := budgetKey(b.CompanyID, b.AccountID, b.FiscalYear, b.Period, b.PeriodNumber)
	if _, ok := st.budgetKeys[key]; ok {
		return apperrors.Duplicatef("budget already exists for account %s, year %d, %s period %d",
			b.AccountID, b.FiscalYear, b.Period, b.PeriodNumber)
	}
	st.budgets[b.ID] = b
	st.budgetKeys[key] = b.ID
	return nil
}

func (st *state) getBudget(id uuid.UUID) (model.Budget, error) {
	b, ok := st.budgets[id]
	if !ok {
		return model.Budget{}, apperrors.NotFoundf("budget %s not found", id)
	}
	return b, nil
}

func (st *state) getBudgetByKey(companyID, accountID uuid.UUID, year int, period model.BudgetPeriod, number int) (model.Budget, error) {
	id, ok := st.budgetKeys[budgetKey(companyID, accountID, year, period, number)]
	if !ok {
		return model.Budget{}, apperrors.NotFoundf("budget not found for account %s, year %d, %s period %d",
			accountID, year, period, number)
	}
	return st.budgets[id], nil
}

func (st *state) updateBudget(b model.Budget) error {
	if _, ok := st.budgets[b.ID]; !ok {
		return apperrors.NotFoundf("budget %s not found", b.ID)
	}
	st.budgets[b.ID] = b
	return nil
}

func (st *state) listBudgetsByCompanyYear(companyID uuid.UUID, year int) []model.Budget {
	var out []model.Budget
	for _, b := range st.budgets {
		if b.CompanyID == companyID && b.FiscalYear == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID.String() < out[j].AccountID.String()
		}
		return out[i].PeriodNumber < out[j].PeriodNumber
	})
	return out
}

func (st *state) appendRevision(r model.BudgetRevision) error {
	if _, ok := st.budgets[r.BudgetID]; !ok {
		return apperrors.NotFoundf("budget %s not found", r.BudgetID)
	}
	st.revisions[r.BudgetID] = append(st.revisions[r.BudgetID], r)
	return nil
}

func (st *state) listRevisions(budgetID uuid.UUID) []model.BudgetRevision {
	return append([]model.BudgetRevision(nil), st.revisions[budgetID]...)
}

// --- reports ---

func (st *state) upsertReport(r model.FinancialReport) model.FinancialReport {
	key := reportKey(r.CompanyID, r.Type, r.FiscalYear, r.FiscalPeriod)
	if existing, ok := st.reports[key]; ok {
		r.ID = existing.ID // update in place, key maps to one row forever
	} else if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	for i := range r.Items {
		r.Items[i].ReportID = r.ID
	}
	st.reports[key] = r
	return r
}

func (st *state) getReportByKey(companyID uuid.UUID, reportType model.ReportType, year, period int) (model.FinancialReport, error) {
	r, ok := st.reports[reportKey(companyID, reportType, year, period)]
	if !ok {
		return model.FinancialReport{}, apperrors.NotFoundf("report %s not found for year %d period %d",
			reportType, year, period)
	}
	return r, nil
}

// --- sequences ---

func (st *state) nextSequence(companyID uuid.UUID, key string) int {
	k := sequenceKey(companyID, key)
	st.sequences[k]++
	return st.sequences[k]
}

// --- audit ---

func (st *state) appendAudit(entries []audit.Entry) {
	for _, e := range entries {
		st.auditTrail[e.EntityID] = append(st.auditTrail[e.EntityID], e)
	}
}

func (st *state) listAudit(entityID uuid.UUID) []audit.Entry {
	return append([]audit.Entry(nil), st.auditTrail[entityID]...)
}
