package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/money"
)

// statementTotals accumulates leaf balances into statement buckets.
type statementTotals struct {
	currentAssets         decimal.Decimal
	nonCurrentAssets      decimal.Decimal
	currentLiabilities    decimal.Decimal
	nonCurrentLiabilities decimal.Decimal
	equity                decimal.Decimal
	operatingRevenue      decimal.Decimal
	otherRevenue          decimal.Decimal
	operatingExpenses     decimal.Decimal
	otherExpenses         decimal.Decimal

	assets      decimal.Decimal
	liabilities decimal.Decimal
	revenue     decimal.Decimal
	expenses    decimal.Decimal
}

func newStatementTotals() *statementTotals {
	z := decimal.Zero
	return &statementTotals{
		currentAssets: z, nonCurrentAssets: z,
		currentLiabilities: z, nonCurrentLiabilities: z,
		equity:           z,
		operatingRevenue: z, otherRevenue: z,
		operatingExpenses: z, otherExpenses: z,
		assets: z, liabilities: z, revenue: z, expenses: z,
	}
}

func (t *statementTotals) add(account model.Account, amount decimal.Decimal) {
	switch account.Type {
	case model.AccountTypeAsset:
		t.assets = t.assets.Add(amount)
		if account.Category == model.CategoryNonCurrentAsset {
			t.nonCurrentAssets = t.nonCurrentAssets.Add(amount)
		} else {
			t.currentAssets = t.currentAssets.Add(amount)
		}
	case model.AccountTypeLiability:
		t.liabilities = t.liabilities.Add(amount)
		if account.Category == model.CategoryNonCurrentLiability {
			t.nonCurrentLiabilities = t.nonCurrentLiabilities.Add(amount)
		} else {
			t.currentLiabilities = t.currentLiabilities.Add(amount)
		}
	case model.AccountTypeEquity:
		t.equity = t.equity.Add(amount)
	case model.AccountTypeRevenue:
		t.revenue = t.revenue.Add(amount)
		if account.Category == model.CategoryOtherRevenue {
			t.otherRevenue = t.otherRevenue.Add(amount)
		} else {
			t.operatingRevenue = t.operatingRevenue.Add(amount)
		}
	case model.AccountTypeExpense:
		t.expenses = t.expenses.Add(amount)
		if account.Category == model.CategoryOtherExpense {
			t.otherExpenses = t.otherExpenses.Add(amount)
		} else {
			t.operatingExpenses = t.operatingExpenses.Add(amount)
		}
	}
}

// GenerateStatement builds a statement snapshot for the key
// (company, type, fiscalYear, fiscalPeriod) from leaf account balances as
// of baseDate and persists it. Regenerating the same key updates the
// existing snapshot in place; no duplicate keys ever exist.
func (s *Service) GenerateStatement(ctx context.Context, companyID uuid.UUID, reportType model.ReportType, fiscalYear, fiscalPeriod int, baseDate time.Time) (model.FinancialReport, error) {
	if reportType != model.ReportBalanceSheet && reportType != model.ReportIncomeStatement {
		return model.FinancialReport{}, apperrors.Validationf("unknown report type %q", reportType)
	}

	accountList, err := s.store.Accounts().ListByCompany(ctx, companyID)
	if err != nil {
		return model.FinancialReport{}, err
	}

	totals := newStatementTotals()
	type leafBalance struct {
		account model.Account
		amount  decimal.Decimal
	}
	var leaves []leafBalance

	for _, account := range accountList {
		if !account.Leaf || !account.TrackBalance {
			continue
		}
		debit, credit, err := postedSums(ctx, s.store, account.ID, time.Time{}, baseDate)
		if err != nil {
			return model.FinancialReport{}, err
		}
		amount := account.OpeningBalance.Add(signed(account.Side, debit, credit))
		totals.add(account, amount)
		leaves = append(leaves, leafBalance{account: account, amount: amount})
	}

	netIncome := totals.revenue.Sub(totals.expenses)
	operatingIncome := totals.operatingRevenue.Sub(totals.operatingExpenses)

	report := model.FinancialReport{
		CompanyID:        companyID,
		Type:             reportType,
		FiscalYear:       fiscalYear,
		FiscalPeriod:     fiscalPeriod,
		BaseDate:         baseDate,
		GeneratedAt:      s.now(),
		TotalAssets:      totals.assets,
		TotalLiabilities: totals.liabilities,
		TotalEquity:      totals.equity,
		TotalRevenue:     totals.revenue,
		TotalExpenses:    totals.expenses,
		NetIncome:        netIncome,

		CurrentRatio:   money.Round(money.Ratio(totals.currentAssets, totals.currentLiabilities)),
		DebtRatio:      money.Percent(totals.liabilities, totals.assets),
		EquityRatio:    money.Percent(totals.equity, totals.assets),
		ReturnOnAssets: money.Percent(netIncome, totals.assets),
		ReturnOnEquity: money.Percent(netIncome, totals.equity),
		GrossMargin:    money.Percent(operatingIncome, totals.revenue),
		NetMargin:      money.Percent(netIncome, totals.revenue),
	}

	previous := s.previousAmounts(ctx, companyID, reportType, fiscalYear, fiscalPeriod)
	b := newItemBuilder(previous)

	if reportType == model.ReportBalanceSheet {
		assets := b.header("Assets")
		for _, l := range leaves {
			if l.account.Type == model.AccountTypeAsset {
				b.account(assets, l.account, l.amount)
			}
		}
		b.subtotal(assets, "Current Assets", totals.currentAssets)
		b.subtotal(assets, "Non-Current Assets", totals.nonCurrentAssets)
		b.total("Total Assets", totals.assets)

		liabilities := b.header("Liabilities")
		for _, l := range leaves {
			if l.account.Type == model.AccountTypeLiability {
				b.account(liabilities, l.account, l.amount)
			}
		}
		b.subtotal(liabilities, "Current Liabilities", totals.currentLiabilities)
		b.subtotal(liabilities, "Non-Current Liabilities", totals.nonCurrentLiabilities)
		b.total("Total Liabilities", totals.liabilities)

		equity := b.header("Equity")
		for _, l := range leaves {
			if l.account.Type == model.AccountTypeEquity {
				b.account(equity, l.account, l.amount)
			}
		}
		b.total("Total Equity", totals.equity)
		b.calculated("Retained Earnings (Current Period)", netIncome)
	} else {
		revenue := b.header("Revenue")
		for _, l := range leaves {
			if l.account.Type == model.AccountTypeRevenue {
				b.account(revenue, l.account, l.amount)
			}
		}
		b.total("Total Revenue", totals.revenue)

		expenses := b.header("Expenses")
		for _, l := range leaves {
			if l.account.Type == model.AccountTypeExpense {
				b.account(expenses, l.account, l.amount)
			}
		}
		b.total("Total Expenses", totals.expenses)
		b.calculated("Operating Income", operatingIncome)
		b.calculated("Net Income", netIncome)
	}
	report.Items = b.items

	saved, err := s.store.Reports().Upsert(ctx, report)
	if err != nil {
		return model.FinancialReport{}, err
	}

	s.logger.Info("statement generated",
		zap.String("type", string(reportType)),
		zap.Int("year", fiscalYear),
		zap.Int("period", fiscalPeriod),
		zap.String("net_income", netIncome.StringFixed(2)))
	return saved, nil
}

// GetStatement fetches a previously generated snapshot.
func (s *Service) GetStatement(ctx context.Context, companyID uuid.UUID, reportType model.ReportType, fiscalYear, fiscalPeriod int) (model.FinancialReport, error) {
	return s.store.Reports().GetByKey(ctx, companyID, reportType, fiscalYear, fiscalPeriod)
}

// previousAmounts collects the prior year's amounts for change columns.
// Missing prior report just means zero previous amounts.
func (s *Service) previousAmounts(ctx context.Context, companyID uuid.UUID, reportType model.ReportType, fiscalYear, fiscalPeriod int) map[string]decimal.Decimal {
	prior, err := s.store.Reports().GetByKey(ctx, companyID, reportType, fiscalYear-1, fiscalPeriod)
	if err != nil {
		return nil
	}
	amounts := make(map[string]decimal.Decimal, len(prior.Items))
	for _, item := range prior.Items {
		amounts[itemKey(item.Kind, item.AccountID, item.Label)] = item.Current
	}
	return amounts
}

func itemKey(kind model.ReportItemKind, accountID uuid.UUID, label string) string {
	if kind == model.ItemAccount {
		return "account/" + accountID.String()
	}
	return string(kind) + "/" + label
}

// itemBuilder assembles the statement line tree with stable sort order and
// prior-period change columns.
type itemBuilder struct {
	items    []model.FinancialReportItem
	previous map[string]decimal.Decimal
	order    int
}

func newItemBuilder(previous map[string]decimal.Decimal) *itemBuilder {
	return &itemBuilder{previous: previous}
}

func (b *itemBuilder) add(kind model.ReportItemKind, parentID, accountID uuid.UUID, label string, current decimal.Decimal) uuid.UUID {
	prev := decimal.Zero
	if b.previous != nil {
		if p, ok := b.previous[itemKey(kind, accountID, label)]; ok {
			prev = p
		}
	}
	item := model.FinancialReportItem{
		ID:           uuid.New(),
		ParentID:     parentID,
		Kind:         kind,
		AccountID:    accountID,
		Label:        label,
		SortOrder:    b.order,
		Current:      current,
		Previous:     prev,
		ChangeAmount: current.Sub(prev),
		ChangeRate:   money.ChangeRate(current, prev),
	}
	b.order++
	b.items = append(b.items, item)
	return item.ID
}

func (b *itemBuilder) header(label string) uuid.UUID {
	return b.add(model.ItemHeader, uuid.Nil, uuid.Nil, label, decimal.Zero)
}

func (b *itemBuilder) account(parentID uuid.UUID, account model.Account, amount decimal.Decimal) {
	b.add(model.ItemAccount, parentID, account.ID, account.Code+" "+account.Name, amount)
}

func (b *itemBuilder) subtotal(parentID uuid.UUID, label string, amount decimal.Decimal) {
	b.add(model.ItemSubtotal, parentID, uuid.Nil, label, amount)
}

func (b *itemBuilder) total(label string, amount decimal.Decimal) {
	b.add(model.ItemTotal, uuid.Nil, uuid.Nil, label, amount)
}

func (b *itemBuilder) calculated(label string, amount decimal.Decimal) {
	b.add(model.ItemCalculated, uuid.Nil, uuid.Nil, label, amount)
}
