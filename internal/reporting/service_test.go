package reporting

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store/memory"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	st        *memory.Store
	svc       *Service
	companyID uuid.UUID
	seq       int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	return &fixture{
		st:        st,
		svc:       NewService(st, zap.NewNop()),
		companyID: uuid.New(),
	}
}

func (f *fixture) account(t *testing.T, code string, typ model.AccountType, cat model.AccountCategory, opening string) model.Account {
	t.Helper()
	account := model.Account{
		ID:             uuid.New(),
		CompanyID:      f.companyID,
		Code:           code,
		Name:           "Account " + code,
		Type:           typ,
		Category:       cat,
		Side:           typ.NormalSide(),
		Level:          1,
		Leaf:           true,
		TrackBalance:   true,
		OpeningBalance: dec(opening),
		CurrentBalance: dec(opening),
	}
	require.NoError(t, f.st.Accounts().Create(context.Background(), account))
	return account
}

func (f *fixture) post(t *testing.T, account model.Account, day time.Time, debit, credit string) {
	t.Helper()
	f.seq++
	require.NoError(t, f.st.Transactions().CreateBatch(context.Background(), []model.Transaction{{
		ID:        uuid.New(),
		CompanyID: f.companyID,
		Number:    fmt.Sprintf("JE%s-%d", day.Format("20060102"), f.seq),
		Date:      day,
		Status:    model.StatusPosted,
		AccountID: account.ID,
		Debit:     dec(debit),
		Credit:    dec(credit),
	}}))
}

func TestTrialBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cash := f.account(t, "1100", model.AccountTypeAsset, model.CategoryCurrentAsset, "0")
	revenue := f.account(t, "4100", model.AccountTypeRevenue, model.CategoryOperatingRevenue, "0")

	f.post(t, cash, date(2024, time.January, 5), "500", "0")
	f.post(t, revenue, date(2024, time.January, 5), "0", "500")
	// Outside the window.
	f.post(t, cash, date(2024, time.March, 1), "999", "0")

	tb, err := f.svc.TrialBalance(ctx, f.companyID, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)

	require.Len(t, tb.Rows, 2)
	assert.True(t, tb.Balanced())
	assert.True(t, tb.TotalDebit.Equal(dec("500")))
	assert.True(t, tb.TotalCredit.Equal(dec("500")))
	assert.Equal(t, "1100", tb.Rows[0].AccountCode, "assets come before revenue")
	assert.True(t, tb.Rows[0].Debit.Equal(dec("500")))
	assert.True(t, tb.Rows[1].Credit.Equal(dec("500")))
}

func TestTrialBalance_SkipsNonLeafAndUntracked(t *testing.T) {
	f := newFixture(t)

	parent := f.account(t, "1000", model.AccountTypeAsset, model.CategoryCurrentAsset, "0")
	parent.Leaf = false
	require.NoError(t, f.st.Accounts().Update(context.Background(), parent))

	untracked := f.account(t, "1900", model.AccountTypeAsset, model.CategoryCurrentAsset, "0")
	untracked.TrackBalance = false
	require.NoError(t, f.st.Accounts().Update(context.Background(), untracked))

	tb, err := f.svc.TrialBalance(context.Background(), f.companyID, date(2024, time.January, 1), date(2024, time.December, 31))
	require.NoError(t, err)
	assert.Empty(t, tb.Rows)
}

func TestGeneralLedger_RunningBalance(t *testing.T) {
	f := newFixture(t)

	cash := f.account(t, "1100", model.AccountTypeAsset, model.CategoryCurrentAsset, "100")

	// Before the window: carried into the opening balance.
	f.post(t, cash, date(2024, time.January, 10), "50", "0")
	// Inside the window.
	f.post(t, cash, date(2024, time.February, 5), "200", "0")
	f.post(t, cash, date(2024, time.February, 20), "0", "80")

	gl, err := f.svc.GeneralLedger(context.Background(), cash.ID, date(2024, time.February, 1), date(2024, time.February, 29))
	require.NoError(t, err)

	assert.True(t, gl.OpeningBalance.Equal(dec("150")), "opening + pre-window activity")
	require.Len(t, gl.Lines, 2)
	assert.True(t, gl.Lines[0].Balance.Equal(dec("350")))
	assert.True(t, gl.Lines[1].Balance.Equal(dec("270")))
	assert.True(t, gl.ClosingBalance.Equal(dec("270")))
}

func TestGenerateStatement_BalanceSheet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cash := f.account(t, "1100", model.AccountTypeAsset, model.CategoryCurrentAsset, "0")
	equipment := f.account(t, "1500", model.AccountTypeAsset, model.CategoryNonCurrentAsset, "0")
	payable := f.account(t, "2100", model.AccountTypeLiability, model.CategoryCurrentLiability, "0")
	capital := f.account(t, "3100", model.AccountTypeEquity, model.CategoryCapital, "0")
	revenue := f.account(t, "4100", model.AccountTypeRevenue, model.CategoryOperatingRevenue, "0")
	expense := f.account(t, "5100", model.AccountTypeExpense, model.CategoryOperatingExpense, "0")

	day := date(2024, time.June, 15)
	f.post(t, cash, day, "1000", "0")
	f.post(t, capital, day, "0", "500")
	f.post(t, payable, day, "0", "200")
	f.post(t, revenue, day, "0", "400")
	f.post(t, expense, day, "100", "0")
	f.post(t, equipment, day, "0", "0")
	f.post(t, cash, day, "0", "100")

	report, err := f.svc.GenerateStatement(ctx, f.companyID, model.ReportBalanceSheet, 2024, 6, date(2024, time.June, 30))
	require.NoError(t, err)

	assert.True(t, report.TotalAssets.Equal(dec("900")))
	assert.True(t, report.TotalLiabilities.Equal(dec("200")))
	assert.True(t, report.TotalEquity.Equal(dec("500")))
	assert.True(t, report.NetIncome.Equal(dec("300")), "revenue 400 minus expenses 100")

	// current ratio = current assets / current liabilities = 900 / 200
	assert.True(t, report.CurrentRatio.Equal(dec("4.50")))
	// debt ratio = liabilities / assets
	assert.True(t, report.DebtRatio.Equal(dec("22.22")))
	assert.NotEmpty(t, report.Items)
}

func TestGenerateStatement_UpsertInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cash := f.account(t, "1100", model.AccountTypeAsset, model.CategoryCurrentAsset, "0")
	f.post(t, cash, date(2024, time.June, 1), "100", "0")

	first, err := f.svc.GenerateStatement(ctx, f.companyID, model.ReportBalanceSheet, 2024, 6, date(2024, time.June, 30))
	require.NoError(t, err)

	f.post(t, cash, date(2024, time.June, 20), "50", "0")
	second, err := f.svc.GenerateStatement(ctx, f.companyID, model.ReportBalanceSheet, 2024, 6, date(2024, time.June, 30))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "regeneration updates the snapshot in place")
	assert.True(t, second.TotalAssets.Equal(dec("150")))

	stored, err := f.svc.GetStatement(ctx, f.companyID, model.ReportBalanceSheet, 2024, 6)
	require.NoError(t, err)
	assert.True(t, stored.TotalAssets.Equal(dec("150")))
}

func TestGenerateStatement_IncomeStatement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	revenue := f.account(t, "4100", model.AccountTypeRevenue, model.CategoryOperatingRevenue, "0")
	other := f.account(t, "4900", model.AccountTypeRevenue, model.CategoryOtherRevenue, "0")
	expense := f.account(t, "5100", model.AccountTypeExpense, model.CategoryOperatingExpense, "0")

	day := date(2024, time.June, 15)
	f.post(t, revenue, day, "0", "1000")
	f.post(t, other, day, "0", "200")
	f.post(t, expense, day, "600", "0")

	report, err := f.svc.GenerateStatement(ctx, f.companyID, model.ReportIncomeStatement, 2024, 6, date(2024, time.June, 30))
	require.NoError(t, err)

	assert.True(t, report.TotalRevenue.Equal(dec("1200")))
	assert.True(t, report.TotalExpenses.Equal(dec("600")))
	assert.True(t, report.NetIncome.Equal(dec("600")))
	// gross margin = operating income / total revenue = (1000-600)/1200
	assert.True(t, report.GrossMargin.Equal(dec("33.33")))
	assert.True(t, report.NetMargin.Equal(dec("50.00")))
}

func TestGenerateStatement_UnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateStatement(context.Background(), f.companyID, model.ReportType("cash_flow"), 2024, 6, date(2024, time.June, 30))
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetStatement_Missing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetStatement(context.Background(), f.companyID, model.ReportBalanceSheet, 2030, 1)
	assert.True(t, apperrors.IsNotFound(err))
}
