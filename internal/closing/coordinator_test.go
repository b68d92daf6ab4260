package closing

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
	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/balance"
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

type fixture struct {
	st        *memory.Store
	coord     *Coordinator
	companyID uuid.UUID
	seq       int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	return &fixture{
		st:        st,
		coord:     NewCoordinator(st, balance.NewCalculator(st), zap.NewNop()),
		companyID: uuid.New(),
	}
}

func (f *fixture) account(t *testing.T, code string, typ model.AccountType) model.Account {
	t.Helper()
	account := model.Account{
		ID:           uuid.New(),
		CompanyID:    f.companyID,
		Code:         code,
		Name:         "Account " + code,
		Type:         typ,
		Side:         typ.NormalSide(),
		Level:        1,
		Leaf:         true,
		TrackBalance: true,
	}
	require.NoError(t, f.st.Accounts().Create(context.Background(), account))
	return account
}

func (f *fixture) txn(t *testing.T, account model.Account, day time.Time, debit, credit string, status model.TransactionStatus) {
	t.Helper()
	f.seq++
	fiscal := model.FiscalPeriodOf(day)
	require.NoError(t, f.st.Transactions().CreateBatch(context.Background(), []model.Transaction{{
		ID:            uuid.New(),
		CompanyID:     f.companyID,
		Number:        fmt.Sprintf("JE%s-%d", day.Format("20060102"), f.seq),
		Date:          day,
		Status:        status,
		AccountID:     account.ID,
		Debit:         dec(debit),
		Credit:        dec(credit),
		FiscalYear:    fiscal.Year,
		FiscalMonth:   fiscal.Month,
		FiscalQuarter: fiscal.Quarter,
	}}))
}

func TestClosePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	cash := f.account(t, "1100", model.AccountTypeAsset)
	revenue := f.account(t, "4100", model.AccountTypeRevenue)
	f.txn(t, cash, day, "500", "0", model.StatusPosted)
	f.txn(t, revenue, day, "0", "500", model.StatusPosted)

	require.NoError(t, f.coord.ClosePeriod(ctx, f.companyID, 2024, 1, "controller"))

	got, err := f.st.Accounts().Get(ctx, cash.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec("500")), "close recomputes balances from posted history")

	trail, err := f.st.Audit().List(ctx, f.companyID)
	require.NoError(t, err)
	require.Len(t, trail, 1, "closing leaves an audit entry against the company")
	assert.Equal(t, audit.ActionClose, trail[0].Action)
	assert.Equal(t, "controller", trail[0].Actor)
	assert.Equal(t, "2024-01", trail[0].Detail)
}

func TestClosePeriod_BlockedByPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	cash := f.account(t, "1100", model.AccountTypeAsset)
	f.txn(t, cash, day, "500", "0", model.StatusPosted)
	f.txn(t, cash, day, "100", "0", model.StatusPending)

	err := f.coord.ClosePeriod(ctx, f.companyID, 2024, 1, "controller")
	require.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
	assert.Contains(t, err.Error(), "1 transactions awaiting approval")

	// Nothing was mutated.
	got, err := f.st.Accounts().Get(ctx, cash.ID)
	require.NoError(t, err)
	assert.True(t, got.DebitBalance.IsZero())
	assert.True(t, got.CurrentBalance.IsZero())

	trail, err := f.st.Audit().List(ctx, f.companyID)
	require.NoError(t, err)
	assert.Empty(t, trail, "a blocked close is not recorded")
}

func TestClosePeriod_DraftAlsoBlocks(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)

	cash := f.account(t, "1100", model.AccountTypeAsset)
	f.txn(t, cash, day, "10", "0", model.StatusDraft)
	f.txn(t, cash, day, "10", "0", model.StatusPending)

	err := f.coord.ClosePeriod(context.Background(), f.companyID, 2024, 3, "controller")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 transactions awaiting approval")
}

func TestClosePeriod_OtherPeriodsDoNotBlock(t *testing.T) {
	f := newFixture(t)
	cash := f.account(t, "1100", model.AccountTypeAsset)

	// Pending in February must not block January.
	f.txn(t, cash, time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC), "10", "0", model.StatusPending)
	assert.NoError(t, f.coord.ClosePeriod(context.Background(), f.companyID, 2024, 1, "controller"))
}

func TestClosePeriod_MonthRange(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.coord.ClosePeriod(context.Background(), f.companyID, 2024, 0, "controller"))
	assert.Error(t, f.coord.ClosePeriod(context.Background(), f.companyID, 2024, 13, "controller"))
}

func TestCloseYear_ResetsNominalAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

	cash := f.account(t, "1100", model.AccountTypeAsset)
	revenue := f.account(t, "4100", model.AccountTypeRevenue)
	expense := f.account(t, "5100", model.AccountTypeExpense)

	f.txn(t, cash, day, "900", "0", model.StatusPosted)
	f.txn(t, revenue, day, "0", "900", model.StatusPosted)
	f.txn(t, expense, day, "300", "0", model.StatusPosted)
	f.txn(t, cash, day, "0", "300", model.StatusPosted)

	require.NoError(t, f.coord.CloseYear(ctx, f.companyID, 2024, "controller"))

	got, err := f.st.Accounts().Get(ctx, revenue.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.IsZero(), "revenue resets at year end")
	got, err = f.st.Accounts().Get(ctx, expense.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.IsZero(), "expenses reset at year end")

	got, err = f.st.Accounts().Get(ctx, cash.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec("600")), "real accounts carry forward")

	trail, err := f.st.Audit().List(ctx, f.companyID)
	require.NoError(t, err)
	require.Len(t, trail, 13, "one entry per month plus the year close")
	assert.Equal(t, "2024-01", trail[0].Detail)
	assert.Equal(t, "FY2024", trail[12].Detail)
	assert.Equal(t, audit.ActionClose, trail[12].Action)
}

func TestCloseYear_BlockedByAnyPendingMonth(t *testing.T) {
	f := newFixture(t)
	cash := f.account(t, "1100", model.AccountTypeAsset)
	f.txn(t, cash, time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC), "10", "0", model.StatusPending)

	err := f.coord.CloseYear(context.Background(), f.companyID, 2024, "controller")
	require.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
}
