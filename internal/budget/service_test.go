package budget

import (
	"context"
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

type fixture struct {
	st        *memory.Store
	svc       *Service
	companyID uuid.UUID
	revenue   model.Account
	expense   model.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	companyID := uuid.New()

	f := &fixture{
		st:        st,
		svc:       NewService(st, zap.NewNop()),
		companyID: companyID,
	}
	f.revenue = f.seedAccount(t, "4100", model.AccountTypeRevenue, model.SideCredit)
	f.expense = f.seedAccount(t, "5100", model.AccountTypeExpense, model.SideDebit)
	return f
}

func (f *fixture) seedAccount(t *testing.T, code string, typ model.AccountType, side model.BalanceSide) model.Account {
	t.Helper()
	account := model.Account{
		ID:        uuid.New(),
		CompanyID: f.companyID,
		Code:      code,
		Name:      "Account " + code,
		Type:      typ,
		Side:      side,
		Level:     1,
		Leaf:      true,
	}
	require.NoError(t, f.st.Accounts().Create(context.Background(), account))
	return account
}

func (f *fixture) create(t *testing.T, accountID uuid.UUID, typ model.BudgetType, amount string) model.Budget {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateParams{
		CompanyID:    f.companyID,
		AccountID:    accountID,
		Type:         typ,
		FiscalYear:   2024,
		Period:       model.PeriodMonthly,
		PeriodNumber: 1,
		Amount:       dec(amount),
	})
	require.NoError(t, err)
	return b
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, f.revenue.ID, model.BudgetTypeRevenue, "1000000")

	assert.Equal(t, model.BudgetDraft, b.Status)
	assert.True(t, b.Amount.Equal(dec("1000000")))
	assert.True(t, b.AchievementRate.IsZero())
}

func TestCreate_OtherCompanyAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateParams{
		CompanyID:    uuid.New(),
		AccountID:    f.revenue.ID,
		Type:         model.BudgetTypeRevenue,
		FiscalYear:   2024,
		Period:       model.PeriodMonthly,
		PeriodNumber: 1,
		Amount:       dec("1000"),
	})
	assert.True(t, apperrors.IsValidation(err), "budgets cannot attach to another company's account")
}

func TestCreate_PeriodNumberRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		period model.BudgetPeriod
		number int
		ok     bool
	}{
		{model.PeriodMonthly, 12, true},
		{model.PeriodMonthly, 13, false},
		{model.PeriodQuarterly, 4, true},
		{model.PeriodQuarterly, 5, false},
		{model.PeriodAnnual, 1, true},
		{model.PeriodAnnual, 2, false},
		{model.PeriodMonthly, 0, false},
	}
	for _, tt := range tests {
		_, err := f.svc.Create(ctx, CreateParams{
			CompanyID: f.companyID, AccountID: f.revenue.ID, Type: model.BudgetTypeRevenue,
			FiscalYear: 2025, Period: tt.period, PeriodNumber: tt.number, Amount: dec("100"),
		})
		if tt.ok {
			assert.NoError(t, err, "%s %d", tt.period, tt.number)
		} else {
			assert.True(t, apperrors.IsValidation(err), "%s %d", tt.period, tt.number)
		}
	}
}

func TestCreate_TypeMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateParams{
		CompanyID: f.companyID, AccountID: f.expense.ID, Type: model.BudgetTypeRevenue,
		FiscalYear: 2024, Period: model.PeriodMonthly, PeriodNumber: 1, Amount: dec("100"),
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreate_DuplicateKey(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.revenue.ID, model.BudgetTypeRevenue, "100")

	_, err := f.svc.Create(context.Background(), CreateParams{
		CompanyID: f.companyID, AccountID: f.revenue.ID, Type: model.BudgetTypeRevenue,
		FiscalYear: 2024, Period: model.PeriodMonthly, PeriodNumber: 1, Amount: dec("200"),
	})
	assert.True(t, apperrors.IsDuplicate(err))
}

func TestCalculateVariance(t *testing.T) {
	b := model.Budget{Amount: dec("1000000"), CurrentActual: dec("1200000")}
	CalculateVariance(&b)

	assert.True(t, b.AchievementRate.Equal(dec("120.00")))
	assert.True(t, b.VarianceAmount.Equal(dec("200000")))
	assert.True(t, b.VarianceRate.Equal(dec("20.00")))
	assert.True(t, IsOverBudget(b))
	assert.True(t, RemainingBudget(b).IsZero(), "overconsumed budgets floor at zero")
}

func TestCalculateVariance_ZeroAmount(t *testing.T) {
	b := model.Budget{Amount: decimal.Zero, CurrentActual: dec("500")}
	CalculateVariance(&b)

	assert.True(t, b.AchievementRate.IsZero(), "zero-amount budgets report zero rates")
	assert.True(t, b.VarianceRate.IsZero())
	assert.True(t, b.VarianceAmount.Equal(dec("500")))
}

func TestRemainingBudget(t *testing.T) {
	b := model.Budget{Amount: dec("1000"), CurrentActual: dec("400")}
	assert.True(t, RemainingBudget(b).Equal(dec("600")))
	assert.False(t, IsOverBudget(b))
}

func TestTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, f.revenue.ID, model.BudgetTypeRevenue, "100")

	for _, target := range []model.BudgetStatus{
		model.BudgetSubmitted, model.BudgetApproved, model.BudgetActive, model.BudgetClosed,
	} {
		var err error
		b, err = f.svc.Transition(ctx, b.ID, target)
		require.NoError(t, err)
		assert.Equal(t, target, b.Status)
	}

	// Closed is terminal.
	_, err := f.svc.Transition(ctx, b.ID, model.BudgetCancelled)
	assert.True(t, apperrors.IsStateConflict(err))
}

func TestTransition_Invalid(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, f.revenue.ID, model.BudgetTypeRevenue, "100")

	_, err := f.svc.Transition(context.Background(), b.ID, model.BudgetActive)
	assert.True(t, apperrors.IsStateConflict(err), "draft cannot jump straight to active")
}

func TestRevise(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, f.expense.ID, model.BudgetTypeExpense, "1000")

	revised, err := f.svc.Revise(ctx, b.ID, dec("1500"), "headcount change", "cfo")
	require.NoError(t, err)
	assert.True(t, revised.Amount.Equal(dec("1500")))

	revisions, err := f.svc.Revisions(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.True(t, revisions[0].OldAmount.Equal(dec("1000")))
	assert.True(t, revisions[0].NewAmount.Equal(dec("1500")))
	assert.Equal(t, "headcount change", revisions[0].Reason)

	// A second revision appends; the trail is never rewritten.
	_, err = f.svc.Revise(ctx, b.ID, dec("1800"), "scope growth", "cfo")
	require.NoError(t, err)
	revisions, err = f.svc.Revisions(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.True(t, revisions[1].OldAmount.Equal(dec("1500")))
}

func TestRevise_RequiresReason(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, f.expense.ID, model.BudgetTypeExpense, "1000")

	_, err := f.svc.Revise(context.Background(), b.ID, dec("1500"), "", "cfo")
	assert.True(t, apperrors.IsValidation(err))
}

func TestRefreshActual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, f.revenue.ID, model.BudgetTypeRevenue, "1000")

	// Two posted credits inside January, one outside, one not posted.
	seedTxn := func(day time.Time, debit, credit string, status model.TransactionStatus) {
		require.NoError(t, f.st.Transactions().CreateBatch(ctx, []model.Transaction{{
			ID:        uuid.New(),
			CompanyID: f.companyID,
			Number:    "JE-" + uuid.NewString()[:8],
			Date:      day,
			Status:    status,
			AccountID: f.revenue.ID,
			Debit:     dec(debit),
			Credit:    dec(credit),
		}}))
	}
	seedTxn(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "0", "300", model.StatusPosted)
	seedTxn(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), "0", "400", model.StatusPosted)
	seedTxn(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "0", "999", model.StatusPosted)
	seedTxn(time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), "0", "999", model.StatusDraft)

	refreshed, err := f.svc.RefreshActual(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.CurrentActual.Equal(dec("700")), "credit-normal actual is credits minus debits within the window")
	assert.True(t, refreshed.AchievementRate.Equal(dec("70.00")))
}

func TestPeriodRange(t *testing.T) {
	from, to := PeriodRange(2024, model.PeriodMonthly, 2)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.February, to.Month())
	assert.Equal(t, 29, to.Day(), "leap-year February ends on the 29th")

	from, to = PeriodRange(2024, model.PeriodQuarterly, 3)
	assert.Equal(t, time.July, from.Month())
	assert.Equal(t, time.September, to.Month())

	from, to = PeriodRange(2024, model.PeriodAnnual, 1)
	assert.Equal(t, time.January, from.Month())
	assert.Equal(t, time.December, to.Month())
}

func TestUpdateActual(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, f.expense.ID, model.BudgetTypeExpense, "1000")

	updated, err := f.svc.UpdateActual(context.Background(), b.ID, dec("250"))
	require.NoError(t, err)
	assert.True(t, updated.CurrentActual.Equal(dec("250")))
	assert.True(t, updated.AchievementRate.Equal(dec("25.00")))
	assert.True(t, updated.VarianceAmount.Equal(dec("-750")))
}
