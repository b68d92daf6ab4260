package balance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
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

func seedAccount(t *testing.T, st store.Store, opening string) model.Account {
	t.Helper()
	account := model.Account{
		ID:             uuid.New(),
		CompanyID:      uuid.New(),
		Code:           "1100",
		Name:           "Cash",
		Type:           model.AccountTypeAsset,
		Side:           model.SideDebit,
		Level:          1,
		Leaf:           true,
		TrackBalance:   true,
		OpeningBalance: dec(opening),
		CurrentBalance: dec(opening),
	}
	require.NoError(t, st.Accounts().Create(context.Background(), account))
	return account
}

func seedPosted(t *testing.T, st store.Store, account model.Account, day time.Time, debit, credit string, status model.TransactionStatus) {
	t.Helper()
	require.NoError(t, st.Transactions().CreateBatch(context.Background(), []model.Transaction{{
		ID:        uuid.New(),
		CompanyID: account.CompanyID,
		Number:    "JE" + day.Format("20060102") + "-" + uuid.NewString()[:8],
		Date:      day,
		Type:      model.TypeJournal,
		Status:    status,
		AccountID: account.ID,
		Debit:     dec(debit),
		Credit:    dec(credit),
	}}))
}

func TestApply(t *testing.T) {
	account := model.Account{
		Side:           model.SideDebit,
		OpeningBalance: dec("100"),
		CurrentBalance: dec("100"),
	}

	Apply(&account, dec("250"), true)
	assert.True(t, account.DebitBalance.Equal(dec("250")))
	assert.True(t, account.CurrentBalance.Equal(dec("350")))

	Apply(&account, dec("50"), false)
	assert.True(t, account.CreditBalance.Equal(dec("50")))
	assert.True(t, account.CurrentBalance.Equal(dec("300")))
}

func TestRecompute_AgreesWithIncremental(t *testing.T) {
	st := memory.New()
	calc := NewCalculator(st)
	ctx := context.Background()
	account := seedAccount(t, st, "100")

	seedPosted(t, st, account, date(2024, time.January, 5), "250", "0", model.StatusPosted)
	seedPosted(t, st, account, date(2024, time.January, 9), "0", "50", model.StatusPosted)

	// Incremental path.
	incremental := account
	Apply(&incremental, dec("250"), true)
	Apply(&incremental, dec("50"), false)

	// Full recompute path.
	recomputed, err := calc.Recompute(ctx, account.ID, time.Time{})
	require.NoError(t, err)

	assert.True(t, recomputed.DebitBalance.Equal(incremental.DebitBalance))
	assert.True(t, recomputed.CreditBalance.Equal(incremental.CreditBalance))
	assert.True(t, recomputed.CurrentBalance.Equal(incremental.CurrentBalance))
}

func TestRecompute_IgnoresNonPosted(t *testing.T) {
	st := memory.New()
	calc := NewCalculator(st)
	account := seedAccount(t, st, "0")

	seedPosted(t, st, account, date(2024, time.January, 5), "100", "0", model.StatusPosted)
	seedPosted(t, st, account, date(2024, time.January, 6), "999", "0", model.StatusDraft)
	seedPosted(t, st, account, date(2024, time.January, 7), "999", "0", model.StatusPending)
	seedPosted(t, st, account, date(2024, time.January, 8), "999", "0", model.StatusCancelled)

	recomputed, err := calc.Recompute(context.Background(), account.ID, time.Time{})
	require.NoError(t, err)
	assert.True(t, recomputed.DebitBalance.Equal(dec("100")))
	assert.True(t, recomputed.CurrentBalance.Equal(dec("100")))
}

func TestRecompute_Idempotent(t *testing.T) {
	st := memory.New()
	calc := NewCalculator(st)
	account := seedAccount(t, st, "10")
	seedPosted(t, st, account, date(2024, time.January, 5), "40", "0", model.StatusPosted)

	first, err := calc.Recompute(context.Background(), account.ID, time.Time{})
	require.NoError(t, err)
	second, err := calc.Recompute(context.Background(), account.ID, time.Time{})
	require.NoError(t, err)

	assert.True(t, first.CurrentBalance.Equal(second.CurrentBalance))
	assert.True(t, second.CurrentBalance.Equal(dec("50")))
}

func TestAsOf(t *testing.T) {
	st := memory.New()
	calc := NewCalculator(st)
	account := seedAccount(t, st, "0")

	seedPosted(t, st, account, date(2024, time.January, 5), "100", "0", model.StatusPosted)
	seedPosted(t, st, account, date(2024, time.February, 5), "200", "0", model.StatusPosted)

	jan, err := calc.AsOf(context.Background(), account.ID, date(2024, time.January, 31))
	require.NoError(t, err)
	assert.True(t, jan.Equal(dec("100")), "cutoff excludes later activity")

	all, err := calc.AsOf(context.Background(), account.ID, time.Time{})
	require.NoError(t, err)
	assert.True(t, all.Equal(dec("300")))

	// AsOf never mutates stored accumulators.
	stored, err := st.Accounts().Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, stored.DebitBalance.IsZero())
}
