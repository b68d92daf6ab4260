package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/accounts"
	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/balance"
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

// fixture wires a ledger service over the in-memory store with a cash and
// a revenue account ready for posting.
type fixture struct {
	svc       *Service
	accounts  *accounts.Service
	companyID uuid.UUID
	cash      model.Account
	revenue   model.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := memory.New()
	logger := zap.NewNop()
	acctSvc := accounts.NewService(st, logger)
	companyID := uuid.New()

	cash, err := acctSvc.Register(context.Background(), accounts.RegisterParams{
		CompanyID: companyID, Code: "1100", Name: "Cash",
		Type: model.AccountTypeAsset, Category: model.CategoryCurrentAsset, TrackBalance: true,
	})
	require.NoError(t, err)
	revenue, err := acctSvc.Register(context.Background(), accounts.RegisterParams{
		CompanyID: companyID, Code: "4100", Name: "Sales Revenue",
		Type: model.AccountTypeRevenue, Category: model.CategoryOperatingRevenue, TrackBalance: true,
	})
	require.NoError(t, err)

	return &fixture{
		svc:       NewService(st, balance.NewCalculator(st), logger),
		accounts:  acctSvc,
		companyID: companyID,
		cash:      cash,
		revenue:   revenue,
	}
}

func (f *fixture) simpleEntry(t *testing.T, day time.Time, amount string) []model.Transaction {
	t.Helper()
	txns, err := f.svc.CreateJournalEntry(context.Background(), EntryParams{
		CompanyID:   f.companyID,
		Date:        day,
		Description: "Cash sale",
		Lines: []LineParams{
			{AccountID: f.cash.ID, Debit: dec(amount)},
			{AccountID: f.revenue.ID, Credit: dec(amount)},
		},
	})
	require.NoError(t, err)
	return txns
}

// postEntry walks one line through approve and post.
func (f *fixture) postLine(t *testing.T, txnID uuid.UUID) model.Transaction {
	t.Helper()
	_, err := f.svc.Approve(context.Background(), txnID, "controller")
	require.NoError(t, err)
	posted, err := f.svc.Post(context.Background(), txnID)
	require.NoError(t, err)
	return posted
}

func TestCreateJournalEntry_Numbering(t *testing.T) {
	f := newFixture(t)

	txns := f.simpleEntry(t, date(2024, time.January, 1), "500.00")
	require.Len(t, txns, 2)
	assert.Equal(t, "JE20240101-1", txns[0].Number)
	assert.Equal(t, "JE20240101-2", txns[1].Number)

	for _, txn := range txns {
		assert.Equal(t, model.StatusDraft, txn.Status)
		assert.Equal(t, 2024, txn.FiscalYear)
		assert.Equal(t, 1, txn.FiscalMonth)
		assert.Equal(t, 1, txn.FiscalQuarter)
	}

	// A second entry on the same day continues the counter.
	more := f.simpleEntry(t, date(2024, time.January, 1), "80.00")
	assert.Equal(t, "JE20240101-3", more[0].Number)
	assert.Equal(t, "JE20240101-4", more[1].Number)

	// A new day starts over.
	next := f.simpleEntry(t, date(2024, time.January, 2), "10.00")
	assert.Equal(t, "JE20240102-1", next[0].Number)
}

func TestCreateJournalEntry_TypePrefix(t *testing.T) {
	f := newFixture(t)

	txns, err := f.svc.CreateJournalEntry(context.Background(), EntryParams{
		CompanyID: f.companyID,
		Date:      date(2024, time.March, 5),
		Type:      model.TypeSales,
		Lines: []LineParams{
			{AccountID: f.cash.ID, Debit: dec("75.00")},
			{AccountID: f.revenue.ID, Credit: dec("75.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SA20240305-1", txns[0].Number)
}

func TestCreateJournalEntry_Unbalanced(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateJournalEntry(context.Background(), EntryParams{
		CompanyID: f.companyID,
		Date:      date(2024, time.January, 1),
		Lines: []LineParams{
			{AccountID: f.cash.ID, Debit: dec("500.00")},
			{AccountID: f.revenue.ID, Credit: dec("400.00")},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "does not balance")

	// Nothing was persisted.
	txns, err := f.svc.List(context.Background(), store.TransactionFilter{CompanyID: f.companyID})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestCreateJournalEntry_DebitXorCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateJournalEntry(ctx, EntryParams{
		CompanyID: f.companyID,
		Date:      date(2024, time.January, 1),
		Lines: []LineParams{
			{AccountID: f.cash.ID, Debit: dec("10.00"), Credit: dec("10.00")},
			{AccountID: f.revenue.ID},
		},
	})
	assert.True(t, apperrors.IsValidation(err), "a line cannot carry both sides")

	_, err = f.svc.CreateJournalEntry(ctx, EntryParams{
		CompanyID: f.companyID,
		Date:      date(2024, time.January, 1),
		Lines:     []LineParams{{AccountID: f.cash.ID}},
	})
	assert.True(t, apperrors.IsValidation(err), "a line cannot carry neither side")
}

func TestCreateJournalEntry_RejectsSubCentAmounts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateJournalEntry(context.Background(), EntryParams{
		CompanyID: f.companyID,
		Date:      date(2024, time.January, 1),
		Lines: []LineParams{
			{AccountID: f.cash.ID, Debit: dec("10.001")},
			{AccountID: f.revenue.ID, Credit: dec("10.001")},
		},
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateJournalEntry_LeafOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Give cash a child so it stops being a leaf.
	_, err := f.accounts.Register(ctx, accounts.RegisterParams{
		CompanyID: f.companyID, Code: "1110", Name: "Petty Cash",
		Type: model.AccountTypeAsset, ParentID: f.cash.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateJournalEntry(ctx, EntryParams{
		CompanyID: f.companyID,
		Date:      date(2024, time.January, 1),
		Lines: []LineParams{
			{AccountID: f.cash.ID, Debit: dec("10.00")},
			{AccountID: f.revenue.ID, Credit: dec("10.00")},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "not a leaf")
}

func TestLifecycle_DraftToPosted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txns := f.simpleEntry(t, date(2024, time.January, 15), "250.00")
	line := txns[0]

	pending, err := f.svc.Submit(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, pending.Status)

	approved, err := f.svc.Approve(ctx, line.ID, "controller")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, "controller", approved.ApprovedBy)
	assert.False(t, approved.ApprovedAt.IsZero())

	posted, err := f.svc.Post(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPosted, posted.Status)
	assert.False(t, posted.PostedAt.IsZero())
}

func TestPost_OnlyApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txns := f.simpleEntry(t, date(2024, time.January, 15), "250.00")

	_, err := f.svc.Post(ctx, txns[0].ID)
	assert.True(t, apperrors.IsStateConflict(err), "DRAFT cannot be posted directly")
}

func TestPost_AppliesBalanceExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txns := f.simpleEntry(t, date(2024, time.January, 15), "250.00")
	f.postLine(t, txns[0].ID)

	cash, err := f.accounts.Get(ctx, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, cash.DebitBalance.Equal(dec("250.00")))
	assert.True(t, cash.CurrentBalance.Equal(dec("250.00")))

	// Re-posting fails and leaves the balance untouched.
	_, err = f.svc.Post(ctx, txns[0].ID)
	assert.True(t, apperrors.IsStateConflict(err))

	cash, err = f.accounts.Get(ctx, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, cash.DebitBalance.Equal(dec("250.00")), "no double application")
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txns := f.simpleEntry(t, date(2024, time.February, 1), "99.00")

	cancelled, err := f.svc.Cancel(ctx, txns[0].ID, "typo", "bookkeeper")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, "typo", cancelled.CancelReason)

	// Cancelled is terminal.
	_, err = f.svc.Submit(ctx, txns[0].ID)
	assert.True(t, apperrors.IsStateConflict(err))
	_, err = f.svc.Cancel(ctx, txns[0].ID, "again", "bookkeeper")
	assert.True(t, apperrors.IsStateConflict(err))
}

func TestCancel_PostedIsImmutable(t *testing.T) {
	f := newFixture(t)

	txns := f.simpleEntry(t, date(2024, time.February, 1), "99.00")
	f.postLine(t, txns[0].ID)

	_, err := f.svc.Cancel(context.Background(), txns[0].ID, "change of heart", "bookkeeper")
	require.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
	assert.Contains(t, err.Error(), "reversing entry")
}

func TestCreateReversingEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txns := f.simpleEntry(t, date(2024, time.March, 10), "120.00")
	original := f.postLine(t, txns[0].ID)

	reversal, err := f.svc.CreateReversingEntry(ctx, original.ID, "controller")
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, reversal.Status)
	assert.Equal(t, original.AccountID, reversal.AccountID)
	assert.Equal(t, original.ID, reversal.OriginalID)
	assert.True(t, reversal.Debit.Equal(original.Credit))
	assert.True(t, reversal.Credit.Equal(original.Debit))
	assert.Equal(t, original.FiscalMonth, reversal.FiscalMonth)
	assert.Contains(t, reversal.Description, "Reversal of "+original.Number)

	// Posting the reversal nets the account back to zero.
	f.postLine(t, reversal.ID)
	cash, err := f.accounts.Get(ctx, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, cash.CurrentBalance.IsZero())
}

func TestCreateReversingEntry_OnlyPosted(t *testing.T) {
	f := newFixture(t)

	txns := f.simpleEntry(t, date(2024, time.March, 10), "120.00")
	_, err := f.svc.CreateReversingEntry(context.Background(), txns[0].ID, "controller")
	assert.True(t, apperrors.IsStateConflict(err))
}

func TestApprove_RequiresApprover(t *testing.T) {
	f := newFixture(t)

	txns := f.simpleEntry(t, date(2024, time.March, 10), "10.00")
	_, err := f.svc.Approve(context.Background(), txns[0].ID, "")
	assert.True(t, apperrors.IsValidation(err))
}
