// Package balance maintains per-account running balances from posted
// transactions. Incremental application and full recompute must always
// agree; recompute is the idempotent ground truth.
package balance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// Calculator derives and maintains account balances.
type Calculator struct {
	store store.Store
}

// NewCalculator creates a Calculator.
func NewCalculator(st store.Store) *Calculator {
	return &Calculator{store: st}
}

// Apply adds one posted amount to an account's accumulators and refreshes
// its current balance. Pure mutation: the caller owns persistence and
// per-account serialization.
func Apply(account *model.Account, amount decimal.Decimal, isDebit bool) {
	if isDebit {
		account.DebitBalance = account.DebitBalance.Add(amount)
	} else {
		account.CreditBalance = account.CreditBalance.Add(amount)
	}
	account.CurrentBalance = account.OpeningBalance.Add(account.SignedBalance())
}

// ApplyPosting applies one posted line to its account through the given
// store view. Run inside the same transaction as the status change so the
// transition and the balance effect commit together.
func (c *Calculator) ApplyPosting(ctx context.Context, tx store.Store, accountID uuid.UUID, amount decimal.Decimal, isDebit bool) error {
	account, err := tx.Accounts().Get(ctx, accountID)
	if err != nil {
		return err
	}
	Apply(&account, amount, isDebit)
	return tx.Accounts().Update(ctx, account)
}

// Recompute rebuilds an account's accumulators from its POSTED history,
// optionally bounded by asOf (zero = all history). DRAFT, PENDING, and
// CANCELLED lines never count. Safe to re-run any number of times.
func (c *Calculator) Recompute(ctx context.Context, accountID uuid.UUID, asOf time.Time) (model.Account, error) {
	var out model.Account
	err := c.store.WithinTx(ctx, func(tx store.Store) error {
		account, err := tx.Accounts().Get(ctx, accountID)
		if err != nil {
			return err
		}

		debit, credit, err := sumPosted(ctx, tx, accountID, asOf)
		if err != nil {
			return err
		}

		account.DebitBalance = debit
		account.CreditBalance = credit
		account.CurrentBalance = account.OpeningBalance.Add(account.SignedBalance())

		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}
		out = account
		return nil
	})
	return out, err
}

// AsOf computes a point-in-time signed balance without mutating anything.
func (c *Calculator) AsOf(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	account, err := c.store.Accounts().Get(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	debit, credit, err := sumPosted(ctx, c.store, accountID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	snapshot := account
	snapshot.DebitBalance = debit
	snapshot.CreditBalance = credit
	return account.OpeningBalance.Add(snapshot.SignedBalance()), nil
}

func sumPosted(ctx context.Context, st store.Store, accountID uuid.UUID, asOf time.Time) (debit, credit decimal.Decimal, err error) {
	txns, err := st.Transactions().List(ctx, store.TransactionFilter{
		AccountID: accountID,
		Statuses:  []model.TransactionStatus{model.StatusPosted},
		To:        asOf,
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	debit, credit = decimal.Zero, decimal.Zero
	for _, t := range txns {
		debit = debit.Add(t.Debit)
		credit = credit.Add(t.Credit)
	}
	return debit, credit, nil
}
