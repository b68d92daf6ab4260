// Package reporting assembles trial balances, general ledgers, and
// financial statements from account and posted-transaction state.
// Reports are read-only over the ledger; statements are persisted as
// regenerable snapshots.
package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// Service provides report assembly over the store.
type Service struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a reporting Service.
func NewService(st store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// postedSums returns total POSTED debit and credit for one account within
// the inclusive date window (zero bounds = unbounded).
func postedSums(ctx context.Context, st store.Store, accountID uuid.UUID, from, to time.Time) (debit, credit decimal.Decimal, err error) {
	txns, err := st.Transactions().List(ctx, store.TransactionFilter{
		AccountID: accountID,
		Statuses:  []model.TransactionStatus{model.StatusPosted},
		From:      from,
		To:        to,
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

// signed converts debit/credit sums to a balance on the account's normal side.
func signed(side model.BalanceSide, debit, credit decimal.Decimal) decimal.Decimal {
	if side == model.SideCredit {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}
