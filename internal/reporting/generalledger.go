package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// GeneralLedgerLine is one transaction with the balance after applying it.
type GeneralLedgerLine struct {
	Transaction model.Transaction
	Balance     decimal.Decimal
}

// GeneralLedger is one account's chronological POSTED history with a
// running balance.
type GeneralLedger struct {
	Account        model.Account
	From, To       time.Time
	OpeningBalance decimal.Decimal // balance brought forward at From
	Lines          []GeneralLedgerLine
	ClosingBalance decimal.Decimal
}

// GeneralLedger builds the running-balance history for one account. The
// opening line is the account's opening balance plus any POSTED activity
// before the window; each line then moves the balance by the signed amount
// on the account's normal side.
func (s *Service) GeneralLedger(ctx context.Context, accountID uuid.UUID, from, to time.Time) (GeneralLedger, error) {
	account, err := s.store.Accounts().Get(ctx, accountID)
	if err != nil {
		return GeneralLedger{}, err
	}

	opening := account.OpeningBalance
	if !from.IsZero() {
		debit, credit, err := postedSums(ctx, s.store, accountID, time.Time{}, from.Add(-time.Nanosecond))
		if err != nil {
			return GeneralLedger{}, err
		}
		opening = opening.Add(signed(account.Side, debit, credit))
	}

	txns, err := s.store.Transactions().List(ctx, store.TransactionFilter{
		AccountID: accountID,
		Statuses:  []model.TransactionStatus{model.StatusPosted},
		From:      from,
		To:        to,
	})
	if err != nil {
		return GeneralLedger{}, err
	}

	gl := GeneralLedger{
		Account:        account,
		From:           from,
		To:             to,
		OpeningBalance: opening,
	}

	running := opening
	for _, t := range txns {
		running = running.Add(signed(account.Side, t.Debit, t.Credit))
		gl.Lines = append(gl.Lines, GeneralLedgerLine{Transaction: t, Balance: running})
	}
	gl.ClosingBalance = running
	return gl, nil
}
