package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/model"
)

// TrialBalanceRow is one account's POSTED debit/credit totals for a window.
type TrialBalanceRow struct {
	AccountID   uuid.UUID
	AccountCode string
	AccountName string
	AccountType model.AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// TrialBalance lists every leaf, balance-tracked account's totals. A
// correct ledger always balances: TotalDebit equals TotalCredit.
type TrialBalance struct {
	CompanyID   uuid.UUID
	From, To    time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Balanced reports whether the debit and credit columns agree.
func (tb TrialBalance) Balanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// TrialBalance sums POSTED activity per leaf balance-tracked account within
// the date range. Rows come back in statement order (type, sort order, code).
func (s *Service) TrialBalance(ctx context.Context, companyID uuid.UUID, from, to time.Time) (TrialBalance, error) {
	accounts, err := s.store.Accounts().ListByCompany(ctx, companyID)
	if err != nil {
		return TrialBalance{}, err
	}

	tb := TrialBalance{
		CompanyID:   companyID,
		From:        from,
		To:          to,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, account := range accounts {
		if !account.Leaf || !account.TrackBalance {
			continue
		}
		debit, credit, err := postedSums(ctx, s.store, account.ID, from, to)
		if err != nil {
			return TrialBalance{}, err
		}
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			AccountID:   account.ID,
			AccountCode: account.Code,
			AccountName: account.Name,
			AccountType: account.Type,
			Debit:       debit,
			Credit:      credit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(debit)
		tb.TotalCredit = tb.TotalCredit.Add(credit)
	}

	if !tb.Balanced() {
		s.logger.Warn("trial balance does not balance",
			zap.String("company", companyID.String()),
			zap.String("debit", tb.TotalDebit.StringFixed(2)),
			zap.String("credit", tb.TotalCredit.StringFixed(2)))
	}
	return tb, nil
}
