// Package closing orchestrates month-end and year-end closing across all
// accounts of a company.
package closing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/balance"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// Coordinator runs closing batches.
type Coordinator struct {
	store  store.Store
	calc   *balance.Calculator
	logger *zap.Logger
}

// NewCoordinator creates a closing Coordinator.
func NewCoordinator(st store.Store, calc *balance.Calculator, logger *zap.Logger) *Coordinator {
	return &Coordinator{store: st, calc: calc, logger: logger}
}

// ClosePeriod closes one fiscal month. Precondition, checked against
// current state immediately before any mutation: no DRAFT or PENDING
// transactions remain in the period. On violation it fails with the exact
// blocking count and mutates nothing. On success every balance-tracked
// account is recomputed from posted history; each recompute is idempotent,
// so an interrupted run can simply be restarted. A completed close leaves
// an audit entry against the company.
func (c *Coordinator) ClosePeriod(ctx context.Context, companyID uuid.UUID, year, month int, actor string) error {
	if month < 1 || month > 12 {
		return apperrors.Validationf("month %d is out of range 1..12", month)
	}

	if err := c.checkNoPending(ctx, companyID, year, month); err != nil {
		return err
	}

	accountList, err := c.store.Accounts().ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	closed := 0
	for _, account := range accountList {
		if !account.TrackBalance {
			continue
		}
		if _, err := c.calc.Recompute(ctx, account.ID, time.Time{}); err != nil {
			return err
		}
		closed++
	}

	entry := audit.NewEntry(actor, audit.ActionClose, "company", companyID, fmt.Sprintf("%d-%02d", year, month))
	if err := c.store.Audit().Append(ctx, entry); err != nil {
		return err
	}

	c.logger.Info("fiscal period closed",
		zap.String("company", companyID.String()),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("accounts", closed))
	return nil
}

// CloseYear closes all twelve months in order, then clears the nominal
// (revenue and expense) accounts: their debit, credit, and current balances
// reset to zero, modeling the closing entry into retained earnings.
func (c *Coordinator) CloseYear(ctx context.Context, companyID uuid.UUID, year int, actor string) error {
	for month := 1; month <= 12; month++ {
		if err := c.ClosePeriod(ctx, companyID, year, month, actor); err != nil {
			return err
		}
	}

	err := c.store.WithinTx(ctx, func(tx store.Store) error {
		accountList, err := tx.Accounts().ListByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		for _, account := range accountList {
			if !account.Type.Nominal() {
				continue
			}
			account.DebitBalance = decimal.Zero
			account.CreditBalance = decimal.Zero
			account.CurrentBalance = decimal.Zero
			if err := tx.Accounts().Update(ctx, account); err != nil {
				return err
			}
		}
		return tx.Audit().Append(ctx, audit.NewEntry(actor, audit.ActionClose, "company", companyID, fmt.Sprintf("FY%d", year)))
	})
	if err != nil {
		return err
	}

	c.logger.Info("fiscal year closed",
		zap.String("company", companyID.String()),
		zap.Int("year", year))
	return nil
}

// checkNoPending re-reads the blocking count inside its own transaction so
// the answer reflects current state, not a stale snapshot.
func (c *Coordinator) checkNoPending(ctx context.Context, companyID uuid.UUID, year, month int) error {
	return c.store.WithinTx(ctx, func(tx store.Store) error {
		count, err := tx.Transactions().Count(ctx, store.TransactionFilter{
			CompanyID:   companyID,
			Statuses:    []model.TransactionStatus{model.StatusDraft, model.StatusPending},
			FiscalYear:  year,
			FiscalMonth: month,
		})
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.StateConflictf("cannot close %d-%02d: %d transactions awaiting approval", year, month, count)
		}
		return nil
	})
}
