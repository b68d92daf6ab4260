// Package ledger drives the journal-entry state machine:
//
//	DRAFT -> PENDING -> APPROVED -> POSTED
//	DRAFT/PENDING -> CANCELLED
//
// POSTED and CANCELLED are terminal. Posting applies the line's amount to
// its account exactly once; a POSTED line is corrected by a reversing
// entry, never by cancellation.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/balance"
	"github.com/closebooks-dev/closebooks/internal/id"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// Service provides journal-entry operations.
type Service struct {
	store  store.Store
	calc   *balance.Calculator
	logger *zap.Logger
	locks  *accountLocks
	now    func() time.Time
}

// NewService creates a ledger Service.
func NewService(st store.Store, calc *balance.Calculator, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		calc:   calc,
		logger: logger,
		locks:  newAccountLocks(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// LineParams is one side of a journal entry: exactly one of Debit/Credit
// must be positive.
type LineParams struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// EntryParams holds parameters for creating a journal entry.
type EntryParams struct {
	CompanyID   uuid.UUID
	Date        time.Time
	Type        model.TransactionType
	Description string
	Actor       string
	Lines       []LineParams
}

// CreateJournalEntry validates a whole entry and persists every line as
// DRAFT, or nothing at all. The entry must balance: the sum of debits
// across lines must equal the sum of credits.
func (s *Service) CreateJournalEntry(ctx context.Context, p EntryParams) ([]model.Transaction, error) {
	if len(p.Lines) == 0 {
		return nil, apperrors.Validationf("journal entry requires at least one line")
	}
	if p.Date.IsZero() {
		return nil, apperrors.Validationf("journal entry date is required")
	}
	if p.Type == "" {
		p.Type = model.TypeJournal
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for i, line := range p.Lines {
		if err := validateLine(i, line); err != nil {
			return nil, err
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, apperrors.Validationf("journal entry does not balance: debits %s != credits %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}

	fiscal := model.FiscalPeriodOf(p.Date)
	prefix := p.Type.Prefix()
	created := make([]model.Transaction, 0, len(p.Lines))

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		created = created[:0]
		for _, line := range p.Lines {
			account, err := tx.Accounts().Get(ctx, line.AccountID)
			if err != nil {
				return err
			}
			if account.Deleted {
				return apperrors.NotFoundf("account %s is deleted", account.Code)
			}
			if account.CompanyID != p.CompanyID {
				return apperrors.Validationf("account %s belongs to a different company", account.Code)
			}
			if !account.Leaf {
				return apperrors.Validationf("account %s is not a leaf account and cannot be posted to", account.Code)
			}

			seq, err := tx.Sequences().Next(ctx, p.CompanyID, id.DayKey(prefix, p.Date))
			if err != nil {
				return err
			}

			description := line.Description
			if description == "" {
				description = p.Description
			}
			created = append(created, model.Transaction{
				ID:            uuid.New(),
				CompanyID:     p.CompanyID,
				Number:        id.FormatNumber(prefix, p.Date, seq),
				Date:          p.Date,
				Type:          p.Type,
				Status:        model.StatusDraft,
				AccountID:     line.AccountID,
				Description:   description,
				Debit:         line.Debit,
				Credit:        line.Credit,
				FiscalYear:    fiscal.Year,
				FiscalMonth:   fiscal.Month,
				FiscalQuarter: fiscal.Quarter,
				CreatedAt:     s.now(),
			})
		}

		if err := tx.Transactions().CreateBatch(ctx, created); err != nil {
			return err
		}

		entries := make([]audit.Entry, len(created))
		for i, t := range created {
			entries[i] = audit.NewEntry(p.Actor, audit.ActionCreate, "transaction", t.ID, t.Number)
		}
		return tx.Audit().Append(ctx, entries...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("journal entry created",
		zap.String("number", created[0].Number),
		zap.Int("lines", len(created)),
		zap.String("total", totalDebit.StringFixed(2)))
	return created, nil
}

// Submit moves a DRAFT line to PENDING approval.
func (s *Service) Submit(ctx context.Context, txnID uuid.UUID) (model.Transaction, error) {
	return s.transition(ctx, txnID, func(t *model.Transaction) error {
		if t.Status != model.StatusDraft {
			return apperrors.StateConflictf("transaction %s is %s, only DRAFT can be submitted", t.Number, t.Status)
		}
		t.Status = model.StatusPending
		return nil
	}, "", audit.Action("submit"))
}

// Approve stamps the approver and moves a DRAFT or PENDING line to APPROVED.
func (s *Service) Approve(ctx context.Context, txnID uuid.UUID, approver string) (model.Transaction, error) {
	if approver == "" {
		return model.Transaction{}, apperrors.Validationf("approver is required")
	}
	return s.transition(ctx, txnID, func(t *model.Transaction) error {
		if t.Status != model.StatusDraft && t.Status != model.StatusPending {
			return apperrors.StateConflictf("transaction %s is %s and cannot be approved", t.Number, t.Status)
		}
		t.Status = model.StatusApproved
		t.ApprovedBy = approver
		t.ApprovedAt = s.now()
		return nil
	}, approver, audit.ActionApprove)
}

// Post applies an APPROVED line to its account balance and marks it POSTED.
// The transition and the balance effect commit in the same transaction, and
// postings to one account are serialized, so the amount applies exactly
// once: re-posting a POSTED line fails instead of double-applying.
func (s *Service) Post(ctx context.Context, txnID uuid.UUID) (model.Transaction, error) {
	txn, err := s.store.Transactions().Get(ctx, txnID)
	if err != nil {
		return model.Transaction{}, err
	}

	unlock := s.locks.lock(txn.AccountID)
	defer unlock()

	var posted model.Transaction
	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		t, err := tx.Transactions().Get(ctx, txnID)
		if err != nil {
			return err
		}
		if t.Status != model.StatusApproved {
			return apperrors.StateConflictf("transaction %s is %s, only APPROVED can be posted", t.Number, t.Status)
		}

		if err := s.calc.ApplyPosting(ctx, tx, t.AccountID, t.Amount(), t.IsDebit()); err != nil {
			return err
		}

		t.Status = model.StatusPosted
		t.PostedAt = s.now()
		if err := tx.Transactions().Update(ctx, t); err != nil {
			return err
		}
		posted = t
		return tx.Audit().Append(ctx, audit.NewEntry(t.ApprovedBy, audit.ActionPost, "transaction", t.ID, t.Number))
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.logger.Info("transaction posted",
		zap.String("number", posted.Number),
		zap.String("amount", posted.Amount().StringFixed(2)))
	return posted, nil
}

// Cancel voids a DRAFT or PENDING line. POSTED lines are immutable history:
// correcting one takes a reversing entry.
func (s *Service) Cancel(ctx context.Context, txnID uuid.UUID, reason, actor string) (model.Transaction, error) {
	if reason == "" {
		return model.Transaction{}, apperrors.Validationf("cancellation reason is required")
	}
	return s.transition(ctx, txnID, func(t *model.Transaction) error {
		switch t.Status {
		case model.StatusDraft, model.StatusPending:
		case model.StatusPosted:
			return apperrors.StateConflictf("transaction %s is POSTED; use a reversing entry instead of cancellation", t.Number)
		default:
			return apperrors.StateConflictf("transaction %s is %s and cannot be cancelled", t.Number, t.Status)
		}
		t.Status = model.StatusCancelled
		t.CancelReason = reason
		t.CancelledBy = actor
		t.CancelledAt = s.now()
		return nil
	}, actor, audit.ActionCancel)
}

// CreateReversingEntry builds a new DRAFT line that undoes a POSTED one:
// debit and credit swapped, same account and fiscal period, back-reference
// to the original. History stays untouched.
func (s *Service) CreateReversingEntry(ctx context.Context, originalID uuid.UUID, actor string) (model.Transaction, error) {
	var reversal model.Transaction
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		original, err := tx.Transactions().Get(ctx, originalID)
		if err != nil {
			return err
		}
		if original.Status != model.StatusPosted {
			return apperrors.StateConflictf("transaction %s is %s, only POSTED lines can be reversed", original.Number, original.Status)
		}

		seq, err := tx.Sequences().Next(ctx, original.CompanyID, id.DayKey(original.Type.Prefix(), original.Date))
		if err != nil {
			return err
		}

		reversal = model.Transaction{
			ID:            uuid.New(),
			CompanyID:     original.CompanyID,
			Number:        id.FormatNumber(original.Type.Prefix(), original.Date, seq),
			Date:          original.Date,
			Type:          original.Type,
			Status:        model.StatusDraft,
			AccountID:     original.AccountID,
			Description:   "Reversal of " + original.Number + ": " + original.Description,
			Debit:         original.Credit,
			Credit:        original.Debit,
			FiscalYear:    original.FiscalYear,
			FiscalMonth:   original.FiscalMonth,
			FiscalQuarter: original.FiscalQuarter,
			OriginalID:    original.ID,
			CreatedAt:     s.now(),
		}

		if err := tx.Transactions().CreateBatch(ctx, []model.Transaction{reversal}); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, audit.NewEntry(actor, audit.ActionReverse, "transaction", reversal.ID,
			"reverses "+original.Number))
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.logger.Info("reversing entry created",
		zap.String("number", reversal.Number),
		zap.String("reverses", reversal.OriginalID.String()))
	return reversal, nil
}

// Get returns a journal line by id.
func (s *Service) Get(ctx context.Context, txnID uuid.UUID) (model.Transaction, error) {
	return s.store.Transactions().Get(ctx, txnID)
}

// List returns journal lines matching the filter.
func (s *Service) List(ctx context.Context, filter store.TransactionFilter) ([]model.Transaction, error) {
	return s.store.Transactions().List(ctx, filter)
}

func (s *Service) transition(ctx context.Context, txnID uuid.UUID, mutate func(*model.Transaction) error, actor string, action audit.Action) (model.Transaction, error) {
	var out model.Transaction
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		t, err := tx.Transactions().Get(ctx, txnID)
		if err != nil {
			return err
		}
		if err := mutate(&t); err != nil {
			return err
		}
		if err := tx.Transactions().Update(ctx, t); err != nil {
			return err
		}
		out = t
		return tx.Audit().Append(ctx, audit.NewEntry(actor, action, "transaction", t.ID, t.Number))
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return out, nil
}

func validateLine(index int, line LineParams) error {
	if line.AccountID == uuid.Nil {
		return apperrors.Validationf("line %d: account is required", index+1)
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return apperrors.Validationf("line %d: amounts must not be negative", index+1)
	}
	hasDebit := line.Debit.IsPositive()
	hasCredit := line.Credit.IsPositive()
	if hasDebit == hasCredit {
		return apperrors.Validationf("line %d: exactly one of debit or credit must be set", index+1)
	}
	if line.Debit.Exponent() < -2 || line.Credit.Exponent() < -2 {
		amount := line.Debit
		if hasCredit {
			amount = line.Credit
		}
		if !amount.Equal(amount.Round(2)) {
			return apperrors.Validationf("line %d: amount %s has more than 2 decimal places", index+1, amount)
		}
	}
	return nil
}
