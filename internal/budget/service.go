// Package budget tracks planned versus actual amounts per account and
// fiscal period, with an append-only revision trail.
package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/accounts"
	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/money"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// Service provides budget operations.
type Service struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a budget Service.
func NewService(st store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// CreateParams holds parameters for creating a budget.
type CreateParams struct {
	CompanyID    uuid.UUID
	AccountID    uuid.UUID
	Type         model.BudgetType
	FiscalYear   int
	Period       model.BudgetPeriod
	PeriodNumber int
	Amount       decimal.Decimal
}

// Create registers a DRAFT budget. The period number must fit the
// granularity (1-12 monthly, 1-4 quarterly, 1 annual) and the budget type
// must match the account's type.
func (s *Service) Create(ctx context.Context, p CreateParams) (model.Budget, error) {
	if p.PeriodNumber < 1 || p.PeriodNumber > p.Period.MaxPeriodNumber() {
		return model.Budget{}, apperrors.Validationf("period number %d is out of range 1..%d for %s budgets",
			p.PeriodNumber, p.Period.MaxPeriodNumber(), p.Period)
	}
	if p.Amount.IsNegative() {
		return model.Budget{}, apperrors.Validationf("budget amount must not be negative")
	}

	b := model.Budget{
		ID:           uuid.New(),
		CompanyID:    p.CompanyID,
		AccountID:    p.AccountID,
		Type:         p.Type,
		FiscalYear:   p.FiscalYear,
		Period:       p.Period,
		PeriodNumber: p.PeriodNumber,
		Status:       model.BudgetDraft,
		Amount:       p.Amount,
	}
	CalculateVariance(&b)

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		account, err := tx.Accounts().Get(ctx, p.AccountID)
		if err != nil {
			return err
		}
		if account.Deleted {
			return apperrors.NotFoundf("account %s is deleted", account.Code)
		}
		if account.CompanyID != p.CompanyID {
			return apperrors.Validationf("account %s belongs to a different company", account.Code)
		}
		if err := accounts.ValidateBudgetTypeMatch(p.Type, account.Type); err != nil {
			return err
		}
		return tx.Budgets().Create(ctx, b)
	})
	if err != nil {
		return model.Budget{}, err
	}

	s.logger.Info("budget created",
		zap.String("account", b.AccountID.String()),
		zap.Int("year", b.FiscalYear),
		zap.String("amount", b.Amount.StringFixed(2)))
	return b, nil
}

// budgetTransitions lists the valid lifecycle moves:
// draft -> submitted -> approved -> active -> closed/cancelled.
var budgetTransitions = map[model.BudgetStatus][]model.BudgetStatus{
	model.BudgetSubmitted: {model.BudgetDraft},
	model.BudgetApproved:  {model.BudgetSubmitted},
	model.BudgetActive:    {model.BudgetApproved},
	model.BudgetClosed:    {model.BudgetActive},
	model.BudgetCancelled: {model.BudgetDraft, model.BudgetSubmitted, model.BudgetApproved, model.BudgetActive},
}

// Transition moves a budget to the target status if the lifecycle allows it.
func (s *Service) Transition(ctx context.Context, budgetID uuid.UUID, target model.BudgetStatus) (model.Budget, error) {
	var out model.Budget
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		b, err := tx.Budgets().Get(ctx, budgetID)
		if err != nil {
			return err
		}
		if !transitionAllowed(b.Status, target) {
			return apperrors.StateConflictf("budget cannot move from %s to %s", b.Status, target)
		}
		b.Status = target
		if err := tx.Budgets().Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

func transitionAllowed(from, to model.BudgetStatus) bool {
	for _, allowed := range budgetTransitions[to] {
		if from == allowed {
			return true
		}
	}
	return false
}

// CalculateVariance fills in the derived rates from amount and actual:
// achievement = actual/amount*100, variance = actual-amount, both rates
// zero when the budgeted amount is zero.
func CalculateVariance(b *model.Budget) {
	b.VarianceAmount = b.CurrentActual.Sub(b.Amount)
	b.AchievementRate = money.Percent(b.CurrentActual, b.Amount)
	b.VarianceRate = money.Percent(b.VarianceAmount, b.Amount)
}

// IsOverBudget reports whether actuals exceed the budgeted amount.
func IsOverBudget(b model.Budget) bool {
	return b.CurrentActual.GreaterThan(b.Amount)
}

// RemainingBudget returns the unconsumed amount, floored at zero.
func RemainingBudget(b model.Budget) decimal.Decimal {
	remaining := b.Amount.Sub(b.CurrentActual)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// UpdateActual replaces the current actual and recomputes variance.
func (s *Service) UpdateActual(ctx context.Context, budgetID uuid.UUID, actual decimal.Decimal) (model.Budget, error) {
	var out model.Budget
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		b, err := tx.Budgets().Get(ctx, budgetID)
		if err != nil {
			return err
		}
		b.PreviousActual = b.CurrentActual
		b.CurrentActual = actual
		CalculateVariance(&b)
		if err := tx.Budgets().Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// RefreshActual recomputes the actual from the account's POSTED activity in
// the budget's period window, signed by the account's normal side.
func (s *Service) RefreshActual(ctx context.Context, budgetID uuid.UUID) (model.Budget, error) {
	var out model.Budget
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		b, err := tx.Budgets().Get(ctx, budgetID)
		if err != nil {
			return err
		}
		account, err := tx.Accounts().Get(ctx, b.AccountID)
		if err != nil {
			return err
		}

		from, to := PeriodRange(b.FiscalYear, b.Period, b.PeriodNumber)
		txns, err := tx.Transactions().List(ctx, store.TransactionFilter{
			AccountID: b.AccountID,
			Statuses:  []model.TransactionStatus{model.StatusPosted},
			From:      from,
			To:        to,
		})
		if err != nil {
			return err
		}

		debit, credit := decimal.Zero, decimal.Zero
		for _, t := range txns {
			debit = debit.Add(t.Debit)
			credit = credit.Add(t.Credit)
		}
		actual := debit.Sub(credit)
		if account.Side == model.SideCredit {
			actual = credit.Sub(debit)
		}

		b.PreviousActual = b.CurrentActual
		b.CurrentActual = actual
		CalculateVariance(&b)
		if err := tx.Budgets().Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// Revise appends an immutable revision record, then updates the live amount
// and recomputes variance. The revision log is the audit trail: it is never
// edited or deleted.
func (s *Service) Revise(ctx context.Context, budgetID uuid.UUID, newAmount decimal.Decimal, reason, actor string) (model.Budget, error) {
	if reason == "" {
		return model.Budget{}, apperrors.Validationf("revision reason is required")
	}
	if newAmount.IsNegative() {
		return model.Budget{}, apperrors.Validationf("budget amount must not be negative")
	}

	var out model.Budget
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		b, err := tx.Budgets().Get(ctx, budgetID)
		if err != nil {
			return err
		}

		revision := model.BudgetRevision{
			ID:        uuid.New(),
			BudgetID:  b.ID,
			OldAmount: b.Amount,
			NewAmount: newAmount,
			Reason:    reason,
			Actor:     actor,
			RevisedAt: s.now(),
		}
		if err := tx.Budgets().AppendRevision(ctx, revision); err != nil {
			return err
		}

		b.Amount = newAmount
		CalculateVariance(&b)
		if err := tx.Budgets().Update(ctx, b); err != nil {
			return err
		}
		out = b
		return tx.Audit().Append(ctx, audit.NewEntry(actor, audit.ActionRevise, "budget", b.ID, reason))
	})
	if err != nil {
		return model.Budget{}, err
	}

	s.logger.Info("budget revised",
		zap.String("budget", out.ID.String()),
		zap.String("amount", out.Amount.StringFixed(2)),
		zap.String("actor", actor))
	return out, nil
}

// Get returns a budget by id.
func (s *Service) Get(ctx context.Context, budgetID uuid.UUID) (model.Budget, error) {
	return s.store.Budgets().Get(ctx, budgetID)
}

// Revisions returns a budget's revision trail in order.
func (s *Service) Revisions(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetRevision, error) {
	return s.store.Budgets().ListRevisions(ctx, budgetID)
}

// PeriodRange returns the inclusive date window a budget period covers.
func PeriodRange(year int, period model.BudgetPeriod, number int) (from, to time.Time) {
	switch period {
	case model.PeriodMonthly:
		from = time.Date(year, time.Month(number), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case model.PeriodQuarterly:
		from = time.Date(year, time.Month((number-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 3, 0).Add(-time.Nanosecond)
	default:
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0).Add(-time.Nanosecond)
	}
	return from, to
}
