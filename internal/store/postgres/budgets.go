package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/closebooks-dev/closebooks/internal/model"
)

const budgetColumns = `id, company_id, account_id, type, fiscal_year, period, period_number,
	status, amount::text, previous_actual::text, current_actual::text,
	achievement_rate::text, variance_amount::text, variance_rate::text`

type budgetRepo struct{ s *pgStore }

func (r budgetRepo) Create(ctx context.Context, b model.Budget) error {
	_, err := r.s.q.Exec(ctx, `
		INSERT INTO budgets (
			id, company_id, account_id, type, fiscal_year, period, period_number,
			status, amount, previous_actual, current_actual, achievement_rate,
			variance_amount, variance_rate
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		b.ID, b.CompanyID, b.AccountID, b.Type, b.FiscalYear, b.Period, b.PeriodNumber,
		b.Status, b.Amount.String(), b.PreviousActual.String(), b.CurrentActual.String(),
		b.AchievementRate.String(), b.VarianceAmount.String(), b.VarianceRate.String())
	return wrapErr(err, "budget %s not found", b.ID)
}

func (r budgetRepo) Get(ctx context.Context, id uuid.UUID) (model.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1`
	if r.s.inTx() {
		query += ` FOR UPDATE`
	}
	b, err := scanBudget(r.s.q.QueryRow(ctx, query, id))
	if err != nil {
		return model.Budget{}, wrapErr(err, "budget %s not found", id)
	}
	return b, nil
}

func (r budgetRepo) GetByKey(ctx context.Context, companyID, accountID uuid.UUID, fiscalYear int, period model.BudgetPeriod, periodNumber int) (model.Budget, error) {
	b, err := scanBudget(r.s.q.QueryRow(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE company_id = $1 AND account_id = $2 AND fiscal_year = $3
			AND period = $4 AND period_number = $5`,
		companyID, accountID, fiscalYear, period, periodNumber))
	if err != nil {
		return model.Budget{}, wrapErr(err, "budget not found for account %s, year %d, %s period %d",
			accountID, fiscalYear, period, periodNumber)
	}
	return b, nil
}

func (r budgetRepo) Update(ctx context.Context, b model.Budget) error {
	tag, err := r.s.q.Exec(ctx, `
		UPDATE budgets SET
			status = $2, amount = $3, previous_actual = $4, current_actual = $5,
			achievement_rate = $6, variance_amount = $7, variance_rate = $8
		WHERE id = $1`,
		b.ID, b.Status, b.Amount.String(), b.PreviousActual.String(),
		b.CurrentActual.String(), b.AchievementRate.String(),
		b.VarianceAmount.String(), b.VarianceRate.String())
	if err != nil {
		return wrapErr(err, "budget %s not found", b.ID)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr(pgx.ErrNoRows, "budget %s not found", b.ID)
	}
	return nil
}

func (r budgetRepo) ListByCompanyYear(ctx context.Context, companyID uuid.UUID, fiscalYear int) ([]model.Budget, error) {
	rows, err := r.s.q.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE company_id = $1 AND fiscal_year = $2
		ORDER BY account_id, period, period_number`,
		companyID, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var out []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r budgetRepo) AppendRevision(ctx context.Context, rev model.BudgetRevision) error {
	_, err := r.s.q.Exec(ctx, `
		INSERT INTO budget_revisions (id, budget_id, old_amount, new_amount, reason, actor, revised_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rev.ID, rev.BudgetID, rev.OldAmount.String(), rev.NewAmount.String(),
		rev.Reason, rev.Actor, rev.RevisedAt)
	return wrapErr(err, "budget %s not found", rev.BudgetID)
}

func (r budgetRepo) ListRevisions(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetRevision, error) {
	rows, err := r.s.q.Query(ctx, `
		SELECT id, budget_id, old_amount::text, new_amount::text, reason, actor, revised_at
		FROM budget_revisions WHERE budget_id = $1 ORDER BY revised_at, id`,
		budgetID)
	if err != nil {
		return nil, fmt.Errorf("listing budget revisions: %w", err)
	}
	defer rows.Close()

	var out []model.BudgetRevision
	for rows.Next() {
		var (
			rev                  model.BudgetRevision
			oldAmount, newAmount string
		)
		if err := rows.Scan(&rev.ID, &rev.BudgetID, &oldAmount, &newAmount,
			&rev.Reason, &rev.Actor, &rev.RevisedAt); err != nil {
			return nil, err
		}
		if rev.OldAmount, err = dec(oldAmount); err != nil {
			return nil, err
		}
		if rev.NewAmount, err = dec(newAmount); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func scanBudget(row pgx.Row) (model.Budget, error) {
	var (
		b model.Budget
		amount, prevActual, curActual, achievement, varAmount, varRate string
	)
	err := row.Scan(&b.ID, &b.CompanyID, &b.AccountID, &b.Type, &b.FiscalYear,
		&b.Period, &b.PeriodNumber, &b.Status, &amount, &prevActual, &curActual,
		&achievement, &varAmount, &varRate)
	if err != nil {
		return model.Budget{}, err
	}
	if b.Amount, err = dec(amount); err != nil {
		return model.Budget{}, err
	}
	if b.PreviousActual, err = dec(prevActual); err != nil {
		return model.Budget{}, err
	}
	if b.CurrentActual, err = dec(curActual); err != nil {
		return model.Budget{}, err
	}
	if b.AchievementRate, err = dec(achievement); err != nil {
		return model.Budget{}, err
	}
	if b.VarianceAmount, err = dec(varAmount); err != nil {
		return model.Budget{}, err
	}
	if b.VarianceRate, err = dec(varRate); err != nil {
		return model.Budget{}, err
	}
	return b, nil
}
