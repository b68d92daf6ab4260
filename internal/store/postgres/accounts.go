package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/closebooks-dev/closebooks/internal/model"
)

const accountColumns = `id, company_id, code, name, type, category, side, level, parent_id, leaf,
	track_balance, sort_order, description, opening_balance::text, debit_balance::text,
	credit_balance::text, current_balance::text, budget_amount::text, deleted`

type accountRepo struct{ s *pgStore }

func (r accountRepo) Create(ctx context.Context, a model.Account) error {
	_, err := r.s.q.Exec(ctx, `
		INSERT INTO accounts (
			id, company_id, code, name, type, category, side, level, parent_id, leaf,
			track_balance, sort_order, description, opening_balance, debit_balance,
			credit_balance, current_balance, budget_amount, deleted
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		a.ID, a.CompanyID, a.Code, a.Name, a.Type, a.Category, a.Side, a.Level,
		uuidArg(a.ParentID), a.Leaf, a.TrackBalance, a.SortOrder, a.Description,
		a.OpeningBalance.String(), a.DebitBalance.String(), a.CreditBalance.String(),
		a.CurrentBalance.String(), a.BudgetAmount.String(), a.Deleted)
	return wrapErr(err, "account %s not found", a.ID)
}

func (r accountRepo) Get(ctx context.Context, id uuid.UUID) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if r.s.inTx() {
		// Row lock: postings against the same account queue up here.
		query += ` FOR UPDATE`
	}
	row := r.s.q.QueryRow(ctx, query, id)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, wrapErr(err, "account %s not found", id)
	}
	return a, nil
}

func (r accountRepo) GetByCode(ctx context.Context, companyID uuid.UUID, code string) (model.Account, error) {
	row := r.s.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE company_id = $1 AND code = $2`,
		companyID, code)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, wrapErr(err, "account code %s not found", code)
	}
	return a, nil
}

func (r accountRepo) Update(ctx context.Context, a model.Account) error {
	tag, err := r.s.q.Exec(ctx, `
		UPDATE accounts SET
			code = $2, name = $3, type = $4, category = $5, side = $6, level = $7,
			parent_id = $8, leaf = $9, track_balance = $10, sort_order = $11,
			description = $12, opening_balance = $13, debit_balance = $14,
			credit_balance = $15, current_balance = $16, budget_amount = $17, deleted = $18
		WHERE id = $1`,
		a.ID, a.Code, a.Name, a.Type, a.Category, a.Side, a.Level,
		uuidArg(a.ParentID), a.Leaf, a.TrackBalance, a.SortOrder, a.Description,
		a.OpeningBalance.String(), a.DebitBalance.String(), a.CreditBalance.String(),
		a.CurrentBalance.String(), a.BudgetAmount.String(), a.Deleted)
	if err != nil {
		return wrapErr(err, "account %s not found", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr(pgx.ErrNoRows, "account %s not found", a.ID)
	}
	return nil
}

func (r accountRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Account, error) {
	rows, err := r.s.q.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE company_id = $1 AND NOT deleted
		ORDER BY CASE type
			WHEN 'asset' THEN 0 WHEN 'liability' THEN 1 WHEN 'equity' THEN 2
			WHEN 'revenue' THEN 3 ELSE 4 END, sort_order, code`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r accountRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]model.Account, error) {
	rows, err := r.s.q.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE parent_id = $1 AND NOT deleted
		ORDER BY sort_order, code`,
		parentID)
	if err != nil {
		return nil, fmt.Errorf("listing child accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]model.Account, error) {
	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (model.Account, error) {
	var (
		a        model.Account
		parentID *uuid.UUID
		opening, debit, credit, current, budget string
	)
	err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.Category, &a.Side,
		&a.Level, &parentID, &a.Leaf, &a.TrackBalance, &a.SortOrder, &a.Description,
		&opening, &debit, &credit, &current, &budget, &a.Deleted)
	if err != nil {
		return model.Account{}, err
	}
	a.ParentID = uuidVal(parentID)
	if a.OpeningBalance, err = dec(opening); err != nil {
		return model.Account{}, err
	}
	if a.DebitBalance, err = dec(debit); err != nil {
		return model.Account{}, err
	}
	if a.CreditBalance, err = dec(credit); err != nil {
		return model.Account{}, err
	}
	if a.CurrentBalance, err = dec(current); err != nil {
		return model.Account{}, err
	}
	if a.BudgetAmount, err = dec(budget); err != nil {
		return model.Account{}, err
	}
	return a, nil
}
