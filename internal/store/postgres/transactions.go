package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

const txnColumns = `id, company_id, number, date, type, status, account_id, description,
	debit::text, credit::text, fiscal_year, fiscal_month, fiscal_quarter, original_id,
	created_at, approved_by, approved_at, posted_at, cancelled_by, cancel_reason, cancelled_at`

type txnRepo struct{ s *pgStore }

func (r txnRepo) CreateBatch(ctx context.Context, txns []model.Transaction) error {
	// All lines commit in the surrounding transaction or not at all.
	return r.s.WithinTx(ctx, func(tx store.Store) error {
		inner := tx.(*pgStore)
		for _, t := range txns {
			_, err := inner.q.Exec(ctx, `
				INSERT INTO transactions (
					id, company_id, number, date, type, status, account_id, description,
					debit, credit, fiscal_year, fiscal_month, fiscal_quarter, original_id,
					created_at, approved_by, approved_at, posted_at, cancelled_by,
					cancel_reason, cancelled_at
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
				t.ID, t.CompanyID, t.Number, t.Date, t.Type, t.Status, t.AccountID,
				t.Description, t.Debit.String(), t.Credit.String(), t.FiscalYear,
				t.FiscalMonth, t.FiscalQuarter, uuidArg(t.OriginalID), t.CreatedAt,
				t.ApprovedBy, timeArg(t.ApprovedAt), timeArg(t.PostedAt), t.CancelledBy,
				t.CancelReason, timeArg(t.CancelledAt))
			if err != nil {
				return wrapErr(err, "transaction %s not found", t.ID)
			}
		}
		return nil
	})
}

func (r txnRepo) Get(ctx context.Context, id uuid.UUID) (model.Transaction, error) {
	row := r.s.q.QueryRow(ctx, `SELECT `+txnColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTxn(row)
	if err != nil {
		return model.Transaction{}, wrapErr(err, "transaction %s not found", id)
	}
	return t, nil
}

func (r txnRepo) Update(ctx context.Context, t model.Transaction) error {
	tag, err := r.s.q.Exec(ctx, `
		UPDATE transactions SET
			status = $2, description = $3, approved_by = $4, approved_at = $5,
			posted_at = $6, cancelled_by = $7, cancel_reason = $8, cancelled_at = $9
		WHERE id = $1`,
		t.ID, t.Status, t.Description, t.ApprovedBy, timeArg(t.ApprovedAt),
		timeArg(t.PostedAt), t.CancelledBy, t.CancelReason, timeArg(t.CancelledAt))
	if err != nil {
		return wrapErr(err, "transaction %s not found", t.ID)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr(pgx.ErrNoRows, "transaction %s not found", t.ID)
	}
	return nil
}

func (r txnRepo) List(ctx context.Context, f store.TransactionFilter) ([]model.Transaction, error) {
	where, args := filterClause(f)
	rows, err := r.s.q.Query(ctx,
		`SELECT `+txnColumns+` FROM transactions`+where+` ORDER BY date, number`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r txnRepo) Count(ctx context.Context, f store.TransactionFilter) (int, error) {
	where, args := filterClause(f)
	var n int
	err := r.s.q.QueryRow(ctx, `SELECT count(*) FROM transactions`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return n, nil
}

func filterClause(f store.TransactionFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CompanyID != uuid.Nil {
		conds = append(conds, "company_id = "+arg(f.CompanyID))
	}
	if f.AccountID != uuid.Nil {
		conds = append(conds, "account_id = "+arg(f.AccountID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status = ANY("+arg(statuses)+")")
	}
	if !f.From.IsZero() {
		conds = append(conds, "date >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "date <= "+arg(f.To))
	}
	if f.FiscalYear != 0 {
		conds = append(conds, "fiscal_year = "+arg(f.FiscalYear))
	}
	if f.FiscalMonth != 0 {
		conds = append(conds, "fiscal_month = "+arg(f.FiscalMonth))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTxn(row pgx.Row) (model.Transaction, error) {
	var (
		t             model.Transaction
		debit, credit string
		originalID    *uuid.UUID
		approvedAt, postedAt, cancelledAt *time.Time
	)
	err := row.Scan(&t.ID, &t.CompanyID, &t.Number, &t.Date, &t.Type, &t.Status,
		&t.AccountID, &t.Description, &debit, &credit, &t.FiscalYear, &t.FiscalMonth,
		&t.FiscalQuarter, &originalID, &t.CreatedAt, &t.ApprovedBy, &approvedAt,
		&postedAt, &t.CancelledBy, &t.CancelReason, &cancelledAt)
	if err != nil {
		return model.Transaction{}, err
	}
	t.OriginalID = uuidVal(originalID)
	t.ApprovedAt = timeVal(approvedAt)
	t.PostedAt = timeVal(postedAt)
	t.CancelledAt = timeVal(cancelledAt)
	if t.Debit, err = dec(debit); err != nil {
		return model.Transaction{}, err
	}
	if t.Credit, err = dec(credit); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}
