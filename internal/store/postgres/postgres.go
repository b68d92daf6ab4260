// Package postgres is the pgx-backed store adapter. Uniqueness keys live in
// the schema (see schema.sql); unit-of-work maps to a database transaction;
// per-account serialization rides on row locks.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB owns the connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against the given database URL.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is not set")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close releases the pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Store returns the store port backed by this pool.
func (d *DB) Store() store.Store {
	return &pgStore{q: d.pool, pool: d.pool}
}

// pgStore executes either directly on the pool or, inside WithinTx, on the
// open transaction.
type pgStore struct {
	q    querier
	pool *pgxpool.Pool // nil when q is a transaction
}

func (s *pgStore) inTx() bool { return s.pool == nil }

// WithinTx opens a database transaction and commits it when fn succeeds.
// A nested call joins the open transaction.
func (s *pgStore) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	if s.inTx() {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(&pgStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *pgStore) Accounts() store.AccountRepository         { return accountRepo{s} }
func (s *pgStore) Transactions() store.TransactionRepository { return txnRepo{s} }
func (s *pgStore) Budgets() store.BudgetRepository           { return budgetRepo{s} }
func (s *pgStore) Reports() store.ReportRepository           { return reportRepo{s} }
func (s *pgStore) Sequences() store.SequenceRepository       { return seqRepo{s} }
func (s *pgStore) Audit() audit.Log                          { return auditRepo{s} }

// wrapErr translates database errors into the core taxonomy.
func wrapErr(err error, notFoundf string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFoundf(notFoundf, args...)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperrors.Duplicatef("unique key violation: %s", pgErr.ConstraintName)
	}
	return err
}
