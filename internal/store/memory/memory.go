// Package memory is the in-memory store adapter: the reference semantics for
// the persistence port. A transaction stages a full copy of the state and
// swaps it in on commit, so readers always see a consistent snapshot and a
// failed unit of work leaves nothing behind.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/closebooks-dev/closebooks/internal/audit"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// Store is the committed view. The single RW mutex serializes writes; the
// postgres adapter is the one that offers per-row parallelism.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) run(write bool, fn func(*state) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

// WithinTx stages a clone, runs fn against it, and commits by swapping the
// clone in. An error from fn discards every staged write.
func (s *Store) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&txStore{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Accounts returns the account repository.
func (s *Store) Accounts() store.AccountRepository { return accountRepo{s} }

// Transactions returns the transaction repository.
func (s *Store) Transactions() store.TransactionRepository { return txnRepo{s} }

// Budgets returns the budget repository.
func (s *Store) Budgets() store.BudgetRepository { return budgetRepo{s} }

// Reports returns the report repository.
func (s *Store) Reports() store.ReportRepository { return reportRepo{s} }

// Sequences returns the sequence repository.
func (s *Store) Sequences() store.SequenceRepository { return seqRepo{s} }

// Audit returns the audit log.
func (s *Store) Audit() audit.Log { return auditRepo{s} }

// txStore is the view handed to WithinTx callbacks. The enclosing
// transaction already holds the write lock, so it operates lock-free, and a
// nested WithinTx joins the same transaction.
type txStore struct {
	st *state
}

func (t *txStore) run(_ bool, fn func(*state) error) error { return fn(t.st) }

func (t *txStore) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	return fn(t)
}

func (t *txStore) Accounts() store.AccountRepository         { return accountRepo{t} }
func (t *txStore) Transactions() store.TransactionRepository { return txnRepo{t} }
func (t *txStore) Budgets() store.BudgetRepository           { return budgetRepo{t} }
func (t *txStore) Reports() store.ReportRepository           { return reportRepo{t} }
func (t *txStore) Sequences() store.SequenceRepository       { return seqRepo{t} }
func (t *txStore) Audit() audit.Log                          { return auditRepo{t} }

// view is what the repo wrappers execute against: either the locked
// committed state or an open transaction's staged state.
type view interface {
	run(write bool, fn func(*state) error) error
}

func accountCodeKey(companyID uuid.UUID, code string) string {
	return companyID.String() + "/" + code
}

func budgetKey(companyID, accountID uuid.UUID, year int, period model.BudgetPeriod, number int) string {
	return fmt.Sprintf("%s/%s/%d/%s/%d", companyID, accountID, year, period, number)
}

func reportKey(companyID uuid.UUID, reportType model.ReportType, year, period int) string {
	return fmt.Sprintf("%s/%s/%d/%d", companyID, reportType, year, period)
}

func sequenceKey(companyID uuid.UUID, key string) string {
	return companyID.String() + "/" + key
}
