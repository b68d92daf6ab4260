// Package importer bulk-loads draft journal entries from CSV files.
// Imported lines enter the normal DRAFT lifecycle: nothing posts without
// approval.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closebooks-dev/closebooks/internal/accounts"
	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/ledger"
	"github.com/closebooks-dev/closebooks/internal/model"
)

// Parser converts an input file into journal rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&JournalParser{})
	return r
}

// Service turns parsed rows into draft journal entries.
type Service struct {
	registry *Registry
	accounts *accounts.Service
	ledger   *ledger.Service
}

// NewService creates an import Service.
func NewService(registry *Registry, accts *accounts.Service, led *ledger.Service) *Service {
	return &Service{registry: registry, accounts: accts, ledger: led}
}

// Import parses the input and creates one draft journal entry per entry
// group, in file order. Each group must balance on its own; a bad group
// fails the whole import so a half-imported file never lingers.
func (s *Service) Import(ctx context.Context, r io.Reader, format string, companyID uuid.UUID, actor string) ([]model.Transaction, error) {
	parser := s.registry.Get(format)
	if parser == nil {
		return nil, apperrors.Validationf("unknown import format %q", format)
	}

	rows, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	groups, order := groupRows(rows)

	// Resolve and validate every group before creating anything, so a bad
	// group anywhere in the file commits nothing.
	entries := make([]ledger.EntryParams, 0, len(order))
	for _, key := range order {
		group := groups[key]
		params := ledger.EntryParams{
			CompanyID: companyID,
			Date:      group[0].Date,
			Type:      model.TypeJournal,
			Actor:     actor,
		}
		totalDebit, totalCredit := decimal.Zero, decimal.Zero
		for _, row := range group {
			account, err := s.accounts.GetByCode(ctx, companyID, row.AccountCode)
			if err != nil {
				return nil, err
			}
			totalDebit = totalDebit.Add(row.Debit)
			totalCredit = totalCredit.Add(row.Credit)
			params.Lines = append(params.Lines, ledger.LineParams{
				AccountID:   account.ID,
				Debit:       row.Debit,
				Credit:      row.Credit,
				Description: row.Description,
			})
		}
		if !totalDebit.Equal(totalCredit) {
			return nil, apperrors.Validationf("entry %q does not balance: debits %s != credits %s",
				key, totalDebit.StringFixed(2), totalCredit.StringFixed(2))
		}
		entries = append(entries, params)
	}

	var created []model.Transaction
	for i, params := range entries {
		txns, err := s.ledger.CreateJournalEntry(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", order[i], err)
		}
		created = append(created, txns...)
	}
	return created, nil
}

func groupRows(rows []Row) (map[string][]Row, []string) {
	groups := make(map[string][]Row)
	var order []string
	for _, row := range rows {
		if _, seen := groups[row.Entry]; !seen {
			order = append(order, row.Entry)
		}
		groups[row.Entry] = append(groups[row.Entry], row)
	}
	return groups, order
}
