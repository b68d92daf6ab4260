package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one parsed journal line. Rows sharing an Entry value form one
// balanced journal entry.
type Row struct {
	Entry       string
	Date        time.Time
	AccountCode string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// JournalParser parses the built-in journal CSV format:
// entry,date,account_code,description,debit,credit
type JournalParser struct{}

const (
	journalNumFields = 6
	colEntry         = 0
	colDate          = 1
	colAccountCode   = 2
	colDescription   = 3
	colDebit         = 4
	colCredit        = 5
)

// Format returns the parser name.
func (p *JournalParser) Format() string { return "journal" }

// Parse reads journal rows, skipping the header.
func (p *JournalParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = journalNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (Row, error) {
	date, err := time.Parse(time.DateOnly, rec[colDate])
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}

	debit := decimal.Zero
	if rec[colDebit] != "" {
		if debit, err = decimal.NewFromString(rec[colDebit]); err != nil {
			return Row{}, fmt.Errorf("parsing debit %q: %w", rec[colDebit], err)
		}
	}
	credit := decimal.Zero
	if rec[colCredit] != "" {
		if credit, err = decimal.NewFromString(rec[colCredit]); err != nil {
			return Row{}, fmt.Errorf("parsing credit %q: %w", rec[colCredit], err)
		}
	}

	return Row{
		Entry:       rec[colEntry],
		Date:        date,
		AccountCode: rec[colAccountCode],
		Description: rec[colDescription],
		Debit:       debit,
		Credit:      credit,
	}, nil
}
