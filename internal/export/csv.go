// Package export renders report snapshots to CSV for the external
// export/document subsystem. The core hands over line items; formatting
// into PDF or spreadsheets happens elsewhere.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/reporting"
)

// TrialBalanceHeader is the CSV header for trial balance exports.
var TrialBalanceHeader = []string{"account_code", "account_name", "account_type", "debit", "credit"}

// WriteTrialBalance renders a trial balance, one account per row plus a
// totals row.
func WriteTrialBalance(w io.Writer, tb reporting.TrialBalance) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(TrialBalanceHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range tb.Rows {
		record := []string{
			row.AccountCode,
			row.AccountName,
			string(row.AccountType),
			row.Debit.StringFixed(2),
			row.Credit.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row for account %s: %w", row.AccountCode, err)
		}
	}
	totals := []string{"", "Total", "", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2)}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}
	return cw.Error()
}

// GeneralLedgerHeader is the CSV header for general ledger exports.
var GeneralLedgerHeader = []string{"date", "number", "description", "debit", "credit", "balance"}

// WriteGeneralLedger renders one account's running-balance history,
// starting with an opening balance row.
func WriteGeneralLedger(w io.Writer, gl reporting.GeneralLedger) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(GeneralLedgerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	opening := []string{"", "", "Opening balance", "", "", gl.OpeningBalance.StringFixed(2)}
	if err := cw.Write(opening); err != nil {
		return fmt.Errorf("writing opening row: %w", err)
	}
	for _, line := range gl.Lines {
		t := line.Transaction
		record := []string{
			t.Date.Format(time.DateOnly),
			t.Number,
			t.Description,
			t.Debit.StringFixed(2),
			t.Credit.StringFixed(2),
			line.Balance.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %s: %w", t.Number, err)
		}
	}
	return cw.Error()
}

// StatementHeader is the CSV header for statement exports.
var StatementHeader = []string{"kind", "label", "current", "previous", "change_amount", "change_rate"}

// WriteStatement renders a statement snapshot's line items in order.
func WriteStatement(w io.Writer, report model.FinancialReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(StatementHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, item := range report.Items {
		record := []string{
			string(item.Kind),
			item.Label,
			item.Current.StringFixed(2),
			item.Previous.StringFixed(2),
			item.ChangeAmount.StringFixed(2),
			item.ChangeRate.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing item %q: %w", item.Label, err)
		}
	}
	return cw.Error()
}
