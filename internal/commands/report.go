package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/closebooks-dev/closebooks/internal/export"
	"github.com/closebooks-dev/closebooks/internal/model"
)

func newReportCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate financial reports",
	}
	cmd.AddCommand(newTrialBalanceCommand(configPath))
	cmd.AddCommand(newGeneralLedgerCommand(configPath))
	cmd.AddCommand(newStatementCommand(configPath))
	return cmd
}

// outputFor returns the writer a report should render to: stdout, or the
// file named by --out.
func outputFor(cmd *cobra.Command, out string) (io.Writer, func() error, error) {
	if out == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", out, err)
	}
	return f, f.Close, nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --%s %q: %w", name, value, err)
	}
	return t, nil
}

func newTrialBalanceCommand(configPath *string) *cobra.Command {
	var fromStr, toStr, out string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Trial balance over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			from, err := parseDateFlag("from", fromStr)
			if err != nil {
				return err
			}
			to, err := parseDateFlag("to", toStr)
			if err != nil {
				return err
			}

			tb, err := a.reports.TrialBalance(cmd.Context(), a.companyID, from, to)
			if err != nil {
				return err
			}

			w, closeFn, err := outputFor(cmd, out)
			if err != nil {
				return err
			}
			if err := export.WriteTrialBalance(w, tb); err != nil {
				_ = closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			if !tb.Balanced() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: trial balance does not balance: debits %s, credits %s\n",
					tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "start date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&toStr, "to", "", "end date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&out, "out", "", "write CSV to this file instead of stdout")
	return cmd
}

func newGeneralLedgerCommand(configPath *string) *cobra.Command {
	var fromStr, toStr, out string

	cmd := &cobra.Command{
		Use:   "general-ledger <account-code>",
		Short: "One account's transaction history with a running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			from, err := parseDateFlag("from", fromStr)
			if err != nil {
				return err
			}
			to, err := parseDateFlag("to", toStr)
			if err != nil {
				return err
			}

			account, err := a.accounts.GetByCode(cmd.Context(), a.companyID, args[0])
			if err != nil {
				return err
			}
			gl, err := a.reports.GeneralLedger(cmd.Context(), account.ID, from, to)
			if err != nil {
				return err
			}

			w, closeFn, err := outputFor(cmd, out)
			if err != nil {
				return err
			}
			if err := export.WriteGeneralLedger(w, gl); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "start date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&toStr, "to", "", "end date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&out, "out", "", "write CSV to this file instead of stdout")
	return cmd
}

func newStatementCommand(configPath *string) *cobra.Command {
	var (
		reportType, asOfStr, out string
		year, period             int
	)

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Generate and store a balance sheet or income statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			asOf, err := parseDateFlag("as-of", asOfStr)
			if err != nil {
				return err
			}

			report, err := a.reports.GenerateStatement(cmd.Context(), a.companyID,
				model.ReportType(reportType), year, period, asOf)
			if err != nil {
				return err
			}

			w, closeFn, err := outputFor(cmd, out)
			if err != nil {
				return err
			}
			if err := export.WriteStatement(w, report); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVar(&reportType, "type", string(model.ReportBalanceSheet), "balance_sheet or income_statement")
	cmd.Flags().IntVar(&year, "year", 0, "fiscal year (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().IntVar(&period, "period", 0, "fiscal period (required)")
	_ = cmd.MarkFlagRequired("period")
	cmd.Flags().StringVar(&asOfStr, "as-of", "", "balance cutoff date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("as-of")
	cmd.Flags().StringVar(&out, "out", "", "write CSV to this file instead of stdout")
	return cmd
}
