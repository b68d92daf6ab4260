package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/ledger"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

func newJournalCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Create and work journal entries through their lifecycle",
	}
	cmd.AddCommand(newJournalAddCommand(configPath))
	cmd.AddCommand(newJournalSubmitCommand(configPath))
	cmd.AddCommand(newJournalApproveCommand(configPath))
	cmd.AddCommand(newJournalPostCommand(configPath))
	cmd.AddCommand(newJournalCancelCommand(configPath))
	cmd.AddCommand(newJournalReverseCommand(configPath))
	cmd.AddCommand(newJournalListCommand(configPath))
	cmd.AddCommand(newJournalImportCommand(configPath))
	return cmd
}

// parseLine parses a --debit/--credit flag value of the form
// "<account-code>:<amount>[:description]".
func parseLine(spec string) (code string, amount decimal.Decimal, desc string, err error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return "", decimal.Zero, "", apperrors.Validationf("line %q must be code:amount[:description]", spec)
	}
	amount, err = decimal.NewFromString(parts[1])
	if err != nil {
		return "", decimal.Zero, "", fmt.Errorf("parsing amount in %q: %w", spec, err)
	}
	if len(parts) == 3 {
		desc = parts[2]
	}
	return parts[0], amount, desc, nil
}

func newJournalAddCommand(configPath *string) *cobra.Command {
	var (
		dateStr, description, actor, entryType string
		debits, credits                        []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a draft journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			date, err := time.Parse(time.DateOnly, dateStr)
			if err != nil {
				return fmt.Errorf("parsing date %q: %w", dateStr, err)
			}

			params := ledger.EntryParams{
				CompanyID:   a.companyID,
				Date:        date,
				Type:        model.TransactionType(entryType),
				Description: description,
				Actor:       actor,
			}
			for _, spec := range debits {
				code, amount, desc, err := parseLine(spec)
				if err != nil {
					return err
				}
				account, err := a.accounts.GetByCode(cmd.Context(), a.companyID, code)
				if err != nil {
					return err
				}
				params.Lines = append(params.Lines, ledger.LineParams{
					AccountID: account.ID, Debit: amount, Description: desc,
				})
			}
			for _, spec := range credits {
				code, amount, desc, err := parseLine(spec)
				if err != nil {
					return err
				}
				account, err := a.accounts.GetByCode(cmd.Context(), a.companyID, code)
				if err != nil {
					return err
				}
				params.Lines = append(params.Lines, ledger.LineParams{
					AccountID: account.ID, Credit: amount, Description: desc,
				})
			}

			txns, err := a.ledger.CreateJournalEntry(cmd.Context(), params)
			if err != nil {
				return err
			}
			for _, t := range txns {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", t.Number, t.ID, t.Status.Label())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "entry date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "debit line as code:amount[:description], repeatable")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "credit line as code:amount[:description], repeatable")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	cmd.Flags().StringVar(&actor, "by", "", "who is recording the entry")
	cmd.Flags().StringVar(&entryType, "type", string(model.TypeJournal), "entry type: journal, sales, purchase, receipt or payment")

	return cmd
}

func newJournalSubmitCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit a draft entry for approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}
			txn, err := a.ledger.Submit(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", txn.Number, txn.Status.Label())
			return nil
		},
	}
}

func newJournalApproveCommand(configPath *string) *cobra.Command {
	var approver string

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve an entry for posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}
			txn, err := a.ledger.Approve(cmd.Context(), id, approver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s approved by %s\n", txn.Number, approver)
			return nil
		},
	}
	cmd.Flags().StringVar(&approver, "by", "", "approver name (required)")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newJournalPostCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "post <id>",
		Short: "Post an approved entry to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}
			txn, err := a.ledger.Post(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s posted\n", txn.Number)
			return nil
		},
	}
}

func newJournalCancelCommand(configPath *string) *cobra.Command {
	var reason, actor string

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a draft or pending entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}
			txn, err := a.ledger.Cancel(cmd.Context(), id, reason, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s cancelled: %s\n", txn.Number, reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the entry is cancelled (required)")
	_ = cmd.MarkFlagRequired("reason")
	cmd.Flags().StringVar(&actor, "by", "", "who is cancelling")
	return cmd
}

func newJournalReverseCommand(configPath *string) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "reverse <id>",
		Short: "Create a draft reversing entry for a posted line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}
			txn, err := a.ledger.CreateReversingEntry(cmd.Context(), id, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", txn.Number, txn.ID, txn.Status.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "by", "", "who is reversing")
	return cmd
}

func newJournalListCommand(configPath *string) *cobra.Command {
	var statuses []string
	var year, month int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			filter := store.TransactionFilter{
				CompanyID:   a.companyID,
				FiscalYear:  year,
				FiscalMonth: month,
			}
			for _, s := range statuses {
				filter.Statuses = append(filter.Statuses, model.TransactionStatus(strings.ToLower(s)))
			}

			txns, err := a.ledger.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tDATE\tSTATUS\tDEBIT\tCREDIT\tDESCRIPTION")
			for _, t := range txns {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.Number, t.Date.Format(time.DateOnly), t.Status.Label(),
					t.Debit.StringFixed(2), t.Credit.StringFixed(2), t.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by status, repeatable")
	cmd.Flags().IntVar(&year, "year", 0, "filter by fiscal year")
	cmd.Flags().IntVar(&month, "month", 0, "filter by fiscal month")
	return cmd
}

func newJournalImportCommand(configPath *string) *cobra.Command {
	var format, actor string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import draft journal entries from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			txns, err := a.importer.Import(cmd.Context(), f, format, a.companyID, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d draft lines from %s\n", len(txns), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "journal", "import format")
	cmd.Flags().StringVar(&actor, "by", "", "who is importing")
	return cmd
}
