package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/closebooks-dev/closebooks/internal/budget"
	"github.com/closebooks-dev/closebooks/internal/model"
)

func newBudgetCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Plan and track budgets against actuals",
	}
	cmd.AddCommand(newBudgetSetCommand(configPath))
	cmd.AddCommand(newBudgetTransitionCommand(configPath))
	cmd.AddCommand(newBudgetReviseCommand(configPath))
	cmd.AddCommand(newBudgetStatusCommand(configPath))
	return cmd
}

func newBudgetSetCommand(configPath *string) *cobra.Command {
	var (
		accountCode, budgetType, period, amountStr string
		year, number                               int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create a draft budget for an account and period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amountStr, err)
			}
			account, err := a.accounts.GetByCode(cmd.Context(), a.companyID, accountCode)
			if err != nil {
				return err
			}

			b, err := a.budgets.Create(cmd.Context(), budget.CreateParams{
				CompanyID:    a.companyID,
				AccountID:    account.ID,
				Type:         model.BudgetType(budgetType),
				FiscalYear:   year,
				Period:       model.BudgetPeriod(period),
				PeriodNumber: number,
				Amount:       amount,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %d/%s-%d  %s\n",
				b.ID, account.Code, b.FiscalYear, b.Period, b.PeriodNumber, b.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountCode, "account", "", "account code (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&budgetType, "type", string(model.BudgetTypeExpense), "revenue, expense or capital")
	cmd.Flags().IntVar(&year, "year", 0, "fiscal year (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVar(&period, "period", string(model.PeriodMonthly), "monthly, quarterly or annual")
	cmd.Flags().IntVar(&number, "number", 1, "period number within the year")
	cmd.Flags().StringVar(&amountStr, "amount", "", "budgeted amount (required)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newBudgetTransitionCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transition <id> <status>",
		Short: "Move a budget through its lifecycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid budget id %q: %w", args[0], err)
			}
			b, err := a.budgets.Transition(cmd.Context(), id, model.BudgetStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", b.ID, b.Status.Label())
			return nil
		},
	}
	return cmd
}

func newBudgetReviseCommand(configPath *string) *cobra.Command {
	var amountStr, reason, actor string

	cmd := &cobra.Command{
		Use:   "revise <id>",
		Short: "Change a budget amount, keeping a revision record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid budget id %q: %w", args[0], err)
			}
			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amountStr, err)
			}
			b, err := a.budgets.Revise(cmd.Context(), id, amount, reason, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s revised to %s\n", b.ID, b.Amount.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&amountStr, "amount", "", "new budget amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&reason, "reason", "", "why the budget changed (required)")
	_ = cmd.MarkFlagRequired("reason")
	cmd.Flags().StringVar(&actor, "by", "", "who is revising")
	return cmd
}

func newBudgetStatusCommand(configPath *string) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show budget vs actual for one budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid budget id %q: %w", args[0], err)
			}

			var b model.Budget
			if refresh {
				b, err = a.budgets.RefreshActual(cmd.Context(), id)
			} else {
				b, err = a.budgets.Get(cmd.Context(), id)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Status\t%s\n", b.Status.Label())
			fmt.Fprintf(tw, "Budget\t%s\n", b.Amount.StringFixed(2))
			fmt.Fprintf(tw, "Actual\t%s\n", b.CurrentActual.StringFixed(2))
			fmt.Fprintf(tw, "Achievement\t%s%%\n", b.AchievementRate.StringFixed(2))
			fmt.Fprintf(tw, "Variance\t%s (%s%%)\n", b.VarianceAmount.StringFixed(2), b.VarianceRate.StringFixed(2))
			fmt.Fprintf(tw, "Remaining\t%s\n", budget.RemainingBudget(b).StringFixed(2))
			if budget.IsOverBudget(b) {
				fmt.Fprintln(tw, "Over budget\tyes")
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute actuals from posted transactions first")
	return cmd
}
