package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/closebooks-dev/closebooks/internal/accounts"
	"github.com/closebooks-dev/closebooks/internal/model"
)

func newAccountCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	cmd.AddCommand(newAccountAddCommand(configPath))
	cmd.AddCommand(newAccountListCommand(configPath))
	cmd.AddCommand(newAccountRemoveCommand(configPath))
	return cmd
}

func newAccountAddCommand(configPath *string) *cobra.Command {
	var (
		name, accountType, category, parentCode string
		opening                                 string
		noTrack                                 bool
		sortOrder                               int
		description                             string
	)

	cmd := &cobra.Command{
		Use:   "add <code>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			openingBalance := decimal.Zero
			if opening != "" {
				if openingBalance, err = decimal.NewFromString(opening); err != nil {
					return fmt.Errorf("parsing opening balance %q: %w", opening, err)
				}
			}

			parentID := uuid.Nil
			if parentCode != "" {
				parent, err := a.accounts.GetByCode(cmd.Context(), a.companyID, parentCode)
				if err != nil {
					return err
				}
				parentID = parent.ID
			}

			account, err := a.accounts.Register(cmd.Context(), accounts.RegisterParams{
				CompanyID:      a.companyID,
				Code:           args[0],
				Name:           name,
				Type:           model.AccountType(strings.ToLower(accountType)),
				Category:       model.AccountCategory(strings.ToLower(category)),
				ParentID:       parentID,
				TrackBalance:   !noTrack,
				SortOrder:      sortOrder,
				Description:    description,
				OpeningBalance: openingBalance,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s %s (%s, level %d)\n",
				account.Code, account.Name, account.Type.Label(), account.Level)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&accountType, "type", "", "asset, liability, equity, revenue or expense (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&category, "category", "", "reporting category, e.g. current_asset")
	cmd.Flags().StringVar(&parentCode, "parent", "", "parent account code")
	cmd.Flags().StringVar(&opening, "opening", "", "opening balance")
	cmd.Flags().BoolVar(&noTrack, "no-track", false, "exclude from balance reports")
	cmd.Flags().IntVar(&sortOrder, "sort", 0, "sort order within the chart")
	cmd.Flags().StringVar(&description, "description", "", "account description")

	return cmd
}

func newAccountListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			list, err := a.accounts.List(cmd.Context(), a.companyID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tTYPE\tBALANCE")
			for _, account := range list {
				indent := strings.Repeat("  ", account.Level-1)
				fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\n",
					account.Code, indent, account.Name, account.Type.Label(),
					account.CurrentBalance.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func newAccountRemoveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <code>",
		Short: "Deactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			account, err := a.accounts.GetByCode(cmd.Context(), a.companyID, args[0])
			if err != nil {
				return err
			}
			if err := a.accounts.Deactivate(cmd.Context(), account.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s %s\n", account.Code, account.Name)
			return nil
		},
	}
}
