package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCloseCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close fiscal periods",
	}
	cmd.AddCommand(newClosePeriodCommand(configPath))
	cmd.AddCommand(newCloseYearCommand(configPath))
	return cmd
}

func newClosePeriodCommand(configPath *string) *cobra.Command {
	var (
		year, month int
		by          string
	)

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Close one fiscal month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.closing.ClosePeriod(cmd.Context(), a.companyID, year, month, by); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed %d-%02d\n", year, month)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "fiscal year (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().IntVar(&month, "month", 0, "fiscal month (required)")
	_ = cmd.MarkFlagRequired("month")
	cmd.Flags().StringVar(&by, "by", "", "who is closing the period")
	return cmd
}

func newCloseYearCommand(configPath *string) *cobra.Command {
	var (
		year int
		by   string
	)

	cmd := &cobra.Command{
		Use:   "year",
		Short: "Close all twelve months and reset nominal accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.closing.CloseYear(cmd.Context(), a.companyID, year, by); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed fiscal year %d\n", year)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "fiscal year (required)")
	_ = cmd.MarkFlagRequired("year")
	cmd.Flags().StringVar(&by, "by", "", "who is closing the year")
	return cmd
}
