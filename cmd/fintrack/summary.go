package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/app"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/i18n"
)

func summaryCmd(s *session) *cobra.Command {
	var byCategory bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show total income, expenses and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := s.rt.RequireSession(); err != nil {
				return err
			}
			term := s.rt.Terminal
			if !byCategory {
				summary, err := s.rt.Transactions.Summary(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to compute summary: %w", err)
				}
				return cli.PrintSummary(term.Out(), term.Theme(), term.T, summary)
			}

			txs, err := s.rt.Transactions.List(cmd.Context(), app.ListOptions{})
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			if err := cli.PrintSummary(term.Out(), term.Theme(), term.T, core.Summarize(txs)); err != nil {
				return err
			}
			fmt.Fprintln(term.Out())
			if err := cli.PrintCategoryTotals(term.Out(), term.Theme(), term.T(i18n.TotalIncome),
				core.ByCategory(txs, core.Income), true); err != nil {
				return err
			}
			return cli.PrintCategoryTotals(term.Out(), term.Theme(), term.T(i18n.TotalExpenses),
				core.ByCategory(txs, core.Expense), false)
		},
	}

	cmd.Flags().BoolVar(&byCategory, "by-category", false, "Break totals down by category")
	return cmd
}
