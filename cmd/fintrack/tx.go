package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/app"
	"fintrack/internal/cli"
	"fintrack/internal/core"
)

func listCmd(s *session) *cobra.Command {
	var (
		txType, category, from, to string
		sortField, sortOrder       string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions",
		Long: `List your transactions, newest first by default.

Filters combine: --type and --category match exactly, --from and --to bound
the date inclusively (YYYY-MM-DD).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := s.rt.RequireSession(); err != nil {
				return err
			}
			opts := app.ListOptions{
				Filters: core.TransactionFilters{
					Type:      core.TransactionType(txType),
					Category:  core.Category(category),
					StartDate: from,
					EndDate:   to,
				},
				SortField: core.SortField(sortField),
				SortOrder: core.SortOrder(sortOrder),
			}
			if txType != "" && !opts.Filters.Type.Valid() {
				return fmt.Errorf("%w: %q", core.ErrInvalidType, txType)
			}
			if category != "" && !opts.Filters.Category.Valid() {
				return fmt.Errorf("%w: %q", core.ErrInvalidCategory, category)
			}
			if !opts.SortField.Valid() || !opts.SortOrder.Valid() {
				return fmt.Errorf("%w: %s %s", core.ErrInvalidSort, sortField, sortOrder)
			}

			txs, err := s.rt.Transactions.List(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			term := s.rt.Terminal
			return cli.PrintTransactions(term.Out(), term.Theme(), term.T, txs)
		},
	}

	cmd.Flags().StringVar(&txType, "type", "", "Only income or expense")
	cmd.Flags().StringVar(&category, "category", "", "Only this category")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sortField, "sort", string(core.SortByDate), "Sort by date, amount or title")
	cmd.Flags().StringVar(&sortOrder, "order", string(core.Desc), "Sort order (asc, desc)")
	return cmd
}

func addCmd(s *session) *cobra.Command {
	var title, amount, txType, category, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a transaction. It is saved locally at once and sent to the API in
the background. The local id is printed on its own line.`,
		Example: `  fintrack add --title Lunch --amount 25000 --type expense --category food`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := s.rt.RequireSession(); err != nil {
				return err
			}
			value, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("%w: %q", err, amount)
			}
			in := core.CreateTransactionInput{
				Title:    title,
				Amount:   value,
				Type:     core.TransactionType(txType),
				Category: core.Category(category),
				Date:     date,
			}
			if err := in.Validate(); err != nil {
				return err
			}

			tx, err := s.rt.Transactions.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(s.rt.Terminal.Out(), tx.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Short description")
	cmd.Flags().StringVar(&amount, "amount", "", "Positive amount")
	cmd.Flags().StringVar(&txType, "type", string(core.Expense), "income or expense")
	cmd.Flags().StringVar(&category, "category", string(core.Other), "Category")
	cmd.Flags().StringVar(&date, "date", time.Now().Format(core.DateLayout), "Date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func editCmd(s *session) *cobra.Command {
	var title, amount, txType, category, date string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a transaction",
		Long:  `Change a transaction. Only the flags you pass are modified.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := s.rt.RequireSession(); err != nil {
				return err
			}
			var in core.UpdateTransactionInput
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &title
			}
			if flags.Changed("amount") {
				value, err := core.ParseAmount(amount)
				if err != nil {
					return fmt.Errorf("%w: %q", err, amount)
				}
				in.Amount = &value
			}
			if flags.Changed("type") {
				t := core.TransactionType(txType)
				in.Type = &t
			}
			if flags.Changed("category") {
				c := core.Category(category)
				in.Category = &c
			}
			if flags.Changed("date") {
				in.Date = &date
			}
			if in.IsEmpty() {
				return errors.New("nothing to change: pass at least one of --title, --amount, --type, --category or --date")
			}
			if err := in.Validate(); err != nil {
				return err
			}

			_, err := s.rt.Transactions.Update(cmd.Context(), args[0], in)
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New description")
	cmd.Flags().StringVar(&amount, "amount", "", "New amount")
	cmd.Flags().StringVar(&txType, "type", "", "New type")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD)")
	return cmd
}

func rmCmd(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a transaction",
		Long:    `Delete a transaction after confirmation. Use --yes to skip the prompt.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := s.rt.RequireSession(); err != nil {
				return err
			}
			s.rt.Terminal.AssumeYes(yes)
			_, err := s.rt.Transactions.ConfirmDelete(cmd.Context(), args[0])
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func showCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Fetch one transaction from the API",
		Long: `Fetch a transaction straight from the API by its server id, bypassing the
local copy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := s.rt.RequireSession(); err != nil {
				return err
			}
			tx, err := s.rt.Service.GetByID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch transaction %s: %w", args[0], err)
			}
			term := s.rt.Terminal
			return cli.PrintTransactions(term.Out(), term.Theme(), term.T, []core.Transaction{tx})
		},
	}
}
