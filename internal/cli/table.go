package cli

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"fintrack/internal/core"
	"fintrack/internal/format"
	"fintrack/internal/i18n"
)

// PrintTransactions writes txs as an aligned table.
func PrintTransactions(w io.Writer, theme Theme, tr i18n.Translator, txs []core.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, theme.Subtle.Render(tr(i18n.Empty)))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	h := theme.Header.Render
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", h("ID"), h("Date"), h("Title"), h("Category"), h("Amount")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 13),
		strings.Repeat("─", 10),
		strings.Repeat("─", 20),
		strings.Repeat("─", 13),
		strings.Repeat("─", 14)); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	for _, t := range txs {
		income := t.Type == core.Income
		style := theme.Expense
		if income {
			style = theme.Income
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			displayDate(t.Date),
			t.Title,
			t.Category,
			style.Render(format.Amount(t.Amount, income))); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return tw.Flush()
}

// PrintSummary writes the totals block.
func PrintSummary(w io.Writer, theme Theme, tr i18n.Translator, s core.Summary) error {
	balance := theme.Income
	if s.Balance < 0 {
		balance = theme.Expense
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", tr(i18n.TotalIncome), theme.Income.Render(format.Currency(s.TotalIncome, 0)))
	fmt.Fprintf(tw, "%s\t%s\n", tr(i18n.TotalExpenses), theme.Expense.Render(format.Currency(s.TotalExpenses, 0)))
	fmt.Fprintf(tw, "%s\t%s\n", theme.Title.Render(tr(i18n.Balance)), balance.Render(format.Currency(s.Balance, 0)))
	return tw.Flush()
}

// displayDate shows the calendar part of a date or timestamp.
func displayDate(s string) string {
	d, err := core.ParseDate(s)
	if err != nil {
		return s
	}
	return d.Format(core.DateLayout)
}

// PrintCategoryTotals writes one line per category, largest first.
func PrintCategoryTotals(w io.Writer, theme Theme, title string, totals []core.CategoryAmount, income bool) error {
	style := theme.Expense
	if income {
		style = theme.Income
	}
	sorted := slices.Clone(totals)
	slices.SortStableFunc(sorted, func(a, b core.CategoryAmount) int {
		return cmp.Compare(b.Amount, a.Amount)
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, theme.Title.Render(title))
	for _, c := range sorted {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Category, style.Render(format.Currency(c.Amount, 0)))
	}
	return tw.Flush()
}
