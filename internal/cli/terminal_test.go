package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/i18n"
	"fintrack/internal/preferences"
)

func newTerminal(input string) (*Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	prefs := preferences.Default()
	return NewTerminal(strings.NewReader(input), &out, NewTheme(prefs), i18n.For(preferences.English), nil), &out
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		opts   app.ConfirmOptions
		accept bool
	}{
		{"yes", "y\n", app.ConfirmOptions{}, true},
		{"spanish yes", "sí\n", app.ConfirmOptions{}, true},
		{"custom confirm text", "delete\n", app.ConfirmOptions{ConfirmText: "Delete"}, true},
		{"empty answer cancels", "\n", app.ConfirmOptions{}, false},
		{"no", "n\n", app.ConfirmOptions{}, false},
		{"eof cancels", "", app.ConfirmOptions{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, out := newTerminal(tt.input)
			accepted, cancelled := false, false
			tt.opts.OnCancel = func() { cancelled = true }
			tt.opts.Title = "Delete Transaction"

			term.Confirm("Are you sure?", func() { accepted = true }, tt.opts)

			assert.Equal(t, tt.accept, accepted)
			assert.Equal(t, !tt.accept, cancelled)
			assert.Contains(t, out.String(), "Delete Transaction")
			assert.Contains(t, out.String(), "Are you sure?")
		})
	}
}

func TestConfirmAssumeYes(t *testing.T) {
	term, out := newTerminal("")
	term.AssumeYes(true)
	accepted := false
	term.Confirm("Sure?", func() { accepted = true }, app.ConfirmOptions{})
	assert.True(t, accepted)
	assert.Empty(t, out.String(), "no prompt is shown")
}

func TestNotifyAndNavigate(t *testing.T) {
	term, out := newTerminal("")
	term.Notify(app.LevelSuccess, "Saved")
	term.Notify(app.LevelError, "Broken")
	assert.Contains(t, out.String(), SuccessIcon+" Saved")
	assert.Contains(t, out.String(), ErrorIcon+" Broken")

	term.Navigate(app.PathDashboard)
	assert.Equal(t, app.PathDashboard, term.Location())
}

func TestReadLine(t *testing.T) {
	term, out := newTerminal("  demo@fintrack.local \n")
	got, err := term.ReadLine("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "demo@fintrack.local", got)
	assert.Equal(t, "Email: ", out.String())

	_, err = term.ReadLine("Again: ")
	assert.Error(t, err)
}

func TestPrintTransactions(t *testing.T) {
	var out bytes.Buffer
	theme := NewTheme(preferences.Default())
	tr := i18n.For(preferences.English)

	require.NoError(t, PrintTransactions(&out, theme, tr, nil))
	assert.Contains(t, out.String(), "No transactions")

	out.Reset()
	require.NoError(t, PrintTransactions(&out, theme, tr, []core.Transaction{
		{ID: "1", Title: "Salary", Amount: 3500000, Type: core.Income, Category: core.Salary, Date: "2024-03-01"},
		{ID: "2", Title: "Lunch", Amount: 25000, Type: core.Expense, Category: core.Food, Date: "2024-03-02T12:00:00Z"},
	}))
	s := out.String()
	assert.Contains(t, s, "+$ 3.500.000")
	assert.Contains(t, s, "-$ 25.000")
	assert.Contains(t, s, "2024-03-02")
	assert.NotContains(t, s, "T12:00")
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	err := PrintSummary(&out, NewTheme(preferences.Default()), i18n.For(preferences.Spanish),
		core.Summary{TotalIncome: 1000000, TotalExpenses: 250000, Balance: 750000})
	require.NoError(t, err)
	s := out.String()
	assert.Contains(t, s, "Ingresos totales")
	assert.Contains(t, s, "$ 1.000.000")
	assert.Contains(t, s, "$ 750.000")
}

func TestPrintCategoryTotals(t *testing.T) {
	var out bytes.Buffer
	err := PrintCategoryTotals(&out, NewTheme(preferences.Default()), "Expenses", []core.CategoryAmount{
		{Category: core.Food, Amount: 10000},
		{Category: core.Transport, Amount: 50000},
	}, false)
	require.NoError(t, err)
	s := out.String()
	assert.Contains(t, s, "Expenses")
	assert.Less(t, strings.Index(s, "transport"), strings.Index(s, "food"), "largest first")
	assert.Contains(t, s, "$ 50.000")
}
