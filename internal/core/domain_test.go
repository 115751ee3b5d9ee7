package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateTransactionInputValidate(t *testing.T) {
	good := CreateTransactionInput{
		Title:    "Groceries",
		Amount:   150,
		Type:     Expense,
		Category: Food,
		Date:     "2024-01-12",
	}
	require.NoError(t, good.Validate())

	cases := []struct {
		name string
		mod  func(*CreateTransactionInput)
		err  error
	}{
		{"empty title", func(in *CreateTransactionInput) { in.Title = "  " }, ErrEmptyTitle},
		{"long title", func(in *CreateTransactionInput) { in.Title = strings.Repeat("a", 101) }, ErrTitleTooLong},
		{"zero amount", func(in *CreateTransactionInput) { in.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(in *CreateTransactionInput) { in.Amount = -3 }, ErrInvalidAmount},
		{"bad type", func(in *CreateTransactionInput) { in.Type = "transfer" }, ErrInvalidType},
		{"bad category", func(in *CreateTransactionInput) { in.Category = "rent" }, ErrInvalidCategory},
		{"bad date", func(in *CreateTransactionInput) { in.Date = "12/01/2024" }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := good
			tc.mod(&in)
			assert.ErrorIs(t, in.Validate(), tc.err)
		})
	}
}

func TestTitleAtLimitIsValid(t *testing.T) {
	in := CreateTransactionInput{Title: strings.Repeat("é", 100), Amount: 1, Type: Income, Category: Salary, Date: "2024-01-01"}
	assert.NoError(t, in.Validate())
}

func TestUpdateTransactionInputApply(t *testing.T) {
	base := Transaction{ID: "1", Title: "Salary", Amount: 1000, Type: Income, Category: Freelance, Date: "2024-01-10", UserID: "u1"}

	got := UpdateTransactionInput{Title: ptr("Salary Jan"), Amount: ptr(1200.0)}.Apply(base)

	assert.Equal(t, "Salary Jan", got.Title)
	assert.Equal(t, 1200.0, got.Amount)
	assert.Equal(t, base.Type, got.Type)
	assert.Equal(t, base.Category, got.Category)
	assert.Equal(t, base.Date, got.Date)
	assert.Equal(t, base.UserID, got.UserID)
}

func TestUpdateTransactionInputValidate(t *testing.T) {
	assert.NoError(t, UpdateTransactionInput{}.Validate())
	assert.True(t, UpdateTransactionInput{}.IsEmpty())
	assert.ErrorIs(t, UpdateTransactionInput{Amount: ptr(0.0)}.Validate(), ErrInvalidAmount)
	assert.ErrorIs(t, UpdateTransactionInput{Date: ptr("nope")}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, UpdateTransactionInput{Type: ptr(TransactionType("x"))}.Validate(), ErrInvalidType)
}

func TestCategoriesFor(t *testing.T) {
	assert.Contains(t, CategoriesFor(Income), Freelance)
	assert.NotContains(t, CategoriesFor(Income), Food)
	assert.Contains(t, CategoriesFor(Expense), Food)
	assert.NotContains(t, CategoriesFor(Expense), Salary)
	assert.Nil(t, CategoriesFor("bogus"))
	assert.Len(t, AllCategories(), 10)
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Type: Income, Amount: 1000, Category: Freelance},
		{Type: Expense, Amount: 150, Category: Food},
		{Type: Expense, Amount: 50, Category: Food},
		{Type: Expense, Amount: 20, Category: Transport},
	}
	s := Summarize(txs)
	assert.Equal(t, 1000.0, s.TotalIncome)
	assert.Equal(t, 220.0, s.TotalExpenses)
	assert.Equal(t, 780.0, s.Balance)

	byCat := ByCategory(txs, Expense)
	require.Len(t, byCat, 2)
	assert.Equal(t, CategoryAmount{Category: Food, Amount: 200}, byCat[0])
	assert.Equal(t, CategoryAmount{Category: Transport, Amount: 20}, byCat[1])

	assert.Equal(t, Summary{}, Summarize(nil))
}
