package core

// Summary aggregates a set of transactions.
type Summary struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Balance       float64 `json:"balance"`
}

// Summarize totals income and expenses over txs.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.TotalIncome += t.Amount
		case Expense:
			s.TotalExpenses += t.Amount
		}
	}
	s.Balance = s.TotalIncome - s.TotalExpenses
	return s
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category Category
	Amount   float64
}

// ByCategory totals amounts per category for one transaction type, in
// first-seen order.
func ByCategory(txs []Transaction, t TransactionType) []CategoryAmount {
	idx := map[Category]int{}
	var out []CategoryAmount
	for _, tx := range txs {
		if tx.Type != t {
			continue
		}
		i, ok := idx[tx.Category]
		if !ok {
			i = len(out)
			idx[tx.Category] = i
			out = append(out, CategoryAmount{Category: tx.Category})
		}
		out[i].Amount += tx.Amount
	}
	return out
}
