package services

import (
	"slices"
	"strings"

	"fintrack/internal/core"
)

// FilterTransactions keeps the transactions that match every non-empty field
// of filters. Dates compare as strings, so both sides are expected in
// core.DateLayout.
func FilterTransactions(txs []core.Transaction, filters core.TransactionFilters) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if filters.Type != "" && t.Type != filters.Type {
			continue
		}
		if filters.Category != "" && t.Category != filters.Category {
			continue
		}
		if filters.StartDate != "" && t.Date < filters.StartDate {
			continue
		}
		if filters.EndDate != "" && t.Date > filters.EndDate {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortTransactions returns a sorted copy of txs. Equal elements keep their
// input order. Dates that fail to parse sort before all valid dates.
func SortTransactions(txs []core.Transaction, field core.SortField, order core.SortOrder) []core.Transaction {
	out := slices.Clone(txs)
	if out == nil {
		out = []core.Transaction{}
	}

	var cmp func(a, b core.Transaction) int
	switch field {
	case core.SortByAmount:
		cmp = func(a, b core.Transaction) int {
			switch {
			case a.Amount < b.Amount:
				return -1
			case a.Amount > b.Amount:
				return 1
			}
			return 0
		}
	case core.SortByTitle:
		cmp = func(a, b core.Transaction) int {
			return strings.Compare(a.Title, b.Title)
		}
	default:
		cmp = func(a, b core.Transaction) int {
			return compareDates(a.Date, b.Date)
		}
	}

	if order == core.Desc {
		asc := cmp
		cmp = func(a, b core.Transaction) int { return -asc(a, b) }
	}

	slices.SortStableFunc(out, cmp)
	return out
}

func compareDates(a, b string) int {
	ta, errA := core.ParseDate(a)
	tb, errB := core.ParseDate(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return ta.Compare(tb)
}
