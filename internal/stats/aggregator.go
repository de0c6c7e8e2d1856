// Package stats derives dashboard statistics from a user's expenses.
//
// All functions are pure. Amounts are summed as float64 without rounding;
// rounding to cents happens only when values are formatted for display.
package stats

import (
	"time"

	"spendwise/internal/categories"
	"spendwise/internal/core"
)

// Summary holds the headline figures of the dashboard.
type Summary struct {
	TotalThisMonth        float64 `json:"total_this_month"`
	TotalAll              float64 `json:"total_all"`
	TransactionsThisMonth int     `json:"transactions_this_month"`
	TotalTransactions     int     `json:"total_transactions"`
	AvgPerTransaction     float64 `json:"avg_per_transaction"`
	MonthLabel            string  `json:"month_label"`
	NoData                bool    `json:"no_data"`
}

// Slice is one chart entry of a category breakdown.
type Slice struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Color    string  `json:"color"`
	Percent  float64 `json:"percent"`
}

// DateGroup is a list bucket of expenses sharing one expense date.
type DateGroup struct {
	Date     core.Date
	Expenses []core.Expense
}

// MonthBounds returns the first and last calendar day of now's month,
// evaluated in now's location.
func MonthBounds(now time.Time) (start, end core.Date) {
	y, m, _ := now.Date()
	start = core.NewDate(y, m, 1)
	end = core.NewDate(y, m+1, 0)
	return start, end
}

// InMonth returns the expenses dated within now's calendar month, both
// boundary days included. Input order is preserved.
func InMonth(expenses []core.Expense, now time.Time) []core.Expense {
	start, end := MonthBounds(now)
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.ExpenseDate.Before(start) || e.ExpenseDate.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Compute aggregates expenses relative to the month containing now.
func Compute(expenses []core.Expense, now time.Time) Summary {
	month := InMonth(expenses, now)

	s := Summary{
		TotalThisMonth:        Total(month),
		TotalAll:              Total(expenses),
		TransactionsThisMonth: len(month),
		TotalTransactions:     len(expenses),
		MonthLabel:            now.Format("January 2006"),
		NoData:                len(expenses) == 0,
	}
	if s.TransactionsThisMonth > 0 {
		s.AvgPerTransaction = s.TotalThisMonth / float64(s.TransactionsThisMonth)
	}
	return s
}

// Total sums the amounts of expenses.
func Total(expenses []core.Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += e.Amount
	}
	return sum
}

// CategoryTotals maps each category key present in expenses to its sum.
func CategoryTotals(expenses []core.Expense) map[string]float64 {
	totals := make(map[string]float64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount
	}
	return totals
}

// Breakdown projects per-category sums into chart entries ordered by the
// first appearance of each category in expenses. Categories without
// expenses do not appear. Unknown keys are displayed as "other" but keep
// their own entry.
func Breakdown(expenses []core.Expense) []Slice {
	totals := CategoryTotals(expenses)
	total := Total(expenses)

	seen := make(map[string]bool, len(totals))
	out := make([]Slice, 0, len(totals))
	for _, e := range expenses {
		if seen[e.Category] {
			continue
		}
		seen[e.Category] = true

		cat := categories.Lookup(e.Category)
		s := Slice{
			Category: e.Category,
			Label:    cat.Label,
			Value:    totals[e.Category],
			Color:    cat.ChartColor,
		}
		if total > 0 {
			s.Percent = s.Value / total * 100
		}
		out = append(out, s)
	}
	return out
}

// GroupByDate partitions expenses into buckets keyed by expense date.
// Buckets appear in order of first appearance and keep input order inside.
func GroupByDate(expenses []core.Expense) []DateGroup {
	index := make(map[string]int)
	var groups []DateGroup
	for _, e := range expenses {
		key := e.ExpenseDate.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{Date: e.ExpenseDate})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
	}
	return groups
}
