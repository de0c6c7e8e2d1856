package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/categories"
	"spendwise/internal/core"
)

func exp(amount float64, category, date string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{Amount: amount, Category: category, ExpenseDate: d}
}

func TestComputeScenario(t *testing.T) {
	expenses := []core.Expense{
		exp(50, "food", "2024-01-05"),
		exp(30, "food", "2024-01-20"),
		exp(20, "transport", "2024-02-01"),
	}
	now := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

	s := Compute(expenses, now)
	assert.Equal(t, 80.0, s.TotalThisMonth)
	assert.Equal(t, 2, s.TransactionsThisMonth)
	assert.Equal(t, 100.0, s.TotalAll)
	assert.Equal(t, 3, s.TotalTransactions)
	assert.Equal(t, 40.0, s.AvgPerTransaction)
	assert.Equal(t, "January 2024", s.MonthLabel)
	assert.False(t, s.NoData)

	breakdown := Breakdown(InMonth(expenses, now))
	require.Len(t, breakdown, 1)
	assert.Equal(t, "food", breakdown[0].Category)
	assert.Equal(t, "Food & Dining", breakdown[0].Label)
	assert.Equal(t, 80.0, breakdown[0].Value)
	assert.Equal(t, 100.0, breakdown[0].Percent)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, time.Now())
	assert.Zero(t, s.TotalThisMonth)
	assert.Zero(t, s.TotalAll)
	assert.Zero(t, s.TransactionsThisMonth)
	assert.Zero(t, s.AvgPerTransaction)
	assert.True(t, s.NoData)
	assert.Empty(t, Breakdown(nil))
	assert.Empty(t, GroupByDate(nil))
}

func TestComputeNoExpensesThisMonth(t *testing.T) {
	s := Compute([]core.Expense{exp(20, "food", "2023-12-31")}, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, s.AvgPerTransaction)
	assert.Zero(t, s.TransactionsThisMonth)
	assert.Equal(t, 20.0, s.TotalAll)
	assert.False(t, s.NoData)
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		now        time.Time
		start, end string
	}{
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2024-01-01", "2024-01-31"},
		{time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), "2023-02-01", "2023-02-28"},
		{time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), "2024-12-01", "2024-12-31"},
	}
	for _, tt := range tests {
		start, end := MonthBounds(tt.now)
		assert.Equal(t, tt.start, start.String())
		assert.Equal(t, tt.end, end.String())
	}
}

func TestInMonthInclusiveBoundaries(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "food", "2023-12-31"),
		exp(2, "food", "2024-01-01"),
		exp(3, "food", "2024-01-31"),
		exp(4, "food", "2024-02-01"),
	}
	got := InMonth(expenses, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Amount)
	assert.Equal(t, 3.0, got[1].Amount)
}

func TestInMonthUsesLocationOfNow(t *testing.T) {
	// 2024-02-01 02:00 in UTC+3 is still January 31 in UTC.
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2024, 2, 1, 2, 0, 0, 0, loc)

	got := InMonth([]core.Expense{exp(5, "food", "2024-02-01"), exp(6, "food", "2024-01-31")}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-02-01", got[0].ExpenseDate.String())
}

func TestBreakdown(t *testing.T) {
	expenses := []core.Expense{
		exp(10, "transport", "2024-01-03"),
		exp(5.5, "food", "2024-01-03"),
		exp(4.5, "transport", "2024-01-02"),
		exp(20, "pets", "2024-01-01"),
	}
	got := Breakdown(expenses)
	require.Len(t, got, 3)

	assert.Equal(t, "transport", got[0].Category)
	assert.Equal(t, 14.5, got[0].Value)
	assert.Equal(t, "food", got[1].Category)
	assert.Equal(t, "pets", got[2].Category)
	assert.Equal(t, "Other", got[2].Label)
	assert.Equal(t, categories.Lookup("other").ChartColor, got[2].Color)

	var sum float64
	for _, s := range got {
		sum += s.Value
		assert.NotZero(t, s.Value, "zero categories are omitted")
	}
	assert.InDelta(t, Total(expenses), sum, 1e-9)
}

func TestCategoryTotals(t *testing.T) {
	totals := CategoryTotals([]core.Expense{
		exp(0.1, "food", "2024-01-01"),
		exp(0.2, "food", "2024-01-02"),
	})
	assert.Len(t, totals, 1)
	assert.InDelta(t, 0.3, totals["food"], 1e-9)
}

func TestGroupByDatePreservesOrder(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "food", "2024-01-20"),
		exp(2, "bills", "2024-01-20"),
		exp(3, "food", "2024-01-05"),
		exp(4, "food", "2024-01-20"),
	}
	groups := GroupByDate(expenses)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-01-20", groups[0].Date.String())
	require.Len(t, groups[0].Expenses, 3)
	assert.Equal(t, []float64{1, 2, 4}, []float64{groups[0].Expenses[0].Amount, groups[0].Expenses[1].Amount, groups[0].Expenses[2].Amount})
	assert.Equal(t, "2024-01-05", groups[1].Date.String())
}
