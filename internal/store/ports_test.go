package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spendwise/internal/core"
)

func TestSortExpenses(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		{ID: "a", ExpenseDate: core.NewDate(2024, 1, 5), CreatedAt: base},
		{ID: "b", ExpenseDate: core.NewDate(2024, 1, 20), CreatedAt: base},
		{ID: "c", ExpenseDate: core.NewDate(2024, 1, 5), CreatedAt: base.Add(time.Minute)},
		{ID: "d", ExpenseDate: core.NewDate(2023, 12, 31), CreatedAt: base.Add(time.Hour)},
	}
	SortExpenses(expenses)

	var ids []string
	for _, e := range expenses {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids)
}
