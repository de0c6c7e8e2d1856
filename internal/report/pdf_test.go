package report

import (
	"bytes"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/presenter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMonthlyPDF(t *testing.T) {
	now := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	note := "A very long note that certainly does not fit inside the note column of the expense table"
	expenses := []core.Expense{
		{ID: "1", Amount: 80, Category: "food", ExpenseDate: core.NewDate(2024, time.January, 10), Note: &note},
		{ID: "2", Amount: 20, Category: "transport", ExpenseDate: core.NewDate(2024, time.January, 12)},
	}

	var buf bytes.Buffer
	err := WriteMonthlyPDF(&buf, Monthly{
		Username:    "alice",
		Dashboard:   presenter.NewDashboard(expenses, now),
		Expenses:    expenses,
		GeneratedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteMonthlyPDFEmptyMonth(t *testing.T) {
	now := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyPDF(&buf, Monthly{
		Username:    "bob",
		Dashboard:   presenter.NewDashboard(nil, now),
		GeneratedAt: now,
	}))
	assert.NotZero(t, buf.Len())
}

func TestRGB(t *testing.T) {
	r, g, b := rgb("hsl(0, 100%, 50%)")
	assert.Equal(t, []int{255, 0, 0}, []int{r, g, b})

	r, g, b = rgb("oops")
	assert.Equal(t, []int{107, 114, 128}, []int{r, g, b})
}
