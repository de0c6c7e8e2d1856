// Package sheets defines the spreadsheet mirror that receives a copy of
// every committed expense.
package sheets

import (
	"context"

	"spendwise/internal/core"
)

// Mirror keeps one spreadsheet row per expense, keyed by expense id.
type Mirror interface {
	// UpsertExpense writes e over its existing row or appends a new one.
	UpsertExpense(ctx context.Context, e core.Expense) error
	// DeleteExpense removes the row for id. A missing row is not an error.
	DeleteExpense(ctx context.Context, id string) error
}
