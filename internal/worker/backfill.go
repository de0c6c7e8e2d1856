package worker

import (
	"context"
	"fmt"

	"spendwise/internal/core"
	"spendwise/internal/sheets"
)

// Backfill upserts every expense into mirror, for rows written before the
// worker was running. step, when set, is called after each row. It stops at
// the first failure and reports how many rows were written.
func Backfill(ctx context.Context, mirror sheets.Mirror, expenses []core.Expense, step func()) (int, error) {
	for i, e := range expenses {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := mirror.UpsertExpense(ctx, e); err != nil {
			return i, fmt.Errorf("upsert %s: %w", e.ID, err)
		}
		if step != nil {
			step()
		}
	}
	return len(expenses), nil
}
