package google

import (
	"fmt"
	"strings"
	"time"

	"spendwise/internal/categories"
	"spendwise/internal/core"
)

// header is written to row 1 of an empty mirror sheet.
var header = []any{"ID", "User", "Date", "Category", "Label", "Amount", "Note", "Updated"}

const lastColumn = "H"

func expenseRow(e core.Expense) []any {
	return []any{
		e.ID,
		e.UserID,
		e.ExpenseDate.String(),
		e.Category,
		categories.Lookup(e.Category).Label,
		e.Amount,
		e.NoteText(),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// quoteSheet quotes a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func idColumn(sheet string) string {
	return quoteSheet(sheet) + "!A:A"
}

func tableRange(sheet string) string {
	return fmt.Sprintf("%s!A:%s", quoteSheet(sheet), lastColumn)
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), row, lastColumn, row)
}

// findRow returns the 1-based row holding id in the id column, or 0.
func findRow(column [][]any, id string) int {
	for i, row := range column {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}
