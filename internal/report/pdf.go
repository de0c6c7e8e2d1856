// Package report renders a month of expenses as a printable PDF.
package report

import (
	"fmt"
	"io"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/phpdave11/gofpdf"

	"spendwise/internal/categories"
	"spendwise/internal/core"
	"spendwise/internal/presenter"
)

const (
	pageMargin = 14.0
	barMaxW    = 90.0
	rowH       = 7.0
)

// Monthly is the input of WriteMonthlyPDF.
type Monthly struct {
	Username    string
	Dashboard   presenter.Dashboard
	Expenses    []core.Expense // the month's expenses, newest first
	GeneratedAt time.Time
}

// WriteMonthlyPDF writes an A4 report with the stat cards, the category
// breakdown as bars and a table of the month's expenses.
func WriteMonthlyPDF(w io.Writer, m Monthly) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetTitle("Expenses "+m.Dashboard.MonthLabel, false)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Expense Report - "+m.Dashboard.MonthLabel)
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, fmt.Sprintf("User: %s    Generated: %s", m.Username, m.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	writeCards(pdf, m.Dashboard.Cards)
	writeBreakdown(pdf, m.Dashboard.Chart)
	writeTable(pdf, m.Expenses)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

func writeCards(pdf *gofpdf.Fpdf, cards []presenter.StatCard) {
	if len(cards) == 0 {
		return
	}
	pageW, _ := pdf.GetPageSize()
	cardW := (pageW - 2*pageMargin) / float64(len(cards))

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	x, y := pdf.GetXY()
	for i, c := range cards {
		cx := x + float64(i)*cardW
		pdf.Rect(cx, y, cardW-2, 20, "FD")

		pdf.SetXY(cx+2, y+2)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(cardW-6, 5, c.Title, "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(cardW-6, 7, c.Value, "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(cardW-6, 4, c.Subtitle, "", 0, "L", false, 0, "")
	}
	pdf.SetXY(x, y+26)
}

func writeBreakdown(pdf *gofpdf.Fpdf, slices []presenter.ChartSlice) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 8, "Spending by Category")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	if len(slices) == 0 {
		pdf.SetTextColor(120, 120, 120)
		pdf.Cell(0, rowH, "No expenses to display")
		pdf.Ln(rowH + 4)
		return
	}

	for _, s := range slices {
		x, y := pdf.GetXY()
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(45, rowH, s.Label, "", 0, "L", false, 0, "")

		r, g, b := rgb(s.Color)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(x+46, y+1.5, barMaxW*s.Percent/100, rowH-3, "F")

		pdf.SetX(x + 46 + barMaxW + 2)
		pdf.CellFormat(25, rowH, s.Amount, "", 0, "R", false, 0, "")
		pdf.CellFormat(18, rowH, fmt.Sprintf("%.1f%%", s.Percent), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func writeTable(pdf *gofpdf.Fpdf, expenses []core.Expense) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 8, "Expenses")
	pdf.Ln(9)

	widths := []float64{28, 45, 85, 24}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetDrawColor(200, 200, 200)
	for i, h := range []string{"Date", "Category", "Note", "Amount"} {
		align := "L"
		if i == len(widths)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], rowH, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, e := range expenses {
		pdf.CellFormat(widths[0], rowH, e.ExpenseDate.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], rowH, categories.Lookup(e.Category).Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], rowH, truncate(pdf, e.NoteText(), widths[2]-2), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], rowH, core.FormatUSD(e.Amount), "1", 1, "R", false, 0, "")
	}
}

// truncate shortens s to fit width in the current font.
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func rgb(hsl string) (int, int, int) {
	var h, s, l float64
	if _, err := fmt.Sscanf(hsl, "hsl(%f, %f%%, %f%%)", &h, &s, &l); err != nil {
		return 107, 114, 128
	}
	r, g, b := colorful.Hsl(h, s/100, l/100).Clamped().RGB255()
	return int(r), int(g), int(b)
}
