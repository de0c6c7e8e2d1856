// Package presenter shapes aggregated expense data for rendering.
package presenter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/categories"
	"spendwise/internal/core"
	"spendwise/internal/stats"
)

// RecentLimit is how many expenses the recent list shows.
const RecentLimit = 10

// HeadingLayout formats date headings of the recent list.
const HeadingLayout = "Monday, January 2, 2006"

type StatCard struct {
	Title    string
	Value    string
	Subtitle string
	Icon     string
}

type ChartSlice struct {
	stats.Slice
	Amount string
}

type ExpenseRow struct {
	ID         string
	Category   string
	Label      string
	Icon       string
	ColorToken string
	Note       string
	Amount     string
}

type DateSection struct {
	Date    string
	Heading string
	Rows    []ExpenseRow
}

// Dashboard is the complete view model of the dashboard page.
type Dashboard struct {
	Summary    stats.Summary
	MonthLabel string
	Cards      []StatCard

	Chart      []ChartSlice
	ChartStyle string
	ChartEmpty bool

	Recent    []DateSection
	ListEmpty bool
}

// NewDashboard builds the view model for expenses as of now. The chart
// covers the current month only; the recent list covers the first
// RecentLimit expenses in store order.
func NewDashboard(expenses []core.Expense, now time.Time) Dashboard {
	summary := stats.Compute(expenses, now)

	d := Dashboard{
		Summary:    summary,
		MonthLabel: summary.MonthLabel,
		Cards:      Cards(summary),
	}

	for _, s := range stats.Breakdown(stats.InMonth(expenses, now)) {
		d.Chart = append(d.Chart, ChartSlice{Slice: s, Amount: core.FormatUSD(s.Value)})
	}
	d.ChartEmpty = len(d.Chart) == 0
	d.ChartStyle = ConicGradient(d.Chart)

	recent := expenses
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	d.Recent = Sections(recent)
	d.ListEmpty = len(d.Recent) == 0
	return d
}

// Cards renders the four headline statistics.
func Cards(s stats.Summary) []StatCard {
	return []StatCard{
		{Title: "This Month", Value: core.FormatUSD(s.TotalThisMonth), Subtitle: fmt.Sprintf("%d transactions", s.TransactionsThisMonth), Icon: "dollar-sign"},
		{Title: "All Time", Value: core.FormatUSD(s.TotalAll), Subtitle: fmt.Sprintf("%d total transactions", s.TotalTransactions), Icon: "trending-up"},
		{Title: "Avg per Transaction", Value: core.FormatUSD(s.AvgPerTransaction), Subtitle: "This month", Icon: "calendar"},
		{Title: "Transactions", Value: strconv.Itoa(s.TransactionsThisMonth), Subtitle: "This month", Icon: "dollar-sign"},
	}
}

// Sections groups expenses by date into headed list sections.
func Sections(expenses []core.Expense) []DateSection {
	groups := stats.GroupByDate(expenses)
	out := make([]DateSection, 0, len(groups))
	for _, g := range groups {
		sec := DateSection{Date: g.Date.String(), Heading: g.Date.Format(HeadingLayout)}
		for _, e := range g.Expenses {
			sec.Rows = append(sec.Rows, Row(e))
		}
		out = append(out, sec)
	}
	return out
}

func Row(e core.Expense) ExpenseRow {
	cat := categories.Lookup(e.Category)
	return ExpenseRow{
		ID:         e.ID,
		Category:   e.Category,
		Label:      cat.Label,
		Icon:       cat.Icon,
		ColorToken: cat.ColorToken,
		Note:       e.NoteText(),
		Amount:     core.FormatUSD(e.Amount),
	}
}

// ConicGradient returns a CSS background drawing the slices as a pie.
func ConicGradient(slices []ChartSlice) string {
	if len(slices) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("conic-gradient(")
	var from float64
	for i, s := range slices {
		to := from + s.Percent
		if i == len(slices)-1 {
			to = 100
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %.2f%% %.2f%%", s.Color, from, to)
		from = to
	}
	b.WriteString(")")
	return b.String()
}
