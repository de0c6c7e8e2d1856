package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"spendwise/internal/presenter"
)

const barWidth = 30

// RenderDashboard renders the stat cards and the category breakdown of d
// for a terminal.
func RenderDashboard(d presenter.Dashboard) string {
	sections := []string{
		TitleStyle.Render(d.MonthLabel),
		RenderCards(d.Cards),
		"",
		RenderBreakdown(d.Chart),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RenderCards lays the stat cards out side by side.
func RenderCards(cards []presenter.StatCard) string {
	boxes := make([]string, 0, len(cards))
	for _, c := range cards {
		body := lipgloss.JoinVertical(lipgloss.Left,
			SubtleStyle.Render(c.Title),
			cardValueStyle.Render(c.Value),
			SubtleStyle.Render(c.Subtitle),
		)
		boxes = append(boxes, CardStyle.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// RenderBreakdown draws one bar per category, coloured like the web chart.
func RenderBreakdown(slices []presenter.ChartSlice) string {
	if len(slices) == 0 {
		return SubtleStyle.Render("No expenses to display")
	}

	labelWidth := 0
	for _, s := range slices {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Spending by Category"))
	b.WriteString("\n")
	for _, s := range slices {
		filled := int(s.Percent / 100 * barWidth)
		if filled == 0 && s.Value > 0 {
			filled = 1
		}
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(hexColor(s.Color))).
			Render(strings.Repeat("█", filled))
		fmt.Fprintf(&b, "%-*s %s%s %10s %5.1f%%\n",
			labelWidth, s.Label,
			bar, strings.Repeat(" ", barWidth-filled),
			s.Amount, s.Percent)
	}
	return strings.TrimRight(b.String(), "\n")
}

// hexColor converts a registry hsl() colour to the hex form terminals accept.
func hexColor(hsl string) string {
	var h, s, l float64
	if _, err := fmt.Sscanf(hsl, "hsl(%f, %f%%, %f%%)", &h, &s, &l); err != nil {
		return string(SubtleColor)
	}
	return colorful.Hsl(h, s/100, l/100).Clamped().Hex()
}
