package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"budgetcal/internal/core"
)

var (
	ColorBorder = lipgloss.Color("#3A3A3A")
	ColorText   = lipgloss.Color("#ECEFF4")
	ColorMuted  = lipgloss.Color("#8A8F98")
	ColorAccent = lipgloss.Color("#5E81AC")
	ColorGreen  = lipgloss.Color("#A3BE8C")
	ColorRed    = lipgloss.Color("#BF616A")
	ColorOrange = lipgloss.Color("#D08770")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorBorder)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	incomeStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	spendStyle  = lipgloss.NewStyle().Foreground(ColorRed)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorOrange).Bold(true)
)

// Table is a bordered text table. Cells may already carry styling;
// widths are measured with lipgloss so escape codes do not count.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(50).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func RenderTable(t Table) string {
	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < cols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right) + "\n")
	}
	line := func(cells []string, style *lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(" " + cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)) + " ")
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, &headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		line(row, nil)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// Amount formats m in currency, green when positive and red when negative.
func Amount(m core.Money, currency string) string {
	s := core.FormatMoney(m, currency)
	switch {
	case m.IsNegative():
		return spendStyle.Render(s)
	case m.IsZero():
		return mutedStyle.Render(s)
	default:
		return incomeStyle.Render(s)
	}
}

// Bar draws value as a share of scale in width cells.
func Bar(value, scale core.Money, width int) string {
	if width <= 0 || scale.Cents <= 0 {
		return ""
	}
	filled := int(value.Abs().Cents * int64(width) / scale.Cents)
	filled = min(filled, width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if value.IsNegative() {
		return spendStyle.Render(bar)
	}
	return incomeStyle.Render(bar)
}

func Warn(format string, args ...any) string {
	return warnStyle.Render(fmt.Sprintf(format, args...))
}

func Muted(s string) string {
	return mutedStyle.Render(s)
}
