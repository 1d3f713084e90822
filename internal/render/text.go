package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/runnerr0/quipu/internal/sanitize"
	"github.com/runnerr0/quipu/internal/stats"
)

// Terminal palette
const (
	ColorAccent  = lipgloss.Color("86")  // cyan
	ColorText    = lipgloss.Color("15")  // bright white
	ColorTextDim = lipgloss.Color("241") // gray
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	TotalStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	DimStyle      = lipgloss.NewStyle().Foreground(ColorTextDim)
	ActiveTab     = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Underline(true).Padding(0, 1)
	InactiveTab   = lipgloss.NewStyle().Foreground(ColorTextDim).Padding(0, 1)
	domainStyle   = lipgloss.NewStyle().Foreground(ColorText)
	durationStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// domainWidth is the column width for domains in text output.
const domainWidth = 32

// Tabs renders the tab strip with the active view highlighted.
func Tabs(active stats.View) string {
	parts := make([]string, 0, len(stats.Views))
	for _, v := range stats.Views {
		if v == active {
			parts = append(parts, ActiveTab.Render(v.Title()))
		} else {
			parts = append(parts, InactiveTab.Render(v.Title()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// Header renders the date label and the active view's total.
func Header(page Page) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		DimStyle.Render(page.DateLabel),
		TotalStyle.Render(page.HeaderTotal),
	)
}

// PanelText renders one panel's rows, or the empty state.
func PanelText(panel Panel) string {
	var b strings.Builder
	b.WriteString(DimStyle.Render(panel.CountLabel))
	b.WriteString("\n")

	if panel.Empty() {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render(EmptyTitle))
		b.WriteString("\n")
		b.WriteString(DimStyle.Render(EmptyText))
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range panel.Rows {
		icon := sanitize.Placeholder
		if r.HasFavicon() {
			icon = "•"
		}
		fmt.Fprintf(&b, "%2d. %s %s %s\n",
			i+1,
			icon,
			domainStyle.Render(padRight(truncate(sanitize.TerminalText(r.Domain), domainWidth), domainWidth)),
			durationStyle.Render(r.Time),
		)
	}
	return b.String()
}

// WriteText renders the header, tabs and the active panel.
func WriteText(w io.Writer, page Page) error {
	out := lipgloss.JoinVertical(lipgloss.Left,
		Header(page),
		"",
		Tabs(page.Active),
		"",
		PanelText(page.Panel(page.Active)),
	)
	if _, err := fmt.Fprintln(w, out); err != nil {
		return fmt.Errorf("render text: %w", err)
	}
	return nil
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
