// Package tui is the interactive terminal viewer: one table per view with
// Tab/←/→ switching, plus reload, export and a confirmed clear.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runnerr0/quipu/internal/popup"
	"github.com/runnerr0/quipu/internal/render"
	"github.com/runnerr0/quipu/internal/sanitize"
	"github.com/runnerr0/quipu/internal/stats"
	"github.com/runnerr0/quipu/internal/storage"
)

const (
	helpText    = "↑/↓: scroll | Tab/←/→: switch view | r: reload | e: export | c: clear | q/Esc: quit"
	confirmText = "Clear ALL browsing data? This cannot be undone. (y/n)"

	defaultTableHeight = 15
	chromeHeight       = 12
)

var (
	ColorBorder    = lipgloss.Color("240")
	ColorHighlight = lipgloss.Color("24")
	ColorWarn      = lipgloss.Color("214")
	ColorError     = lipgloss.Color("196")

	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder).Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorWarn)
	errorStyle  = lipgloss.NewStyle().Foreground(ColorError)
	statusStyle = render.DimStyle
)

// Messages produced by the model's commands. Records travel in the message
// and are applied to the controller in Update.
type (
	loadedMsg   struct{ rec storage.BrowsingRecord }
	exportedMsg struct {
		path string
		err  error
	}
	clearedMsg struct {
		rec storage.BrowsingRecord
		err error
	}
)

// Model is the bubbletea model. Commands run on their own goroutines and
// only do store I/O; the controller's cached record and view change in
// Update alone.
type Model struct {
	ctx       context.Context
	ctrl      *popup.Controller
	exportDir string

	page   render.Page
	tables map[stats.View]*table.Model
	height int

	busy       bool
	confirming bool
	status     string
	statusErr  bool
	quitting   bool
}

// New builds a model over ctrl. The controller should already be loaded.
func New(ctx context.Context, ctrl *popup.Controller, exportDir string) Model {
	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		exportDir: exportDir,
		tables:    make(map[stats.View]*table.Model, len(stats.Views)),
		height:    defaultTableHeight,
	}
	for _, v := range stats.Views {
		t := table.New(
			table.WithColumns(columns()),
			table.WithFocused(v == ctrl.View()),
			table.WithHeight(m.height),
		)
		applyTableStyles(&t)
		m.tables[v] = &t
	}
	m.refresh()
	return m
}

func columns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Site", Width: 36},
		{Title: "Time", Width: 10},
		{Title: "Visits", Width: 8},
	}
}

func applyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(render.ColorText)
	s.Selected = s.Selected.
		Foreground(render.ColorText).
		Background(ColorHighlight).
		Bold(true)
	t.SetStyles(s)
}

// refresh rebuilds the page and every table from the controller.
func (m *Model) refresh() {
	m.page = m.ctrl.Page()
	for _, panel := range m.page.Panels {
		t := m.tables[panel.View]
		t.SetRows(tableRows(panel))
		t.GotoTop()
	}
}

func tableRows(panel render.Panel) []table.Row {
	rows := make([]table.Row, 0, len(panel.Rows))
	for i, r := range panel.Rows {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			sanitize.TerminalText(r.Domain),
			r.Time,
			strconv.FormatInt(r.Visits, 10),
		})
	}
	return rows
}

// Init requests the window size.
func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles key presses and command results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-chromeHeight, 3)
		for _, t := range m.tables {
			t.SetHeight(m.height)
		}
		return m, nil

	case loadedMsg:
		m.busy = false
		m.ctrl.Apply(msg.rec)
		m.refresh()
		m.setStatus("Reloaded", false)
		return m, nil

	case exportedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus("Export failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Exported to "+msg.path, false)
		}
		return m, nil

	case clearedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus("Failed to clear data: "+msg.err.Error(), true)
			return m, nil
		}
		m.ctrl.Apply(msg.rec)
		m.refresh()
		m.setStatus("All data cleared", false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirming {
		m.confirming = false
		if key == "y" || key == "Y" {
			m.busy = true
			return m, m.clearCmd()
		}
		m.setStatus("Clear cancelled", false)
		return m, nil
	}

	switch key {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "right", "l":
		m.selectView(m.offsetView(1))
		return m, nil

	case "left", "h":
		m.selectView(m.offsetView(-1))
		return m, nil

	case "1", "2", "3":
		m.selectView(stats.Views[int(key[0]-'1')])
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch key {
	case "r":
		m.busy = true
		return m, m.loadCmd()

	case "e":
		m.busy = true
		return m, m.exportCmd()

	case "c":
		m.confirming = true
		return m, nil

	case "up", "k":
		m.tables[m.ctrl.View()].MoveUp(1)
	case "down", "j":
		m.tables[m.ctrl.View()].MoveDown(1)
	case "home", "g":
		m.tables[m.ctrl.View()].GotoTop()
	case "end", "G":
		m.tables[m.ctrl.View()].GotoBottom()
	}
	return m, nil
}

func (m Model) offsetView(delta int) stats.View {
	n := len(stats.Views)
	for i, v := range stats.Views {
		if v == m.ctrl.View() {
			return stats.Views[(i+delta+n)%n]
		}
	}
	return stats.ViewToday
}

func (m *Model) selectView(v stats.View) {
	m.tables[m.ctrl.View()].Blur()
	m.ctrl.Select(v)
	m.tables[v].Focus()
	m.page = m.ctrl.Page()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) loadCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return loadedMsg{rec: ctrl.Fetch(ctx)}
	}
}

func (m Model) exportCmd() tea.Cmd {
	ctx, ctrl, dir := m.ctx, m.ctrl, m.exportDir
	return func() tea.Msg {
		path, err := ctrl.WriteExport(ctx, dir)
		return exportedMsg{path: path, err: err}
	}
}

func (m Model) clearCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		rec, err := ctrl.Reset(ctx)
		return clearedMsg{rec: rec, err: err}
	}
}

// View renders the header, tabs, the active table and the footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content strings.Builder
	content.WriteString(render.Header(m.page))
	content.WriteString("\n\n")
	content.WriteString(render.Tabs(m.page.Active))
	content.WriteString("  ")
	content.WriteString(render.DimStyle.Render("(Tab/←/→)"))
	content.WriteString("\n\n")

	panel := m.page.Panel(m.page.Active)
	content.WriteString(render.DimStyle.Render(panel.CountLabel))
	content.WriteString("\n")
	if panel.Empty() {
		content.WriteString("\n")
		content.WriteString(render.TitleStyle.Render(render.EmptyTitle))
		content.WriteString("\n")
		content.WriteString(render.DimStyle.Render(render.EmptyText))
		content.WriteString("\n")
	} else {
		content.WriteString(m.tables[m.page.Active].View())
		content.WriteString("\n")
	}

	footer := statusStyle.Render(helpText)
	switch {
	case m.confirming:
		footer = warnStyle.Render(confirmText)
	case m.status != "" && m.statusErr:
		footer = errorStyle.Render(m.status) + "\n" + footer
	case m.status != "":
		footer = statusStyle.Render(m.status) + "\n" + footer
	}

	return frameStyle.Render(content.String()) + "\n" + footer
}

// Run starts the viewer in the alternate screen and blocks until it exits.
func Run(ctx context.Context, ctrl *popup.Controller, exportDir string) error {
	p := tea.NewProgram(New(ctx, ctrl, exportDir), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
