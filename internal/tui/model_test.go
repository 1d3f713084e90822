package tui

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/quipu/internal/popup"
	"github.com/runnerr0/quipu/internal/render"
	"github.com/runnerr0/quipu/internal/stats"
	"github.com/runnerr0/quipu/internal/storage"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)

const seed = `{
  "sites": {
    "github.com": {"totalTime": 3600000, "visits": 4},
    "news.ycombinator.com": {"totalTime": 900000, "visits": 2}
  },
  "dailyStats": {
    "2026-10-18": {"github.com": {"time": 120000, "visits": 1}},
    "2026-10-15": {"news.ycombinator.com": {"time": 900000, "visits": 2}}
  }
}`

func newTestModel(t *testing.T, raw string) (Model, *popup.Controller, string) {
	t.Helper()
	m, ctrl, dir, _ := newTestModelWithStore(t, raw)
	return m, ctrl, dir
}

func newTestModelWithStore(t *testing.T, raw string) (Model, *popup.Controller, string, storage.Store) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if raw != "" {
		require.NoError(t, store.Set(ctx, storage.RecordKey, []byte(raw)))
	}

	ctrl := popup.New(store, nil, popup.WithClock(func() time.Time { return fixedNow }))
	ctrl.Load(ctx)

	dir := t.TempDir()
	return New(ctx, ctrl, dir), ctrl, dir, store
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestNew_StartsOnTodayWithRows(t *testing.T) {
	m, _, _ := newTestModel(t, seed)

	assert.Equal(t, stats.ViewToday, m.page.Active)
	assert.Equal(t, "2m", m.page.HeaderTotal)
	assert.Len(t, m.tables[stats.ViewToday].Rows(), 1)
	assert.Len(t, m.tables[stats.ViewWeek].Rows(), 2)
	assert.Len(t, m.tables[stats.ViewAll].Rows(), 2)
}

func TestUpdate_TabCyclesViews(t *testing.T) {
	m, ctrl, _ := newTestModel(t, seed)

	m, _ = press(t, m, "tab")
	assert.Equal(t, stats.ViewWeek, ctrl.View())
	assert.Equal(t, "17m", m.page.HeaderTotal)

	m, _ = press(t, m, "right")
	assert.Equal(t, stats.ViewAll, ctrl.View())
	assert.Equal(t, "1h 15m", m.page.HeaderTotal)

	m, _ = press(t, m, "l")
	assert.Equal(t, stats.ViewToday, ctrl.View())

	m, _ = press(t, m, "left")
	assert.Equal(t, stats.ViewAll, ctrl.View())

	_, _ = press(t, m, "2")
	assert.Equal(t, stats.ViewWeek, ctrl.View())
}

func TestUpdate_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc"} {
		m, _, _ := newTestModel(t, seed)
		m, cmd := press(t, m, key)
		require.NotNil(t, cmd, key)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, m.View())
	}
}

func TestUpdate_ClearRequiresConfirmation(t *testing.T) {
	m, ctrl, _ := newTestModel(t, seed)

	m, cmd := press(t, m, "c")
	assert.Nil(t, cmd)
	assert.True(t, m.confirming)
	assert.Contains(t, m.View(), confirmText)

	m, cmd = press(t, m, "n")
	assert.Nil(t, cmd)
	assert.False(t, m.confirming)
	assert.Len(t, ctrl.Record().Sites, 2)
	assert.Equal(t, "Clear cancelled", m.status)
}

func TestUpdate_ClearConfirmedEmptiesEveryView(t *testing.T) {
	m, ctrl, _ := newTestModel(t, seed)

	m, _ = press(t, m, "c")
	m, cmd := press(t, m, "y")
	m = run(t, m, cmd)

	assert.Empty(t, ctrl.Record().Sites)
	assert.Equal(t, "0s", m.page.HeaderTotal)
	for _, v := range stats.Views {
		assert.Empty(t, m.tables[v].Rows(), "view %s", v)
	}
	assert.Contains(t, m.View(), render.EmptyTitle)
	assert.Equal(t, "All data cleared", m.status)
}

func TestUpdate_ExportWritesFile(t *testing.T) {
	m, ctrl, dir := newTestModel(t, seed)

	m, cmd := press(t, m, "e")
	assert.True(t, m.busy)
	m = run(t, m, cmd)

	assert.False(t, m.busy)
	path := filepath.Join(dir, ctrl.ExportFilename())
	assert.Equal(t, "Exported to "+path, m.status)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestUpdate_BusyIgnoresActions(t *testing.T) {
	m, _, _ := newTestModel(t, seed)

	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)

	_, again := press(t, m, "e")
	assert.Nil(t, again)
}

func TestUpdate_WindowResize(t *testing.T) {
	m, _, _ := newTestModel(t, seed)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)
	assert.Equal(t, 40-chromeHeight, m.tables[stats.ViewAll].Height())
}

func TestView_EmptyRecordShowsEmptyState(t *testing.T) {
	m, _, _ := newTestModel(t, "")
	out := m.View()
	assert.Contains(t, out, render.EmptyTitle)
	assert.Contains(t, out, render.EmptyText)
	assert.Contains(t, out, "0 sites")
}

func TestUpdate_ReloadAppliesStoredRecord(t *testing.T) {
	m, ctrl, _, store := newTestModelWithStore(t, "")
	require.NoError(t, store.Set(context.Background(), storage.RecordKey, []byte(seed)))

	m, cmd := press(t, m, "r")
	assert.Empty(t, ctrl.Record().Sites, "record changes only when the result is applied")

	m = run(t, m, cmd)
	assert.Len(t, ctrl.Record().Sites, 2)
	assert.Equal(t, "2m", m.page.HeaderTotal)
	assert.Len(t, m.tables[stats.ViewAll].Rows(), 2)
	assert.Equal(t, "Reloaded", m.status)
}

// Commands run on bubbletea's goroutines while keys keep arriving on the
// Update goroutine; run with -race.
func TestUpdate_CommandsConcurrentWithViewSwitching(t *testing.T) {
	m, ctrl, _ := newTestModel(t, seed)

	m, reload := press(t, m, "r")
	require.NotNil(t, reload)

	done := make(chan tea.Msg)
	go func() {
		var last tea.Msg
		for i := 0; i < 50; i++ {
			last = reload()
		}
		done <- last
	}()

	for i := 0; i < 50; i++ {
		m, _ = press(t, m, "tab")
	}
	msg := <-done

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Equal(t, stats.Views[50%len(stats.Views)], ctrl.View())
	assert.Len(t, ctrl.Record().Sites, 2)

	m, _ = press(t, m, "c")
	m, reset := press(t, m, "y")
	require.NotNil(t, reset)

	go func() { done <- reset() }()
	for i := 0; i < 50; i++ {
		m, _ = press(t, m, "left")
	}
	next, _ = m.Update(<-done)
	m = next.(Model)

	assert.Empty(t, ctrl.Record().Sites)
	assert.Equal(t, "0s", m.page.HeaderTotal)
}
