// Package render turns a browsing record into a display-ready Page and
// writes pages as HTML or styled terminal text.
package render

import (
	"time"

	"github.com/runnerr0/quipu/internal/sanitize"
	"github.com/runnerr0/quipu/internal/stats"
	"github.com/runnerr0/quipu/internal/storage"
)

// DefaultLimit caps the rows rendered per panel.
const DefaultLimit = 20

const (
	EmptyTitle = "No Activity"
	EmptyText  = "Your browsing time will appear here"
)

// Page is the full renderable state of the viewer.
type Page struct {
	DateLabel   string
	Active      stats.View
	HeaderTotal string
	Panels      []Panel
}

// Panel is one of the three view containers.
type Panel struct {
	View       stats.View
	Title      string
	CountLabel string
	Rows       []RowView
}

// Empty reports whether the panel shows the empty state.
func (p Panel) Empty() bool {
	return len(p.Rows) == 0
}

// RowView is a formatted row. Domain is raw; each writer escapes it for its
// own output. FaviconURL is set only when it passed the allow-list.
type RowView struct {
	Domain     string
	Time       string
	Visits     int64
	FaviconURL string
}

// HasFavicon reports whether an allowed favicon URL is present.
func (r RowView) HasFavicon() bool {
	return r.FaviconURL != ""
}

// Build derives every panel from rec as of now. limit <= 0 uses DefaultLimit.
func Build(rec storage.BrowsingRecord, active stats.View, now time.Time, limit int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}

	page := Page{
		DateLabel:   DateLabel(now),
		Active:      active,
		HeaderTotal: stats.FormatDuration(stats.HeaderTotal(rec, active, now)),
		Panels:      make([]Panel, 0, len(stats.Views)),
	}

	for _, v := range stats.Views {
		rows := stats.Rows(rec, v, now)
		panel := Panel{
			View:       v,
			Title:      v.Title(),
			CountLabel: stats.SiteCountLabel(len(rows)),
			Rows:       make([]RowView, 0, min(len(rows), limit)),
		}
		for _, r := range stats.Top(rows, limit) {
			favicon, _ := sanitize.FaviconURL(r.Favicon)
			panel.Rows = append(panel.Rows, RowView{
				Domain:     r.Domain,
				Time:       stats.FormatDuration(r.Time),
				Visits:     r.Visits,
				FaviconURL: favicon,
			})
		}
		page.Panels = append(page.Panels, panel)
	}

	return page
}

// Panel returns the panel for v.
func (p Page) Panel(v stats.View) Panel {
	for _, panel := range p.Panels {
		if panel.View == v {
			return panel
		}
	}
	return Panel{View: v, Title: v.Title(), CountLabel: stats.SiteCountLabel(0)}
}

// DateLabel formats the header date, e.g. "Today, Sunday, Oct 18".
func DateLabel(now time.Time) string {
	return "Today, " + now.Format("Monday, Jan 2")
}
