// Package stats derives the today, week and all-time views from a browsing
// record and formats durations for display.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/quipu/internal/storage"
)

// dayKeyLayout is the zero-padded local calendar date used as dailyStats key.
const dayKeyLayout = "2006-01-02"

// WindowDays is the length of the trailing week window, today included.
const WindowDays = 7

// View selects one of the three display scopes.
type View string

const (
	ViewToday View = "today"
	ViewWeek  View = "week"
	ViewAll   View = "all"
)

// Views lists the scopes in display order.
var Views = []View{ViewToday, ViewWeek, ViewAll}

// ParseView maps a user-supplied name to a View.
func ParseView(s string) (View, error) {
	switch s {
	case "today":
		return ViewToday, nil
	case "week":
		return ViewWeek, nil
	case "all", "all-time", "alltime":
		return ViewAll, nil
	}
	return "", fmt.Errorf("unknown view %q (use today, week, or all)", s)
}

// Title is the tab label for the view.
func (v View) Title() string {
	switch v {
	case ViewToday:
		return "Today"
	case ViewWeek:
		return "Week"
	default:
		return "All Time"
	}
}

// Row is one derived per-domain line of a view.
type Row struct {
	Domain  string `json:"domain"`
	Time    int64  `json:"time"`
	Visits  int64  `json:"visits"`
	Favicon string `json:"favicon"`
}

// DayKey returns the local calendar day key for t.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// WeekKeys returns the day keys of the trailing window ending at now,
// newest first.
func WeekKeys(now time.Time) []string {
	keys := make([]string, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		keys = append(keys, DayKey(now.AddDate(0, 0, -i)))
	}
	return keys
}

// Today returns one row per domain recorded on now's local day.
func Today(rec storage.BrowsingRecord, now time.Time) []Row {
	day := rec.DailyStats[DayKey(now)]
	rows := make([]Row, 0, len(day))
	for domain, d := range day {
		rows = append(rows, Row{
			Domain:  domain,
			Time:    d.Time,
			Visits:  d.Visits,
			Favicon: rec.Sites[domain].Favicon,
		})
	}
	sortRows(rows)
	return rows
}

// Week sums each domain's counters over the trailing window ending at now.
// Missing days contribute nothing.
func Week(rec storage.BrowsingRecord, now time.Time) []Row {
	totals := map[string]*Row{}
	for _, key := range WeekKeys(now) {
		for domain, d := range rec.DailyStats[key] {
			r, ok := totals[domain]
			if !ok {
				r = &Row{Domain: domain, Favicon: rec.Sites[domain].Favicon}
				totals[domain] = r
			}
			r.Time += d.Time
			r.Visits += d.Visits
		}
	}

	rows := make([]Row, 0, len(totals))
	for _, r := range totals {
		rows = append(rows, *r)
	}
	sortRows(rows)
	return rows
}

// AllTime returns one row per known site using its lifetime total.
func AllTime(rec storage.BrowsingRecord) []Row {
	rows := make([]Row, 0, len(rec.Sites))
	for domain, s := range rec.Sites {
		rows = append(rows, Row{
			Domain:  domain,
			Time:    s.TotalTime,
			Visits:  s.Visits,
			Favicon: s.Favicon,
		})
	}
	sortRows(rows)
	return rows
}

// Rows dispatches to the aggregator for v.
func Rows(rec storage.BrowsingRecord, v View, now time.Time) []Row {
	switch v {
	case ViewToday:
		return Today(rec, now)
	case ViewWeek:
		return Week(rec, now)
	default:
		return AllTime(rec)
	}
}

// HeaderTotal sums time for the selected view straight from the record.
// It always equals SumTime(Rows(rec, v, now)).
func HeaderTotal(rec storage.BrowsingRecord, v View, now time.Time) int64 {
	var total int64
	switch v {
	case ViewToday:
		total = dayTotal(rec.DailyStats[DayKey(now)])
	case ViewWeek:
		for _, key := range WeekKeys(now) {
			total += dayTotal(rec.DailyStats[key])
		}
	default:
		for _, s := range rec.Sites {
			total += s.TotalTime
		}
	}
	return total
}

// SumTime adds up the time of rows.
func SumTime(rows []Row) int64 {
	var total int64
	for _, r := range rows {
		total += r.Time
	}
	return total
}

// Top returns at most n leading rows. n <= 0 means no cap.
func Top(rows []Row, n int) []Row {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}

func dayTotal(day map[string]storage.DayTotals) int64 {
	var total int64
	for _, d := range day {
		total += d.Time
	}
	return total
}

// sortRows orders by descending time, then domain ascending so that equal
// times render the same way on every load.
func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Time != rows[j].Time {
			return rows[i].Time > rows[j].Time
		}
		return rows[i].Domain < rows[j].Domain
	})
}
