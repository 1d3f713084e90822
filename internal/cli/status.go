package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/runnerr0/quipu/internal/stats"
	"github.com/runnerr0/quipu/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string           `json:"version"`
	DatabasePath      string           `json:"database_path"`
	DatabaseSizeBytes int64            `json:"database_size_bytes"`
	RecordStored      bool             `json:"record_stored"`
	RecordBytes       int64            `json:"record_bytes"`
	LastUpdated       string           `json:"last_updated,omitempty"`
	Sites             int              `json:"sites"`
	Days              int              `json:"days"`
	Totals            map[string]int64 `json:"totals_ms"`
	TotalActions      int64            `json:"total_actions"`
	RecentActions     []actionJSON     `json:"recent_actions"`
	ServerRunning     bool             `json:"server_running"`
}

type actionJSON struct {
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// statusReport is what both output formats are rendered from.
type statusReport struct {
	dbPath        string
	dbSize        int64
	stats         *storage.Stats
	record        storage.BrowsingRecord
	totals        map[stats.View]int64
	actions       []storage.Action
	serverAddr    string
	serverRunning bool
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	s, err := openSession(c.globals, c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	return c.run(context.Background(), s)
}

func (c *StatusCommand) run(ctx context.Context, s *session) error {
	st, err := s.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	actions, err := s.store.RecentActions(ctx, 5)
	if err != nil {
		return fmt.Errorf("recent actions: %w", err)
	}

	ctrl, err := s.controller(ctx, "", 0)
	if err != nil {
		return err
	}
	rec := ctrl.Record()
	now := ctrl.Now()

	report := statusReport{
		dbPath:     s.dbPath,
		dbSize:     databaseSize(s.dbPath),
		stats:      st,
		record:     rec,
		totals:     make(map[stats.View]int64, len(stats.Views)),
		actions:    actions,
		serverAddr: net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port)),
	}
	for _, v := range stats.Views {
		report.totals[v] = stats.HeaderTotal(rec, v, now)
	}
	report.serverRunning = checkServer(report.serverAddr)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(report)
	}
	return c.printStatusHuman(report)
}

// lastUpdated prefers the record's own stamp over the row's write time.
func (r statusReport) lastUpdated() time.Time {
	if r.record.LastUpdated != nil {
		return time.UnixMilli(*r.record.LastUpdated)
	}
	return r.stats.UpdatedAt
}

func (c *StatusCommand) printStatusHuman(r statusReport) error {
	fmt.Println("Quipu Status")
	fmt.Println("============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", r.dbPath, formatBytes(r.dbSize))
	if r.stats.RecordStored {
		fmt.Printf("Record:        %s\n", formatBytes(r.stats.RecordBytes))
	} else {
		fmt.Println("Record:        none stored")
	}
	if t := r.lastUpdated(); !t.IsZero() {
		fmt.Printf("Last updated:  %s\n", t.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Sites:         %d\n", len(r.record.Sites))
	fmt.Printf("Days tracked:  %d\n", len(r.record.DailyStats))

	fmt.Println()
	fmt.Println("Totals:")
	for _, v := range stats.Views {
		fmt.Printf("  %-10s %s\n", v.Title(), stats.FormatDuration(r.totals[v]))
	}

	if len(r.actions) > 0 {
		fmt.Println()
		fmt.Println("Recent Actions:")
		for _, a := range r.actions {
			fmt.Printf("  %s  %-7s %s\n", a.Timestamp.Local().Format("2006-01-02 15:04"), a.Action, a.Detail)
		}
	}

	fmt.Println()
	if r.serverRunning {
		fmt.Printf("Server:        running on %s\n", r.serverAddr)
	} else {
		fmt.Println("Server:        not running")
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(r statusReport) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      r.dbPath,
		DatabaseSizeBytes: r.dbSize,
		RecordStored:      r.stats.RecordStored,
		RecordBytes:       r.stats.RecordBytes,
		Sites:             len(r.record.Sites),
		Days:              len(r.record.DailyStats),
		Totals:            make(map[string]int64, len(r.totals)),
		TotalActions:      r.stats.TotalActions,
		RecentActions:     make([]actionJSON, len(r.actions)),
		ServerRunning:     r.serverRunning,
	}

	if t := r.lastUpdated(); !t.IsZero() {
		out.LastUpdated = t.UTC().Format(time.RFC3339)
	}
	for v, total := range r.totals {
		out.Totals[string(v)] = total
	}
	for i, a := range r.actions {
		out.RecentActions[i] = actionJSON{
			Action:    a.Action,
			Detail:    a.Detail,
			Timestamp: a.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	return printJSON(out)
}

// databaseSize returns the database file size in bytes, or 0 when the file
// cannot be read.
func databaseSize(dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}
	return 0
}

// checkServer attempts an HTTP GET to the local server's status endpoint.
// Returns true if it responds within 1 second.
func checkServer(addr string) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/status")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
