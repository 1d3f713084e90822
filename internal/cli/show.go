package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/runnerr0/quipu/internal/render"
	"github.com/runnerr0/quipu/internal/stats"
)

// showJSON is the JSON output structure for the show command.
type showJSON struct {
	Date      string      `json:"date"`
	DateLabel string      `json:"date_label"`
	View      stats.View  `json:"view"`
	TotalMS   int64       `json:"total_ms"`
	Total     string      `json:"total"`
	SiteCount int         `json:"site_count"`
	Sites     []stats.Row `json:"sites"`
}

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	s, err := openSession(c.globals, c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	ctrl, err := s.controller(ctx, c.View, c.Limit)
	if err != nil {
		return err
	}

	if c.HTML != "" {
		return c.writeHTML(ctrl.Page())
	}

	if c.globals != nil && c.globals.JSON {
		limit := c.Limit
		if limit <= 0 {
			limit = s.cfg.Display.Limit
		}
		if limit <= 0 {
			limit = render.DefaultLimit
		}

		now := ctrl.Now()
		v := ctrl.View()
		rows := ctrl.Rows(v)
		total := stats.HeaderTotal(ctrl.Record(), v, now)
		return printJSON(showJSON{
			Date:      stats.DayKey(now),
			DateLabel: render.DateLabel(now),
			View:      v,
			TotalMS:   total,
			Total:     stats.FormatDuration(total),
			SiteCount: len(rows),
			Sites:     stats.Top(rows, limit),
		})
	}

	return render.WriteText(os.Stdout, ctrl.Page())
}

func (c *ShowCommand) writeHTML(page render.Page) error {
	f, err := os.Create(c.HTML)
	if err != nil {
		return fmt.Errorf("create html file: %w", err)
	}
	if err := render.WriteHTML(f, page); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close html file: %w", err)
	}

	fmt.Printf("Wrote %s\n", c.HTML)
	return nil
}
