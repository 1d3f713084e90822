package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/runnerr0/quipu/internal/stats"
)

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	if c.File == "" {
		return fmt.Errorf("--file is required")
	}

	var (
		r      io.Reader
		source = c.File
	)
	if c.File == "-" {
		r = c.stdin
		if r == nil {
			r = os.Stdin
		}
		source = "stdin"
	} else {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	s, err := openSession(c.globals, c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	ctrl, err := s.controller(ctx, "", 0)
	if err != nil {
		return err
	}

	rec, err := ctrl.Import(ctx, r, source)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"imported": true,
			"source":   source,
			"sites":    len(rec.Sites),
			"days":     len(rec.DailyStats),
		})
	}

	fmt.Printf("Imported %s from %s\n", stats.SiteCountLabel(len(rec.Sites)), source)
	return nil
}
