package cli

import (
	"context"
	"fmt"
	"os"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
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

	if c.Stdout {
		if err := ctrl.Export(ctx, os.Stdout); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return nil
	}

	dir := c.Dir
	if dir == "" {
		dir, err = s.cfg.ExportDir()
		if err != nil {
			return fmt.Errorf("resolve export dir: %w", err)
		}
	}

	path, err := ctrl.WriteExport(ctx, dir)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"exported": true,
			"path":     path,
		})
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}
