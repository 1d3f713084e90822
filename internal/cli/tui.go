package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/quipu/internal/tui"
)

// Execute implements the go-flags Commander interface for TuiCommand.
func (c *TuiCommand) Execute(args []string) error {
	s, err := openSession(c.globals, c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	exportDir, err := s.cfg.ExportDir()
	if err != nil {
		return fmt.Errorf("resolve export dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl, err := s.controller(ctx, c.View, 0)
	if err != nil {
		return err
	}

	return tui.Run(ctx, ctrl, exportDir)
}
