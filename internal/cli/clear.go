package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Execute implements the go-flags Commander interface for ClearCommand.
func (c *ClearCommand) Execute(args []string) error {
	// Confirmation prompt unless --force
	if !c.Force {
		if err := c.confirm(); err != nil {
			return err
		}
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

	if err := ctrl.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"cleared": true,
			"message": "all data deleted",
		})
	}

	fmt.Println("Cleared all data.")
	return nil
}

func (c *ClearCommand) confirm() error {
	fmt.Println("⚠ WARNING: This will permanently delete ALL browsing data.")
	fmt.Println("  - Per-site lifetime totals")
	fmt.Println("  - Daily statistics")
	fmt.Println()
	fmt.Println("This action cannot be undone.")
	fmt.Println()
	fmt.Print(`Type "CLEAR" to confirm: `)

	var in io.Reader = os.Stdin
	if c.stdin != nil {
		in = c.stdin
	}
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if strings.TrimSpace(scanner.Text()) != "CLEAR" {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}
