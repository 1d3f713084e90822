package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Show   *ShowCommand
	Export *ExportCommand
	Import *ImportCommand
	Clear  *ClearCommand
	Status *StatusCommand
	Tui    *TuiCommand
	Serve  *ServeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	// Errors are returned, not printed; main reports them once.
	parser := goflags.NewParser(&globals, goflags.HelpFlag|goflags.PassDoubleDash)
	parser.Name = "quipu"
	parser.LongDescription = "Local viewer for per-site browsing time: today, the last 7 days, and all time."

	cmds := &commands{
		Show:   &ShowCommand{globals: &globals, version: version},
		Export: &ExportCommand{globals: &globals, version: version},
		Import: &ImportCommand{globals: &globals, version: version},
		Clear:  &ClearCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
		Tui:    &TuiCommand{globals: &globals, version: version},
		Serve:  &ServeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("show", "Show browsing time for a view", "Show the ranked sites and total time for today, the last 7 days, or all time.", cmds.Show)
	parser.AddCommand("export", "Export all browsing data", "Write the stored record, wrapped with an export timestamp, to a JSON file.", cmds.Export)
	parser.AddCommand("import", "Import a record or export file", "Replace the stored record with a bare record or a previous export file.", cmds.Import)
	parser.AddCommand("clear", "Delete ALL browsing data", "Delete ALL browsing data. Destructive operation with safety prompt.", cmds.Clear)
	parser.AddCommand("status", "Show storage statistics", "Show database location, record size, tracked sites and recent actions.", cmds.Status)
	parser.AddCommand("tui", "Open the interactive viewer", "Open the tabbed terminal viewer with reload, export and clear.", cmds.Tui)
	parser.AddCommand("serve", "Serve the popup page over HTTP", "Serve the popup page and its export and clear actions on a local port.", cmds.Serve)

	return parser, &globals, cmds
}

// Run is the main entry point for the quipu CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("quipu %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				fmt.Println(flagsErr.Message)
				return nil
			}
		}
		return err
	}

	return nil
}
