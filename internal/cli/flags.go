package cli

import (
	"io"

	"github.com/runnerr0/quipu/internal/storage"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DBPath  string `long:"db-path" description:"Path to the SQLite database (overrides config and QUIPU_DB_PATH)"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ShowCommand prints the popup for one view, as text, JSON or an HTML file.
type ShowCommand struct {
	View  string `long:"view" description:"View to show: today | week | all (default from config)"`
	Limit int    `long:"limit" description:"Maximum sites per view (default from config)"`
	HTML  string `long:"html" description:"Write the full HTML page to this file instead"`

	globals *GlobalFlags
	version string
	store   storage.Store // injectable for testing; nil means open the configured DB
}

// ExportCommand writes the export artifact.
type ExportCommand struct {
	Dir    string `long:"dir" description:"Directory to write the export file to (default from config)"`
	Stdout bool   `long:"stdout" description:"Write the export to stdout instead of a file"`

	globals *GlobalFlags
	version string
	store   storage.Store
}

// ImportCommand replaces the stored record with a record or export file.
type ImportCommand struct {
	File string `long:"file" description:"Record or export file to import, - for stdin (required)"`

	globals *GlobalFlags
	version string
	store   storage.Store
	stdin   io.Reader
}

// ClearCommand deletes all browsing data with a safety confirmation.
type ClearCommand struct {
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	store   storage.Store
	stdin   io.Reader
}

// StatusCommand shows storage statistics and recent actions.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	store   storage.Store
}

// TuiCommand opens the interactive terminal viewer.
type TuiCommand struct {
	View string `long:"view" description:"Initial view: today | week | all (default from config)"`

	globals *GlobalFlags
	version string
	store   storage.Store
}

// ServeCommand serves the popup page over local HTTP.
type ServeCommand struct {
	Host string `long:"host" description:"Override server host"`
	Port int    `long:"port" description:"Override server port"`

	globals *GlobalFlags
	version string
	store   storage.Store
}
