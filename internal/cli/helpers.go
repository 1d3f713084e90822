package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/quipu/internal/config"
	"github.com/runnerr0/quipu/internal/popup"
	"github.com/runnerr0/quipu/internal/stats"
	"github.com/runnerr0/quipu/internal/storage"
)

// session bundles what a command needs: resolved config, logger and store.
type session struct {
	cfg     *config.Config
	logger  *log.Logger
	store   storage.Store
	dbPath  string
	closers []func() error
}

// openSession resolves config and logging, then opens the configured store
// unless one was injected.
func openSession(globals *GlobalFlags, injected storage.Store) (*session, error) {
	if globals == nil {
		globals = &GlobalFlags{}
	}

	cfg, err := loadConfig(globals, injected != nil)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}

	logger, closeLog, err := newLogger(cfg, globals.Verbose)
	if err != nil {
		return nil, err
	}
	s.logger = logger
	s.closers = append(s.closers, closeLog)

	s.dbPath, err = cfg.DBPath()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("resolve db path: %w", err)
	}

	if injected != nil {
		s.store = injected
		return s, nil
	}

	store, db, err := openStore(s.dbPath, cfg.Storage.JournalMode)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.store = store
	s.closers = append(s.closers, store.Close, db.Close)
	logger.Debug("opened database", "path", s.dbPath)
	return s, nil
}

// Close releases the store, database and log file in order.
func (s *session) Close() {
	for _, c := range s.closers {
		_ = c()
	}
	s.closers = nil
}

// controller builds a loaded popup.Controller from the session config.
// view and limit override the config when set.
func (s *session) controller(ctx context.Context, view string, limit int) (*popup.Controller, error) {
	if view == "" {
		view = s.cfg.Display.DefaultView
	}
	v, err := stats.ParseView(view)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.Display.Limit
	}

	ctrl := popup.New(s.store, s.logger, popup.WithView(v), popup.WithLimit(limit))
	ctrl.Load(ctx)
	return ctrl, nil
}

// loadConfig resolves the config file from --config, then QUIPU_CONFIG, then
// the default path, and applies environment and flag overrides on top.
// With an injected store and no explicit config path, defaults are used and
// nothing is written to disk.
func loadConfig(globals *GlobalFlags, injected bool) (*config.Config, error) {
	path := globals.Config
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}

	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadOrCreateAt(path)
	case injected:
		cfg = config.DefaultConfig()
	default:
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)
	if globals.DBPath != "" {
		cfg.Storage.DBPath = globals.DBPath
	}
	return cfg, nil
}

// newLogger builds the structured logger. Logs go to stderr unless
// logging.file is set; an unopenable log file falls back to stderr.
func newLogger(cfg *config.Config, verbose bool) (*log.Logger, func() error, error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.level: %w", err)
	}
	if verbose {
		level = log.DebugLevel
	}

	opts := log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "quipu",
	}

	if cfg.Logging.File == "" {
		return log.NewWithOptions(os.Stderr, opts), func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger := log.NewWithOptions(os.Stderr, opts)
		logger.Warn("opening log file, logging to stderr", "path", cfg.Logging.File, "err", err)
		return logger, func() error { return nil }, nil
	}
	return log.NewWithOptions(f, opts), f.Close, nil
}

// openStore opens the database at dbPath, runs migrations, and returns a
// ready-to-use store and the underlying *sql.DB.
func openStore(dbPath, journalMode string) (*storage.SQLiteStore, *sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db).WithJournalMode(journalMode)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
