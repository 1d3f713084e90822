package cli

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/quipu/internal/stats"
	"github.com/runnerr0/quipu/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stdout, fn)
}

// captureStderr captures stderr during fn execution and returns it as a string.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stderr, fn)
}

func capture(t *testing.T, target **os.File, fn func()) string {
	t.Helper()
	old := *target
	r, w, err := os.Pipe()
	require.NoError(t, err)
	*target = w

	fn()

	w.Close()
	*target = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// openTestStore creates a migrated in-memory store for testing.
func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	runner := storage.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// testGlobals points the config at a fresh temp file so tests never read or
// write the user's config.
func testGlobals(t *testing.T) *GlobalFlags {
	t.Helper()
	return &GlobalFlags{Config: filepath.Join(t.TempDir(), "config.yaml")}
}

// seedRecord stores a record with two sites, one of them active today.
func seedRecord(t *testing.T, store storage.Store) string {
	t.Helper()
	now := time.Now()
	old := now.AddDate(0, 0, -30)
	raw := fmt.Sprintf(`{"sites":{"github.com":{"totalTime":7200000,"visits":10,"favicon":"https://github.com/favicon.ico"},"example.org":{"totalTime":300000,"visits":3}},"dailyStats":{%q:{"github.com":{"time":1500000,"visits":2}},%q:{"example.org":{"time":300000,"visits":3}}}}`,
		stats.DayKey(now), stats.DayKey(old))
	require.NoError(t, store.Set(context.Background(), storage.RecordKey, []byte(raw)))
	return raw
}
