package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_EmptyDB(t *testing.T) {
	cmd := &StatusCommand{globals: testGlobals(t), version: "dev", store: openTestStore(t)}

	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)

	assert.Contains(t, output, "Quipu Status")
	assert.Contains(t, output, "Version:       dev")
	assert.Contains(t, output, "Record:        none stored")
	assert.Contains(t, output, "Sites:         0")
	assert.Contains(t, output, "Server:")
}

func TestStatus_WithData(t *testing.T) {
	store := openTestStore(t)
	seedRecord(t, store)
	require.NoError(t, store.RecordAction(context.Background(), "import", "backup.json"))

	cmd := &StatusCommand{globals: testGlobals(t), version: "dev", store: store}

	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)

	assert.Contains(t, output, "Sites:         2")
	assert.Contains(t, output, "Days tracked:  2")
	assert.Contains(t, output, "Today      25m")
	assert.Contains(t, output, "All Time   2h 5m")
	assert.Contains(t, output, "Recent Actions:")
	assert.Contains(t, output, "backup.json")
}

func TestStatus_JSONOutput(t *testing.T) {
	store := openTestStore(t)
	seedRecord(t, store)

	globals := testGlobals(t)
	globals.JSON = true
	globals.DBPath = filepath.Join(t.TempDir(), "quipu.db")
	cmd := &StatusCommand{globals: globals, version: "dev", store: store}

	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)

	var result statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output should be valid JSON")

	assert.Equal(t, "dev", result.Version)
	assert.Equal(t, globals.DBPath, result.DatabasePath)
	assert.True(t, result.RecordStored)
	assert.Greater(t, result.RecordBytes, int64(0))
	assert.Equal(t, 2, result.Sites)
	assert.Equal(t, int64(1_500_000), result.Totals["today"])
	assert.Equal(t, int64(7_500_000), result.Totals["all"])
	assert.NotNil(t, result.RecentActions)
}

func TestStatus_OnDiskDatabase(t *testing.T) {
	globals := testGlobals(t)
	globals.DBPath = filepath.Join(t.TempDir(), "nested", "quipu.db")
	globals.JSON = true

	cmd := &StatusCommand{globals: globals, version: "dev"}

	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)

	var result statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, globals.DBPath, result.DatabasePath)
	assert.False(t, result.RecordStored)

	_, statErr := os.Stat(globals.DBPath)
	assert.NoError(t, statErr, "database file should be created")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
	assert.Equal(t, "1.0 GB", formatBytes(1<<30))
}
