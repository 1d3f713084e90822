package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/quipu/internal/popup"
)

type exportFile struct {
	ExportDate string          `json:"exportDate"`
	Data       json.RawMessage `json:"data"`
}

func TestExport_WritesFileToDir(t *testing.T) {
	store := openTestStore(t)
	raw := seedRecord(t, store)
	dir := t.TempDir()

	cmd := &ExportCommand{Dir: dir, globals: testGlobals(t), store: store}

	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)
	assert.Contains(t, output, "Exported to ")

	matches, err := filepath.Glob(filepath.Join(dir, popup.ExportPrefix+"*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	var env exportFile
	require.NoError(t, json.Unmarshal(data, &env))
	assert.NotEmpty(t, env.ExportDate)
	assert.JSONEq(t, raw, string(env.Data))

	actions, err := store.RecentActions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "export", actions[0].Action)
}

func TestExport_Stdout(t *testing.T) {
	store := openTestStore(t)
	raw := seedRecord(t, store)

	cmd := &ExportCommand{Stdout: true, globals: testGlobals(t), store: store}

	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)

	var env exportFile
	require.NoError(t, json.Unmarshal([]byte(output), &env))
	assert.JSONEq(t, raw, string(env.Data))
	assert.True(t, strings.HasSuffix(env.ExportDate, "Z"))
}

func TestExport_JSONOutput(t *testing.T) {
	store := openTestStore(t)
	globals := testGlobals(t)
	globals.JSON = true

	cmd := &ExportCommand{Dir: t.TempDir(), globals: globals, store: store}

	var err error
	output := captureOutput(t, func() { err = cmd.Execute(nil) })
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, true, result["exported"])
	assert.Contains(t, result["path"], popup.ExportPrefix)
}
