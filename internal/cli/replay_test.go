package cli

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/store"
)

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, err := runRoot(t, "", "replay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayMissingDatabase(t *testing.T) {
	_, err := runRoot(t, "", "replay", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := runRoot(t, "", "replay", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No matches found")

	out, err = runRoot(t, "", "--format", "json", "replay", "--db", dbPath)
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestReplayRecordedMatch(t *testing.T) {
	dbPath := recordedDB(t)
	id := listMatchesJSON(t, dbPath)[0].ID

	out, err := runRoot(t, "", "replay", "--db", dbPath, "--match", id)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Match: "+id)
	assert.Contains(t, out, "Rounds: 2")

	out, err = runRoot(t, "", "--format", "json", "replay", "--db", dbPath)
	require.NoError(t, err)
	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	assert.Equal(t, 1, resp.Data.TotalMatches)
}

func TestReplayDetectsTampering(t *testing.T) {
	dbPath := recordedDB(t)

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE rounds SET turn_count = 99 WHERE number = 1`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runRoot(t, "", "replay", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Match:")
	assert.Contains(t, out, "round 1 turn_count: recorded 99")
	assert.Contains(t, out, "✗ Determinism verification failed")

	out, err = runRoot(t, "", "--format", "json", "replay", "--db", dbPath)
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeMismatch, resp.Error.Code)
}

func TestReplayUnknownMatch(t *testing.T) {
	dbPath := recordedDB(t)
	_, err := runRoot(t, "", "replay", "--db", dbPath, "--match", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
