package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func runValidateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidSettings(t *testing.T) {
	out, err := runValidateCmd(t, "text", filepath.Join("..", "config", "testdata", "classic.cue"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Settings valid")
}

func TestValidateValidSettingsJSON(t *testing.T) {
	out, err := runValidateCmd(t, "json", filepath.Join("..", "config", "testdata", "classic.cue"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateNonExistentFile(t *testing.T) {
	out, err := runValidateCmd(t, "text", "/nonexistent/settings.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestValidateSchemaError(t *testing.T) {
	path := writeSettings(t, "players: 2\nboardSize: 99\n")

	out, err := runValidateCmd(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, ErrCodeSettings)
}

func TestValidateCrossFieldErrors(t *testing.T) {
	path := writeSettings(t, "boardSize: 3\nwinLength: 5\naiPlayers: [4]\n")

	out, err := runValidateCmd(t, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)

	codes := make([]string, len(resp.Data.Errors))
	for i, e := range resp.Data.Errors {
		codes[i] = e.Code
	}
	assert.Equal(t, []string{"E201", "E203"}, codes)
	assert.Equal(t, "E201", resp.Error.Code)
}

func TestValidateMissingArgs(t *testing.T) {
	_, err := runValidateCmd(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
