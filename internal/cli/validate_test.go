package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/resql/internal/testutil"
)

func TestValidate_AllValid(t *testing.T) {
	root := testutil.WriteTree(t, shopQueries)

	stdout, _, err := executeCommand(t, "validate", root)
	require.NoError(t, err)
	assert.Equal(t, "✓ All 4 saved queries valid\n", stdout)
}

func TestValidate_SkippedFilesAreWarnings(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"shop/GET/status.sql": "SELECT 1",
		"shop/GET/empty.sql":  "",
		"shop/GET/bad.sql":    "SELECT 'unterminated",
	})

	stdout, _, err := executeCommand(t, "validate", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✗ 2 file(s) skipped, 1 saved queries loaded")
	assert.Contains(t, stdout, "  shop/GET/empty.sql [PARSE_FAILED]: template is empty")
	assert.Contains(t, stdout, "  shop/GET/bad.sql [PARSE_FAILED]: unterminated ' quote at offset 7")
}

func TestValidate_Strict(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"shop/GET/status.sql": "SELECT 1",
		"shop/GET/empty.sql":  "",
	})

	stdout, _, err := executeCommand(t, "validate", "--strict", root)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 skipped file(s)")
	assert.Contains(t, stdout, "shop/GET/empty.sql [PARSE_FAILED]")
}

func TestValidate_StrictPassesCleanTree(t *testing.T) {
	root := testutil.WriteTree(t, shopQueries)

	_, _, err := executeCommand(t, "validate", "--strict", root)
	require.NoError(t, err)
}

func TestValidate_InvalidSchema(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"shop/GET/orders.sql": "SELECT * FROM orders WHERE customer = :customer",
		"shop/GET/orders.cue": "customer: \n",
	})

	stdout, _, err := executeCommand(t, "--format", "json", "validate", root)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 0, resp.Data.Loaded)
	require.Len(t, resp.Data.Skipped, 1)
	assert.Equal(t, "shop/GET/orders.sql", resp.Data.Skipped[0].File)
	assert.Equal(t, "INVALID_SCHEMA", resp.Data.Skipped[0].Code)
}

func TestValidate_MissingDirectory(t *testing.T) {
	_, _, err := executeCommand(t, "validate", "/nonexistent/queries")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_VerboseGoesToStderr(t *testing.T) {
	root := testutil.WriteTree(t, shopQueries)

	stdout, stderr, err := executeCommand(t, "-v", "--format", "json", "validate", root)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Loaded 4 saved queries from")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}
