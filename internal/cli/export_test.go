package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	isolateEnv(t)
	source, sourceRepo := newAPIServer(t)
	sourceCache := filepath.Join(t.TempDir(), "source.db")
	exportPath := filepath.Join(t.TempDir(), "todos.json")

	for _, text := range []string{"write report", "review notes"} {
		_, _, err := runCLI(t, "--server", source.URL, "--cache", sourceCache, "add", text)
		require.NoError(t, err)
	}
	var doneID string
	for _, item := range serverItems(t, sourceRepo) {
		if item.Text == "write report" {
			doneID = item.ID
		}
	}
	require.NotEmpty(t, doneID)
	_, _, err := runCLI(t, "--server", source.URL, "--cache", sourceCache, "done", doneID)
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "--server", source.URL, "--cache", sourceCache, "export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 2 todo(s) to "+exportPath)

	// The file on disk is the versioned wire format.
	payload, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var doc exportDocument
	require.NoError(t, json.Unmarshal(payload, &doc))
	assert.Equal(t, exportVersion, doc.Version)
	require.Len(t, doc.Todos, 2)

	// Importing into a fresh server rebuilds the list, completion state
	// included, under new ids.
	target, targetRepo := newAPIServer(t)
	targetCache := filepath.Join(t.TempDir(), "target.db")

	stdout, _, err = runCLI(t, "--server", target.URL, "--cache", targetCache, "import", exportPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Imported 2 of 2 todo(s) from "+exportPath)

	imported := serverItems(t, targetRepo)
	require.Len(t, imported, 2)
	byText := map[string]bool{}
	for _, item := range imported {
		byText[item.Text] = item.Completed
	}
	assert.True(t, byText["write report"])
	assert.False(t, byText["review notes"])
}

func TestImportValidation(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "import.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("RejectsFileMissingVersion", func(t *testing.T) {
		isolateEnv(t)
		path := writeFile(t, `{"todos": []}`)

		_, _, err := runCLI(t, "--offline", "import", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid export file")
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("RejectsTodoWithoutText", func(t *testing.T) {
		isolateEnv(t)
		path := writeFile(t, `{"version": 1, "todos": [{"completed": true}]}`)

		_, _, err := runCLI(t, "--offline", "import", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid export file")
	})

	t.Run("RejectsFileThatIsNotJSON", func(t *testing.T) {
		isolateEnv(t)
		path := writeFile(t, `not json at all`)

		_, _, err := runCLI(t, "--offline", "import", path)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("SkipsEntriesTheSchemaAllowsButTheDomainRejects", func(t *testing.T) {
		// Whitespace-only text satisfies the schema's minLength but is
		// rejected once normalized, so it is skipped with a warning.
		isolateEnv(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")
		path := writeFile(t, `{"version": 1, "todos": [{"text": "   "}, {"text": "real task"}]}`)

		stdout, stderr, err := runCLI(t, "--offline", "--cache", cachePath, "import", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Imported 1 of 2 todo(s)")
		assert.Contains(t, stderr, "skipping")

		cached := readCache(t, cachePath)
		require.Len(t, cached, 1)
		assert.Equal(t, "real task", cached[0].Text)
	})
}
