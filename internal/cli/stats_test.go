package cli

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// The stats block is plain text on purpose, so its exact bytes can be
// pinned with golden files.
func TestStatsGolden(t *testing.T) {
	t.Run("Online", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		for _, text := range []string{"write report", "review notes", "file expenses"} {
			_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", text)
			require.NoError(t, err)
		}
		id := serverItems(t, repo)[0].ID
		_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "done", id)
		require.NoError(t, err)

		stdout, stderr, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "stats")
		require.NoError(t, err)
		require.Empty(t, stderr)

		g := goldie.New(t)
		g.Assert(t, "stats_online", []byte(stdout))
	})

	t.Run("Offline", func(t *testing.T) {
		isolateEnv(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		for _, text := range []string{"pack bags", "book taxi"} {
			_, _, err := runCLI(t, "--offline", "--cache", cachePath, "add", text)
			require.NoError(t, err)
		}
		id := readCache(t, cachePath)[0].ID
		_, _, err := runCLI(t, "--offline", "--cache", cachePath, "done", id)
		require.NoError(t, err)

		stdout, _, err := runCLI(t, "--offline", "--cache", cachePath, "stats")
		require.NoError(t, err)

		g := goldie.New(t)
		g.Assert(t, "stats_offline", []byte(stdout))
	})
}
