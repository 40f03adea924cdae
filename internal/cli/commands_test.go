package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"todosync/internal/cache"
	"todosync/internal/config"
	"todosync/internal/domain/todo"
	"todosync/internal/events"
	"todosync/internal/observability"
	"todosync/internal/repository/memory"
	"todosync/internal/rest"
	"todosync/internal/service"
)

// isolateEnv keeps the test away from the developer's real config file
// and environment overrides.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TODOSYNC_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("TODOSYNC_SERVER", "")
	t.Setenv("TODOSYNC_CACHE", "")
}

// newAPIServer runs the real server router over an in-memory store. The
// repository is returned so tests can read ids without parsing stdout.
func newAPIServer(t *testing.T) (*httptest.Server, *memory.Repository) {
	t.Helper()

	repo := memory.NewRepository()
	collector := observability.NewCollector("todosync_cli_test")
	svc := service.NewService(repo, events.NewNoopPublisher(), collector, zap.NewNop())

	cfg := &config.Config{
		Environment: config.Development,
		Server: config.Server{
			Port:           8080,
			RequestTimeout: 5 * time.Second,
		},
		CORS: config.CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		},
	}

	server := httptest.NewServer(rest.NewRouter(cfg, svc, collector, zap.NewNop()).Setup())
	t.Cleanup(server.Close)
	return server, repo
}

// runCLI executes one command invocation the way main does, with stdout
// and stderr captured.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func readCache(t *testing.T, path string) []todo.Item {
	t.Helper()

	store, err := cache.Open(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	items, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	return items
}

func serverItems(t *testing.T, repo *memory.Repository) []todo.Item {
	t.Helper()

	items, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	return items
}

func TestCLIOnline(t *testing.T) {
	t.Run("AddCreatesOnServerAndInCache", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		stdout, stderr, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", "buy milk")
		require.NoError(t, err)
		assert.Contains(t, stdout, "buy milk")
		assert.Empty(t, stderr)

		remote := serverItems(t, repo)
		require.Len(t, remote, 1)
		assert.Equal(t, "buy milk", remote[0].Text)

		cached := readCache(t, cachePath)
		require.Len(t, cached, 1)
		assert.Equal(t, remote[0].ID, cached[0].ID)
	})

	t.Run("ListShowsEveryTodo", func(t *testing.T) {
		isolateEnv(t)
		server, _ := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		for _, text := range []string{"write report", "review notes"} {
			_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", text)
			require.NoError(t, err)
		}

		stdout, stderr, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "write report")
		assert.Contains(t, stdout, "review notes")
		assert.Empty(t, stderr)
	})

	t.Run("ListWithNothingStored", func(t *testing.T) {
		isolateEnv(t)
		server, _ := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		stdout, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "No todos.")
	})

	t.Run("DoneTogglesBothWays", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", "call dentist")
		require.NoError(t, err)
		id := serverItems(t, repo)[0].ID

		stdout, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "done", id)
		require.NoError(t, err)
		assert.Contains(t, stdout, "completed")

		item, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, item.Completed)

		stdout, _, err = runCLI(t, "--server", server.URL, "--cache", cachePath, "done", id)
		require.NoError(t, err)
		assert.Contains(t, stdout, "reopened")

		item, err = repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, item.Completed)
	})

	t.Run("EditReplacesText", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", "reviw notes")
		require.NoError(t, err)
		id := serverItems(t, repo)[0].ID

		stdout, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "edit", id, "--text", "review notes")
		require.NoError(t, err)
		assert.Contains(t, stdout, "review notes")

		item, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "review notes", item.Text)
	})

	t.Run("RemoveDeletesEverywhere", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", "obsolete")
		require.NoError(t, err)
		id := serverItems(t, repo)[0].ID

		stdout, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "rm", id)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Removed "+id)

		assert.Empty(t, serverItems(t, repo))
		assert.Empty(t, readCache(t, cachePath))
	})

	t.Run("RemoveUnknownIDFails", func(t *testing.T) {
		isolateEnv(t)
		server, _ := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "rm", "does-not-exist")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to remove todo does-not-exist")
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})

	t.Run("ClearRemovesOnlyCompleted", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		for _, text := range []string{"keep me", "done soon", "keep me too"} {
			_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", text)
			require.NoError(t, err)
		}
		var doneID string
		for _, item := range serverItems(t, repo) {
			if item.Text == "done soon" {
				doneID = item.ID
			}
		}
		require.NotEmpty(t, doneID)
		_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "done", doneID)
		require.NoError(t, err)

		stdout, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "clear")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Removed 1 completed todo")

		remaining := serverItems(t, repo)
		require.Len(t, remaining, 2)
		for _, item := range remaining {
			assert.False(t, item.Completed)
		}
		assert.Len(t, readCache(t, cachePath), 2)
	})

	t.Run("OfflineFlagServesCacheAfterOnlineAdd", func(t *testing.T) {
		isolateEnv(t)
		server, _ := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		_, _, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", "survives offline")
		require.NoError(t, err)

		stdout, stderr, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "--offline", "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "survives offline")
		assert.Contains(t, stderr, "offline: showing locally cached todos")
	})
}

func TestCLIOffline(t *testing.T) {
	t.Run("FullLifecycleWithoutServer", func(t *testing.T) {
		isolateEnv(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")
		args := func(parts ...string) []string {
			return append([]string{"--offline", "--cache", cachePath}, parts...)
		}

		stdout, _, err := runCLI(t, args("add", "pack bags")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "pack bags")

		cached := readCache(t, cachePath)
		require.Len(t, cached, 1)
		id := cached[0].ID
		assert.True(t, strings.HasPrefix(id, "local-"), "offline ids are marked local, got %s", id)

		stdout, stderr, err := runCLI(t, args("list")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "pack bags")
		assert.Contains(t, stderr, "offline: showing locally cached todos")

		stdout, _, err = runCLI(t, args("done", id)...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "completed")

		cached = readCache(t, cachePath)
		require.Len(t, cached, 1)
		assert.True(t, cached[0].Completed)

		stdout, _, err = runCLI(t, args("edit", id, "--text", "pack suitcases")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "pack suitcases")

		stdout, _, err = runCLI(t, args("clear")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Removed 1 completed todo")
		assert.Empty(t, readCache(t, cachePath))
	})

	t.Run("RemoveUnknownIDFails", func(t *testing.T) {
		isolateEnv(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		_, _, err := runCLI(t, "--offline", "--cache", cachePath, "rm", "nope")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), "failed to remove todo nope")
	})

	t.Run("UnreachableServerDegradesToCache", func(t *testing.T) {
		isolateEnv(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		// Port 1 refuses straight away, so the startup probe fails fast
		// and the command falls back to the cache without --offline.
		stdout, stderr, err := runCLI(t, "--server", "http://127.0.0.1:1", "--cache", cachePath, "add", "written anyway")
		require.NoError(t, err)
		assert.Contains(t, stdout, "written anyway")
		assert.Contains(t, stderr, "offline")

		cached := readCache(t, cachePath)
		require.Len(t, cached, 1)
		assert.Equal(t, "written anyway", cached[0].Text)
	})
}

func TestCLIConfig(t *testing.T) {
	t.Run("ConfigFileSuppliesServerAndCache", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)

		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		cfgPath := filepath.Join(dir, "config.toml")
		content := fmt.Sprintf("server_url = %q\ncache_path = %q\n", server.URL, cachePath)
		require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
		t.Setenv("TODOSYNC_CONFIG", cfgPath)

		_, _, err := runCLI(t, "add", "from config file")
		require.NoError(t, err)

		remote := serverItems(t, repo)
		require.Len(t, remote, 1)
		assert.Equal(t, "from config file", remote[0].Text)
		assert.Len(t, readCache(t, cachePath), 1)
	})

	t.Run("EnvironmentSuppliesServer", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")
		t.Setenv("TODOSYNC_SERVER", server.URL)
		t.Setenv("TODOSYNC_CACHE", cachePath)

		_, _, err := runCLI(t, "add", "from environment")
		require.NoError(t, err)

		remote := serverItems(t, repo)
		require.Len(t, remote, 1)
		assert.Equal(t, "from environment", remote[0].Text)
	})

	t.Run("FlagOverridesEnvironment", func(t *testing.T) {
		isolateEnv(t)
		server, repo := newAPIServer(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")
		t.Setenv("TODOSYNC_SERVER", "http://127.0.0.1:1")

		_, stderr, err := runCLI(t, "--server", server.URL, "--cache", cachePath, "add", "flag wins")
		require.NoError(t, err)
		assert.Empty(t, stderr)
		require.Len(t, serverItems(t, repo), 1)
	})
}
