package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"todosync/internal/domain/todo"
	"todosync/pkg/api"
	appErrors "todosync/pkg/errors"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path, zap.NewNop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

// testItem builds an item created at a fixed date with the given minute,
// so creation order in tests is explicit.
func testItem(t *testing.T, id, text string, minute int) todo.Item {
	t.Helper()
	item, err := todo.New(id, text, time.Date(2024, 3, 1, 10, minute, 0, 0, time.UTC))
	require.NoError(t, err)
	return item
}

// seedRawDocument inserts a row directly, bypassing normalization, to
// simulate records written by older clients.
func seedRawDocument(t *testing.T, store *Store, id, legacyID string, doc api.TodoDocument) {
	t.Helper()
	payload, err := json.Marshal(doc)
	require.NoError(t, err)
	_, err = store.db.Exec(upsertSQL, id, legacyID, string(payload), doc.CreatedAt.UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	t.Run("CreatesDatabaseFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := Open(path, zap.NewNop())
		require.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("AppliesPragmasAndSchemaVersion", func(t *testing.T) {
		store := openTestStore(t)

		var journalMode string
		require.NoError(t, store.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
		assert.Equal(t, "wal", journalMode)

		var version int
		require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
		assert.Equal(t, currentSchemaVersion, version)
	})

	t.Run("ReopeningKeepsData", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := Open(path, zap.NewNop())
		require.NoError(t, err)

		_, err = store.Upsert(context.Background(), testItem(t, "id-1", "persisted", 0))
		require.NoError(t, err)
		require.NoError(t, store.Close())

		reopened, err := Open(path, zap.NewNop())
		require.NoError(t, err)
		defer reopened.Close()

		items, err := reopened.ReadAll(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "persisted", items[0].Text)
	})
}

func TestReadAll(t *testing.T) {
	t.Run("EmptyCacheReturnsEmptySlice", func(t *testing.T) {
		store := openTestStore(t)

		items, err := store.ReadAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("ReturnsItemsInCreationOrder", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		for _, item := range []todo.Item{
			testItem(t, "id-b", "second", 2),
			testItem(t, "id-a", "first", 1),
			testItem(t, "id-c", "third", 3),
		} {
			_, err := store.Upsert(ctx, item)
			require.NoError(t, err)
		}

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "first", items[0].Text)
		assert.Equal(t, "second", items[1].Text)
		assert.Equal(t, "third", items[2].Text)
	})

	t.Run("DropsCorruptAndUnidentifiableRows", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		_, err := store.Upsert(ctx, testItem(t, "id-good", "survivor", 1))
		require.NoError(t, err)

		_, err = store.db.Exec(upsertSQL, "id-corrupt", "", `{not json`, "2024-03-01T10:02:00Z")
		require.NoError(t, err)
		_, err = store.db.Exec(upsertSQL, "id-orphan", "", `{"text":"no ids"}`, "2024-03-01T10:03:00Z")
		require.NoError(t, err)

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "survivor", items[0].Text)
	})
}

func TestWriteAll(t *testing.T) {
	t.Run("ReplacesExistingContents", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		_, err := store.Upsert(ctx, testItem(t, "id-old", "stale", 1))
		require.NoError(t, err)

		err = store.WriteAll(ctx, []todo.Item{
			testItem(t, "id-a", "fresh a", 2),
			testItem(t, "id-b", "fresh b", 3),
		})
		require.NoError(t, err)

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "fresh a", items[0].Text)
		assert.Equal(t, "fresh b", items[1].Text)
	})

	t.Run("EmptyListClearsCache", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		_, err := store.Upsert(ctx, testItem(t, "id-1", "doomed", 1))
		require.NoError(t, err)

		require.NoError(t, store.WriteAll(ctx, nil))

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestUpsert(t *testing.T) {
	t.Run("InsertsNewRecord", func(t *testing.T) {
		store := openTestStore(t)

		item, err := store.Upsert(context.Background(), testItem(t, "id-1", "new", 1))
		require.NoError(t, err)
		assert.Equal(t, "id-1", item.ID)

		items, err := store.ReadAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("ReplacesExistingRecordByID", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		original := testItem(t, "id-1", "before", 1)
		_, err := store.Upsert(ctx, original)
		require.NoError(t, err)

		changed := original
		changed.Text = "after"
		_, err = store.Upsert(ctx, changed)
		require.NoError(t, err)

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "after", items[0].Text)
	})

	t.Run("StoresBothIdentifierSpellings", func(t *testing.T) {
		store := openTestStore(t)

		_, err := store.Upsert(context.Background(), testItem(t, "id-1", "dual", 1))
		require.NoError(t, err)

		var raw string
		require.NoError(t, store.db.QueryRow("SELECT document FROM todos WHERE id = ?", "id-1").Scan(&raw))

		var fields map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &fields))
		assert.Equal(t, "id-1", fields["id"])
		assert.Equal(t, "id-1", fields["_id"])
	})
}

func TestUpdate(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("PatchesTextAndBumpsUpdatedAt", func(t *testing.T) {
		store := openTestStore(t, WithClock(func() time.Time { return now }))
		ctx := context.Background()

		_, err := store.Upsert(ctx, testItem(t, "id-1", "before", 1))
		require.NoError(t, err)

		text := "after"
		updated, err := store.Update(ctx, "id-1", todo.Patch{Text: &text})
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Text)
		assert.Equal(t, now, updated.UpdatedAt)
	})

	t.Run("PatchesCompleted", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		_, err := store.Upsert(ctx, testItem(t, "id-1", "task", 1))
		require.NoError(t, err)

		completed := true
		updated, err := store.Update(ctx, "id-1", todo.Patch{Completed: &completed})
		require.NoError(t, err)
		assert.True(t, updated.Completed)

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Completed)
	})

	t.Run("FindsRecordByLegacySpelling", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		seedRawDocument(t, store, "canonical-1", "legacy-1", api.TodoDocument{
			LegacyID:  "legacy-1",
			ID:        "canonical-1",
			Text:      "old client record",
			CreatedAt: created,
			UpdatedAt: created,
		})

		text := "updated via legacy id"
		updated, err := store.Update(ctx, "legacy-1", todo.Patch{Text: &text})
		require.NoError(t, err)
		assert.Equal(t, "canonical-1", updated.ID)
		assert.Equal(t, text, updated.Text)

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("MissingIDIsNotFound", func(t *testing.T) {
		store := openTestStore(t)

		text := "whatever"
		_, err := store.Update(context.Background(), "ghost", todo.Patch{Text: &text})
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("EmptyTextPatchIsValidationError", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		_, err := store.Upsert(ctx, testItem(t, "id-1", "kept", 1))
		require.NoError(t, err)

		blank := "   "
		_, err = store.Update(ctx, "id-1", todo.Patch{Text: &blank})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "kept", items[0].Text)
	})
}

func TestDelete(t *testing.T) {
	t.Run("RemovesRecord", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		_, err := store.Upsert(ctx, testItem(t, "id-1", "doomed", 1))
		require.NoError(t, err)

		removed, err := store.Delete(ctx, "id-1")
		require.NoError(t, err)
		assert.True(t, removed)

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("MatchesLegacySpelling", func(t *testing.T) {
		store := openTestStore(t)

		created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		seedRawDocument(t, store, "canonical-1", "legacy-1", api.TodoDocument{
			LegacyID:  "legacy-1",
			ID:        "canonical-1",
			Text:      "old client record",
			CreatedAt: created,
			UpdatedAt: created,
		})

		removed, err := store.Delete(context.Background(), "legacy-1")
		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("MissingIDIsNotFound", func(t *testing.T) {
		store := openTestStore(t)

		removed, err := store.Delete(context.Background(), "ghost")
		require.Error(t, err)
		assert.False(t, removed)
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestClear(t *testing.T) {
	t.Run("EmptiesTheCache", func(t *testing.T) {
		store := openTestStore(t)
		ctx := context.Background()

		for i, text := range []string{"one", "two"} {
			_, err := store.Upsert(ctx, testItem(t, text, text, i))
			require.NoError(t, err)
		}

		require.NoError(t, store.Clear(ctx))

		items, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
