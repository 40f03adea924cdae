package sync

import (
	"context"

	"todosync/internal/domain/todo"
)

// Remote is the server-side collaborator. Implementations return the
// pkg/errors taxonomy: network errors when the server is unreachable,
// not-found for missing ids, validation for rejected input, server for
// 5xx responses.
type Remote interface {
	List(ctx context.Context) ([]todo.Item, error)
	Get(ctx context.Context, id string) (todo.Item, error)
	Create(ctx context.Context, text string) (todo.Item, error)
	Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error)
	// Toggle flips completion server-side; the caller never sends the
	// computed boolean.
	Toggle(ctx context.Context, id string) (todo.Item, error)
	Delete(ctx context.Context, id string) error
	DeleteCompleted(ctx context.Context) (int, error)
	Stats(ctx context.Context) (todo.Stats, error)
}

// Cache is the local persistence collaborator. Lookups by id must match
// either the canonical id or the legacy "_id" stored inside the record.
type Cache interface {
	ReadAll(ctx context.Context) ([]todo.Item, error)
	// WriteAll replaces the entire cache contents with the given list.
	WriteAll(ctx context.Context, items []todo.Item) error
	Upsert(ctx context.Context, item todo.Item) (todo.Item, error)
	Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error)
	// Delete reports (false, not-found) when no record matched.
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}
