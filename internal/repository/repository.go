// Package repository defines the persistence boundary for todo items.
// Implementations live in subpackages: memory for development and tests,
// ddb for DynamoDB.
package repository

import (
	"context"

	"todosync/internal/domain/todo"
)

// Repository stores todo items on the server side.
//
// Implementations return typed errors from pkg/errors: FindByID, Update and
// Delete return a not-found error when no item has the given id, Save
// returns a validation error when the id is already taken.
type Repository interface {
	// FindAll returns every stored item ordered by creation time.
	FindAll(ctx context.Context) ([]todo.Item, error)

	// FindByID returns the item with the given id.
	FindByID(ctx context.Context, id string) (todo.Item, error)

	// Save stores a new item.
	Save(ctx context.Context, item todo.Item) error

	// Update replaces an existing item.
	Update(ctx context.Context, item todo.Item) error

	// Delete removes the item with the given id.
	Delete(ctx context.Context, id string) error

	// DeleteCompleted removes all completed items and returns how many
	// were deleted.
	DeleteCompleted(ctx context.Context) (int, error)

	// Ping verifies the underlying store is reachable.
	Ping(ctx context.Context) error
}
