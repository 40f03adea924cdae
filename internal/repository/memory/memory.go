// Package memory provides an in-process Repository used in development
// and as the default provider when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"todosync/internal/domain/todo"
	appErrors "todosync/pkg/errors"
)

// Repository is a thread-safe in-memory item store.
type Repository struct {
	mu    sync.RWMutex
	items map[string]todo.Item
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		items: make(map[string]todo.Item),
	}
}

// FindAll returns all items ordered by creation time, oldest first.
func (r *Repository) FindAll(ctx context.Context) ([]todo.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]todo.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return items, nil
}

// FindByID returns the item with the given id.
func (r *Repository) FindByID(ctx context.Context, id string) (todo.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return todo.Item{}, appErrors.NewNotFound("todo not found: " + id)
	}
	return item, nil
}

// Save stores a new item, rejecting duplicate ids.
func (r *Repository) Save(ctx context.Context, item todo.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return appErrors.NewValidation("todo already exists: " + item.ID)
	}
	r.items[item.ID] = item
	return nil
}

// Update replaces an existing item.
func (r *Repository) Update(ctx context.Context, item todo.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return appErrors.NewNotFound("todo not found: " + item.ID)
	}
	r.items[item.ID] = item
	return nil
}

// Delete removes the item with the given id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return appErrors.NewNotFound("todo not found: " + id)
	}
	delete(r.items, id)
	return nil
}

// DeleteCompleted removes all completed items.
func (r *Repository) DeleteCompleted(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, item := range r.items {
		if item.Completed {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds for the in-memory store.
func (r *Repository) Ping(ctx context.Context) error {
	return nil
}
