// Package mocks provides mock implementations of repository interfaces for testing.
package mocks

import (
	"context"
	"sort"
	"sync"

	"todosync/internal/domain/todo"
	appErrors "todosync/pkg/errors"
)

// MockRepository is an in-memory Repository with configurable failures.
// Services are tested against it without a real database.
type MockRepository struct {
	mu    sync.RWMutex
	items map[string]todo.Item

	// For testing error scenarios
	shouldFailOn map[string]error
}

// NewMockRepository creates a new mock repository instance.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		items:        make(map[string]todo.Item),
		shouldFailOn: make(map[string]error),
	}
}

// SetError configures the mock to return an error for a specific method.
func (m *MockRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

// Seed stores items directly, bypassing Save validation.
func (m *MockRepository) Seed(items ...todo.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.ID] = item
	}
}

func (m *MockRepository) checkError(method string) error {
	if err, exists := m.shouldFailOn[method]; exists {
		return err
	}
	return nil
}

func (m *MockRepository) FindAll(ctx context.Context) ([]todo.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkError("FindAll"); err != nil {
		return nil, err
	}

	items := make([]todo.Item, 0, len(m.items))
	for _, item := range m.items {
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

func (m *MockRepository) FindByID(ctx context.Context, id string) (todo.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkError("FindByID"); err != nil {
		return todo.Item{}, err
	}

	item, exists := m.items[id]
	if !exists {
		return todo.Item{}, appErrors.NewNotFound("todo not found: " + id)
	}
	return item, nil
}

func (m *MockRepository) Save(ctx context.Context, item todo.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkError("Save"); err != nil {
		return err
	}

	if _, exists := m.items[item.ID]; exists {
		return appErrors.NewValidation("todo already exists: " + item.ID)
	}
	m.items[item.ID] = item
	return nil
}

func (m *MockRepository) Update(ctx context.Context, item todo.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkError("Update"); err != nil {
		return err
	}

	if _, exists := m.items[item.ID]; !exists {
		return appErrors.NewNotFound("todo not found: " + item.ID)
	}
	m.items[item.ID] = item
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkError("Delete"); err != nil {
		return err
	}

	if _, exists := m.items[id]; !exists {
		return appErrors.NewNotFound("todo not found: " + id)
	}
	delete(m.items, id)
	return nil
}

func (m *MockRepository) DeleteCompleted(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkError("DeleteCompleted"); err != nil {
		return 0, err
	}

	deleted := 0
	for id, item := range m.items {
		if item.Completed {
			delete(m.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockRepository) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checkError("Ping")
}
