package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"todosync/internal/domain/todo"
	appErrors "todosync/pkg/errors"
)

// fakeRemote is an in-memory stand-in for the server with configurable
// failures per method.
type fakeRemote struct {
	mu     sync.Mutex
	items  []todo.Item
	nextID int

	shouldFailOn map[string]error
	calls        map[string]int

	// createReturns, when set, is returned verbatim by Create without
	// touching the stored list.
	createReturns *todo.Item
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		shouldFailOn: make(map[string]error),
		calls:        make(map[string]int),
	}
}

func (f *fakeRemote) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shouldFailOn[method] = err
}

func (f *fakeRemote) ClearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shouldFailOn = make(map[string]error)
}

func (f *fakeRemote) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRemote) Seed(items ...todo.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, items...)
}

func (f *fakeRemote) checkError(method string) error {
	f.calls[method]++
	if err, exists := f.shouldFailOn[method]; exists {
		return err
	}
	return nil
}

func (f *fakeRemote) List(ctx context.Context) ([]todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("List"); err != nil {
		return nil, err
	}
	out := make([]todo.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeRemote) Get(ctx context.Context, id string) (todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Get"); err != nil {
		return todo.Item{}, err
	}
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return todo.Item{}, appErrors.NewNotFound("todo not found: " + id)
}

func (f *fakeRemote) Create(ctx context.Context, text string) (todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Create"); err != nil {
		return todo.Item{}, err
	}
	if f.createReturns != nil {
		return *f.createReturns, nil
	}

	f.nextID++
	item, err := todo.New(fmt.Sprintf("srv-%d", f.nextID), text, time.Now())
	if err != nil {
		return todo.Item{}, err
	}
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeRemote) Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Update"); err != nil {
		return todo.Item{}, err
	}
	for i, item := range f.items {
		if item.ID == id {
			updated, err := item.Apply(patch, time.Now())
			if err != nil {
				return todo.Item{}, err
			}
			f.items[i] = updated
			return updated, nil
		}
	}
	return todo.Item{}, appErrors.NewNotFound("todo not found: " + id)
}

func (f *fakeRemote) Toggle(ctx context.Context, id string) (todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Toggle"); err != nil {
		return todo.Item{}, err
	}
	for i, item := range f.items {
		if item.ID == id {
			toggled := item.Toggled(time.Now())
			f.items[i] = toggled
			return toggled, nil
		}
	}
	return todo.Item{}, appErrors.NewNotFound("todo not found: " + id)
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Delete"); err != nil {
		return err
	}
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return appErrors.NewNotFound("todo not found: " + id)
}

func (f *fakeRemote) DeleteCompleted(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("DeleteCompleted"); err != nil {
		return 0, err
	}
	retained := make([]todo.Item, 0, len(f.items))
	for _, item := range f.items {
		if !item.Completed {
			retained = append(retained, item)
		}
	}
	deleted := len(f.items) - len(retained)
	f.items = retained
	return deleted, nil
}

func (f *fakeRemote) Stats(ctx context.Context) (todo.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Stats"); err != nil {
		return todo.Stats{}, err
	}
	return todo.ComputeStats(f.items), nil
}

// fakeCache is an in-memory Cache with configurable failures per method.
type fakeCache struct {
	mu    sync.Mutex
	items []todo.Item

	shouldFailOn map[string]error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		shouldFailOn: make(map[string]error),
	}
}

func (f *fakeCache) SetError(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shouldFailOn[method] = err
}

func (f *fakeCache) ClearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shouldFailOn = make(map[string]error)
}

func (f *fakeCache) Seed(items ...todo.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, items...)
}

func (f *fakeCache) Contents() []todo.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]todo.Item, len(f.items))
	copy(out, f.items)
	return out
}

func (f *fakeCache) checkError(method string) error {
	if err, exists := f.shouldFailOn[method]; exists {
		return err
	}
	return nil
}

func (f *fakeCache) ReadAll(ctx context.Context) ([]todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("ReadAll"); err != nil {
		return nil, err
	}
	out := make([]todo.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCache) WriteAll(ctx context.Context, items []todo.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("WriteAll"); err != nil {
		return err
	}
	f.items = make([]todo.Item, len(items))
	copy(f.items, items)
	return nil
}

func (f *fakeCache) Upsert(ctx context.Context, item todo.Item) (todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Upsert"); err != nil {
		return todo.Item{}, err
	}
	for i := range f.items {
		if f.items[i].ID == item.ID {
			f.items[i] = item
			return item, nil
		}
	}
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeCache) Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Update"); err != nil {
		return todo.Item{}, err
	}
	for i, item := range f.items {
		if item.ID == id {
			updated, err := item.Apply(patch, time.Now())
			if err != nil {
				return todo.Item{}, err
			}
			f.items[i] = updated
			return updated, nil
		}
	}
	return todo.Item{}, appErrors.NewNotFound("todo not cached: " + id)
}

func (f *fakeCache) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Delete"); err != nil {
		return false, err
	}
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, appErrors.NewNotFound("todo not cached: " + id)
}

func (f *fakeCache) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkError("Clear"); err != nil {
		return err
	}
	f.items = nil
	return nil
}
