// Package service provides the business logic for todo management.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todosync/internal/domain/todo"
	"todosync/internal/events"
	"todosync/internal/observability"
	"todosync/internal/repository"
	appErrors "todosync/pkg/errors"
)

// Service defines the todo business operations exposed over HTTP.
type Service interface {
	// List returns all todos, oldest first.
	List(ctx context.Context) ([]todo.Item, error)

	// Get returns a single todo by id.
	Get(ctx context.Context, id string) (todo.Item, error)

	// Create stores a new todo with the given text.
	Create(ctx context.Context, text string) (todo.Item, error)

	// Update applies a partial update to an existing todo.
	Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error)

	// Toggle flips a todo's completion state.
	Toggle(ctx context.Context, id string) (todo.Item, error)

	// Delete removes a todo by id.
	Delete(ctx context.Context, id string) error

	// DeleteCompleted removes all completed todos and reports the count.
	DeleteCompleted(ctx context.Context) (int, error)

	// Stats returns total, completed and pending counts.
	Stats(ctx context.Context) (todo.Stats, error)

	// Ready reports whether the backing store is reachable.
	Ready(ctx context.Context) error
}

// service implements the Service interface with concrete business logic.
type service struct {
	repo      repository.Repository
	publisher events.Publisher
	metrics   *observability.Collector
	logger    *zap.Logger
}

// NewService creates a todo service with the provided dependencies.
func NewService(repo repository.Repository, publisher events.Publisher, metrics *observability.Collector, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *service) List(ctx context.Context) ([]todo.Item, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) Get(ctx context.Context, id string) (todo.Item, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, text string) (todo.Item, error) {
	item, err := todo.New(uuid.NewString(), text, time.Now().UTC())
	if err != nil {
		return todo.Item{}, err
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return todo.Item{}, err
	}

	s.metrics.TodosCreated.Inc()
	s.publish(ctx, events.NewTodoCreated(item))

	s.logger.Info("todo created",
		zap.String("todo_id", item.ID),
		zap.Int("text_length", len(item.Text)))
	return item, nil
}

func (s *service) Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error) {
	if patch.IsZero() {
		return todo.Item{}, appErrors.NewValidation("no fields to update")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return todo.Item{}, err
	}

	updated, err := existing.Apply(patch, time.Now().UTC())
	if err != nil {
		return todo.Item{}, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return todo.Item{}, err
	}

	s.publish(ctx, events.NewTodoUpdated(updated))
	return updated, nil
}

func (s *service) Toggle(ctx context.Context, id string) (todo.Item, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return todo.Item{}, err
	}

	toggled := existing.Toggled(time.Now().UTC())
	if err := s.repo.Update(ctx, toggled); err != nil {
		return todo.Item{}, err
	}

	s.metrics.TodosToggled.Inc()
	s.publish(ctx, events.NewTodoToggled(toggled))

	s.logger.Debug("todo toggled",
		zap.String("todo_id", toggled.ID),
		zap.Bool("completed", toggled.Completed))
	return toggled, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.TodosDeleted.Inc()
	s.publish(ctx, events.NewTodoDeleted(id))

	s.logger.Info("todo deleted", zap.String("todo_id", id))
	return nil
}

func (s *service) DeleteCompleted(ctx context.Context) (int, error) {
	deleted, err := s.repo.DeleteCompleted(ctx)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.metrics.TodosDeleted.Add(float64(deleted))
		s.publish(ctx, events.NewTodosCleared(deleted))
	}

	s.logger.Info("completed todos cleared", zap.Int("count", deleted))
	return deleted, nil
}

func (s *service) Stats(ctx context.Context) (todo.Stats, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return todo.Stats{}, err
	}
	return todo.ComputeStats(items), nil
}

func (s *service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// publish delivers an event without failing the operation. Persistence is
// the source of truth; an undelivered event is a warning, not an error.
func (s *service) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventsFailed.Inc()
		s.logger.Warn("event publish failed",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err))
		return
	}
	s.metrics.EventsPublished.Inc()
}
