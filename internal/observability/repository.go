package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"todosync/internal/domain/todo"
	"todosync/internal/repository"
)

// InstrumentedRepository decorates a Repository with operation metrics and
// trace spans. The wrapped interface is unchanged, so the service layer
// stays unaware of instrumentation.
type InstrumentedRepository struct {
	inner    repository.Repository
	metrics  *Collector
	tracer   trace.Tracer
	provider string
}

// NewInstrumentedRepository wraps a repository. The provider label tells
// memory and dynamodb apart in the exported metrics.
func NewInstrumentedRepository(inner repository.Repository, metrics *Collector, provider string) *InstrumentedRepository {
	return &InstrumentedRepository{
		inner:    inner,
		metrics:  metrics,
		tracer:   otel.Tracer("todosync/repository"),
		provider: provider,
	}
}

// observe records one operation in the collector and closes the span.
func (r *InstrumentedRepository) observe(span trace.Span, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}

	r.metrics.RepositoryOperations.WithLabelValues(operation, r.provider, status).Inc()
	r.metrics.RepositoryDuration.WithLabelValues(operation, r.provider).Observe(time.Since(start).Seconds())
	span.End()
}

func (r *InstrumentedRepository) FindAll(ctx context.Context) ([]todo.Item, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository.FindAll")

	items, err := r.inner.FindAll(ctx)
	span.SetAttributes(attribute.Int("todo.count", len(items)))
	r.observe(span, "find_all", start, err)
	return items, err
}

func (r *InstrumentedRepository) FindByID(ctx context.Context, id string) (todo.Item, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(attribute.String("todo.id", id)))

	item, err := r.inner.FindByID(ctx, id)
	r.observe(span, "find_by_id", start, err)
	return item, err
}

func (r *InstrumentedRepository) Save(ctx context.Context, item todo.Item) error {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository.Save",
		trace.WithAttributes(attribute.String("todo.id", item.ID)))

	err := r.inner.Save(ctx, item)
	r.observe(span, "save", start, err)
	return err
}

func (r *InstrumentedRepository) Update(ctx context.Context, item todo.Item) error {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository.Update",
		trace.WithAttributes(attribute.String("todo.id", item.ID)))

	err := r.inner.Update(ctx, item)
	r.observe(span, "update", start, err)
	return err
}

func (r *InstrumentedRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.String("todo.id", id)))

	err := r.inner.Delete(ctx, id)
	r.observe(span, "delete", start, err)
	return err
}

func (r *InstrumentedRepository) DeleteCompleted(ctx context.Context) (int, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository.DeleteCompleted")

	deleted, err := r.inner.DeleteCompleted(ctx)
	span.SetAttributes(attribute.Int("todo.deleted", deleted))
	r.observe(span, "delete_completed", start, err)
	return deleted, err
}

func (r *InstrumentedRepository) Ping(ctx context.Context) error {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository.Ping")

	err := r.inner.Ping(ctx)
	r.observe(span, "ping", start, err)
	return err
}
