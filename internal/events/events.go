// Package events defines the domain events emitted when todos change and
// the publisher that delivers them to EventBridge.
package events

import (
	"time"

	"todosync/internal/domain/todo"
)

// SourceAPI identifies events originating from the API service.
const SourceAPI = "todosync.api"

// Event types.
const (
	TypeTodoCreated  = "todo.created"
	TypeTodoUpdated  = "todo.updated"
	TypeTodoToggled  = "todo.toggled"
	TypeTodoDeleted  = "todo.deleted"
	TypeTodosCleared = "todos.cleared"
)

// DomainEvent is implemented by every event in the system.
type DomainEvent interface {
	GetEventType() string
	GetAggregateID() string
	GetTimestamp() time.Time
}

// BaseEvent carries the fields common to all events.
type BaseEvent struct {
	AggregateID string    `json:"aggregateId"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

func newBaseEvent(aggregateID, eventType string) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   time.Now(),
		Version:     1,
	}
}

// TodoCreatedEvent is emitted when a new todo is stored.
type TodoCreatedEvent struct {
	BaseEvent
	TodoID    string `json:"todoId"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewTodoCreated creates a created event for the given item.
func NewTodoCreated(item todo.Item) *TodoCreatedEvent {
	return &TodoCreatedEvent{
		BaseEvent: newBaseEvent(item.ID, TypeTodoCreated),
		TodoID:    item.ID,
		Text:      item.Text,
		Completed: item.Completed,
	}
}

// TodoUpdatedEvent is emitted when a todo's fields change.
type TodoUpdatedEvent struct {
	BaseEvent
	TodoID    string `json:"todoId"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewTodoUpdated creates an updated event for the given item.
func NewTodoUpdated(item todo.Item) *TodoUpdatedEvent {
	return &TodoUpdatedEvent{
		BaseEvent: newBaseEvent(item.ID, TypeTodoUpdated),
		TodoID:    item.ID,
		Text:      item.Text,
		Completed: item.Completed,
	}
}

// TodoToggledEvent is emitted when a todo's completion flips.
type TodoToggledEvent struct {
	BaseEvent
	TodoID    string `json:"todoId"`
	Completed bool   `json:"completed"`
}

// NewTodoToggled creates a toggled event for the given item.
func NewTodoToggled(item todo.Item) *TodoToggledEvent {
	return &TodoToggledEvent{
		BaseEvent: newBaseEvent(item.ID, TypeTodoToggled),
		TodoID:    item.ID,
		Completed: item.Completed,
	}
}

// TodoDeletedEvent is emitted when a todo is removed.
type TodoDeletedEvent struct {
	BaseEvent
	TodoID string `json:"todoId"`
}

// NewTodoDeleted creates a deleted event for the given id.
func NewTodoDeleted(id string) *TodoDeletedEvent {
	return &TodoDeletedEvent{
		BaseEvent: newBaseEvent(id, TypeTodoDeleted),
		TodoID:    id,
	}
}

// TodosClearedEvent is emitted when completed todos are bulk deleted.
type TodosClearedEvent struct {
	BaseEvent
	DeletedCount int `json:"deletedCount"`
}

// NewTodosCleared creates a cleared event reporting how many were removed.
func NewTodosCleared(deletedCount int) *TodosClearedEvent {
	return &TodosClearedEvent{
		BaseEvent:    newBaseEvent("todos", TypeTodosCleared),
		DeletedCount: deletedCount,
	}
}
