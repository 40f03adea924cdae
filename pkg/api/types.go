package api

import "time"

// TodoDocument is the wire representation of a todo item. The document
// store this API grew out of assigned identifiers under "_id"; both
// spellings are emitted so legacy readers keep working, and either one is
// accepted on ingress.
type TodoDocument struct {
	LegacyID  string    `json:"_id,omitempty"`
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTodoRequest represents the request to create a todo
type CreateTodoRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// UpdateTodoRequest represents a partial update; omitted fields are untouched
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty" validate:"omitempty,max=500"`
	Completed *bool   `json:"completed,omitempty"`
}

// StatsResponse represents the derived item counts
type StatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// DeleteCompletedResponse represents the response for the bulk delete
type DeleteCompletedResponse struct {
	DeletedCount int `json:"deletedCount"`
}

// HealthResponse represents the health and readiness check payload
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is a standardized error message for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
