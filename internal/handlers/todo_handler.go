package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"todosync/internal/domain/todo"
	"todosync/internal/service"
	"todosync/pkg/api"
)

// TodoHandler handles todo-related HTTP requests.
type TodoHandler struct {
	service  service.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(svc service.Service, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		service:  svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// List handles GET /api/todos
// @Summary List all todos
// @Produce json
// @Success 200 {array} api.TodoDocument
// @Router /api/todos [get]
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list todos failed", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	api.Success(w, http.StatusOK, todo.ToDocuments(items))
}

// Create handles POST /api/todos
// @Summary Create a todo
// @Accept json
// @Produce json
// @Param request body api.CreateTodoRequest true "Todo text"
// @Success 201 {object} api.TodoDocument
// @Failure 400 {object} api.ErrorResponse "Invalid request body or validation failed"
// @Router /api/todos [post]
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	item, err := h.service.Create(r.Context(), req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, todo.ToDocument(item))
}

// Get handles GET /api/todos/{id}
// @Summary Get a todo by id
// @Produce json
// @Param id path string true "Todo ID"
// @Success 200 {object} api.TodoDocument
// @Failure 404 {object} api.ErrorResponse "Todo not found"
// @Router /api/todos/{id} [get]
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	api.Success(w, http.StatusOK, todo.ToDocument(item))
}

// Update handles PUT /api/todos/{id}
// @Summary Update a todo's text and/or completion state
// @Accept json
// @Produce json
// @Param id path string true "Todo ID"
// @Param request body api.UpdateTodoRequest true "Fields to update"
// @Success 200 {object} api.TodoDocument
// @Failure 400 {object} api.ErrorResponse "Invalid request body or validation failed"
// @Failure 404 {object} api.ErrorResponse "Todo not found"
// @Router /api/todos/{id} [put]
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req api.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := todo.Patch{Text: req.Text, Completed: req.Completed}
	item, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	api.Success(w, http.StatusOK, todo.ToDocument(item))
}

// Toggle handles PATCH /api/todos/{id}/toggle
// @Summary Flip a todo's completion state
// @Produce json
// @Param id path string true "Todo ID"
// @Success 200 {object} api.TodoDocument
// @Failure 404 {object} api.ErrorResponse "Todo not found"
// @Router /api/todos/{id}/toggle [patch]
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.service.Toggle(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	api.Success(w, http.StatusOK, todo.ToDocument(item))
}

// Delete handles DELETE /api/todos/{id}
// @Summary Delete a todo
// @Param id path string true "Todo ID"
// @Success 204 "Todo deleted"
// @Failure 404 {object} api.ErrorResponse "Todo not found"
// @Router /api/todos/{id} [delete]
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	api.Success(w, http.StatusNoContent, nil)
}

// DeleteCompleted handles DELETE /api/todos/completed
// @Summary Delete all completed todos
// @Produce json
// @Success 200 {object} api.DeleteCompletedResponse
// @Router /api/todos/completed [delete]
func (h *TodoHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeleteCompleted(r.Context())
	if err != nil {
		h.logger.Error("delete completed todos failed", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	api.Success(w, http.StatusOK, api.DeleteCompletedResponse{DeletedCount: deleted})
}

// GetStats handles GET /api/todos/stats
// @Summary Todo counts by completion state
// @Produce json
// @Success 200 {object} api.StatsResponse
// @Router /api/todos/stats [get]
func (h *TodoHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	api.Success(w, http.StatusOK, api.StatsResponse{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending,
	})
}
