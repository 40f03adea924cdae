package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"todosync/internal/service"
	"todosync/pkg/api"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	service service.Service
	logger  *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc service.Service, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{service: svc, logger: logger}
}

// Check handles GET /health requests
// @Summary Basic health check
// @Description Returns the basic health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} api.HealthResponse "Application is healthy"
// @Router /health [get]
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// Ready handles GET /ready requests for readiness checks
// @Summary Application readiness check
// @Description Reports whether the backing store is reachable
// @Tags System
// @Produce json
// @Success 200 {object} api.HealthResponse "Application is ready to serve requests"
// @Failure 503 {object} api.ErrorResponse "Backing store unreachable"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		api.Error(w, http.StatusServiceUnavailable, "Service not ready")
		return
	}

	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ready"})
}
