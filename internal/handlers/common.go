// Package handlers provides the HTTP handlers for the todo REST API.
package handlers

import (
	"net/http"

	"todosync/pkg/api"
	appErrors "todosync/pkg/errors"
)

// handleServiceError converts service errors to appropriate HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case appErrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, err.Error())
	case appErrors.IsNetwork(err):
		api.Error(w, http.StatusBadGateway, "Upstream dependency unavailable")
	default:
		api.Error(w, http.StatusInternalServerError, "An internal error occurred")
	}
}
