package handlers

import (
	"encoding/json"
	"net/http"
)

// NotFoundHandler answers unmatched routes with a structured 404 body
// carrying the method and path the caller used.
type NotFoundHandler struct{}

// NewNotFoundHandler creates the catch-all handler.
func NewNotFoundHandler() *NotFoundHandler {
	return &NotFoundHandler{}
}

// ServeHTTP implements http.Handler.
func (h *NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"error": map[string]interface{}{
			"message": "Route not found",
			"method":  r.Method,
			"path":    r.URL.Path,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(response)
}
