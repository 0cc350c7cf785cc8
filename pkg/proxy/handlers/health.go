package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/routing"
)

// HealthHandler reports liveness plus the current routing state.
type HealthHandler struct {
	state *routing.ModelState
	creds CredentialChecker
}

// NewHealthHandler creates a health check handler.
func NewHealthHandler(state *routing.ModelState, creds CredentialChecker) *HealthHandler {
	return &HealthHandler{state: state, creds: creds}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":              "ok",
		"model":               h.state.Current(),
		"hasApiKey":           h.creds.HasAPIKey(),
		"consecutiveFailures": h.state.Failures(),
		"timestamp":           time.Now().Unix(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
