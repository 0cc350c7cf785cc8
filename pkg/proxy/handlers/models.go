package handlers

import (
	"net/http"
	"time"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/types"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/routing"
)

// ModelsHandler serves GET /v1/models with the configured model chain.
type ModelsHandler struct {
	state *routing.ModelState
}

// NewModelsHandler creates the model list handler.
func NewModelsHandler(state *routing.ModelState) *ModelsHandler {
	return &ModelsHandler{state: state}
}

// ServeHTTP implements http.Handler.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := time.Now().Unix()
	models := h.state.Models()

	list := types.ModelList{
		Object: "list",
		Data:   make([]types.Model, 0, len(models)),
	}
	for _, id := range models {
		list.Data = append(list.Data, types.Model{
			ID:      id,
			Object:  "model",
			Created: now,
			OwnedBy: "deepseek",
		})
	}

	proxy.WriteJSONResponse(w, http.StatusOK, list)
}
