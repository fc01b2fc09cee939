package handler

import (
	"net/http"

	"github.com/sakif/citewall/internal/service"
)

// HumorHandler serves the humor category catalog.
type HumorHandler struct {
	humors *service.HumorService
}

// NewHumorHandler creates a HumorHandler.
func NewHumorHandler(humors *service.HumorService) *HumorHandler {
	return &HumorHandler{humors: humors}
}

// HandleList returns every humor category.
//
// HTTP: GET /api/humors
func (h *HumorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	humors, err := h.humors.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, humors)
}

// HandleGetByID returns one humor category.
//
// HTTP: GET /api/humors/{id}
func (h *HumorHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	humor, err := h.humors.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, humor)
}
