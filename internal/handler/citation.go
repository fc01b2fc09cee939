package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/citewall/internal/auth"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/service"
)

// CitationHandler exposes citation CRUD, search, random sampling, and the
// like/favorite endpoints.
type CitationHandler struct {
	citations   *service.CitationService
	engagements *service.EngagementService
	logger      *slog.Logger
}

// NewCitationHandler creates a CitationHandler.
func NewCitationHandler(
	citations *service.CitationService,
	engagements *service.EngagementService,
	logger *slog.Logger,
) *CitationHandler {
	return &CitationHandler{
		citations:   citations,
		engagements: engagements,
		logger:      logger,
	}
}

// HandleList returns one page of citations, newest first.
//
// HTTP: GET /api/citations?page=1&pageSize=10
func (h *CitationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.citations.List(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetByID returns a single citation with its likes and favs.
//
// HTTP: GET /api/citations/{id}
func (h *CitationHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	citation, err := h.citations.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, citation)
}

// HandleSearch matches citations by title or author substring.
//
// HTTP: GET /api/citations/search?filter=title|author&value=...
func (h *CitationHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	citations, err := h.citations.Search(r.Context(),
		r.URL.Query().Get("filter"),
		r.URL.Query().Get("value"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, citations)
}

// HandleRandom samples citations uniformly.
//
// HTTP: GET /api/citations/random?count=10
func (h *CitationHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	citations, err := h.citations.Random(r.Context(), count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, citations)
}

// HandleCreate creates a citation authored by the current actor.
//
// HTTP: POST /api/citations
// BODY: {"title": "...", "description": "...", "humorId": "ironic"}
func (h *CitationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	var in model.CitationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	citation, err := h.citations.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, citation)
}

// HandleUpdate edits a citation's title/description/humor. Author only.
//
// HTTP: PUT /api/citations/{id}
func (h *CitationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	var in model.CitationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	citation, err := h.citations.Update(r.Context(), actor, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, citation)
}

// HandleDelete removes a citation and all references to it. Author only.
//
// HTTP: DELETE /api/citations/{id}
func (h *CitationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	if err := h.citations.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "citation deleted"})
}

// HandleLike / HandleUnlike / HandleFavorite / HandleUnfavorite all follow
// the same shape: resolve the actor, apply the engagement, return the
// refreshed citation.
//
// HTTP: POST|DELETE /api/citations/{id}/like, /api/citations/{id}/favorite
func (h *CitationHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, h.engagements.Like)
}

func (h *CitationHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, h.engagements.Unlike)
}

func (h *CitationHandler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, h.engagements.Favorite)
}

func (h *CitationHandler) HandleUnfavorite(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, h.engagements.Unfavorite)
}

func (h *CitationHandler) engage(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actor model.Actor, citationID string) (*model.Citation, error),
) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	citation, err := apply(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, citation)
}
