package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biblio/biblio/internal/handler/dto"
	"github.com/biblio/biblio/internal/service"
)

// GenreHandler handles HTTP requests for genre management.
type GenreHandler struct {
	svc    *service.CatalogService
	logger *slog.Logger
}

// NewGenreHandler creates a new GenreHandler.
func NewGenreHandler(svc *service.CatalogService, logger *slog.Logger) *GenreHandler {
	return &GenreHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /genres.
func (h *GenreHandler) List(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.ListGenres(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGenreListResponse(genres))
}

// Create handles POST /genres (admin only).
func (h *GenreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.GenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body.")
		return
	}

	genre, err := h.svc.CreateGenre(r.Context(), req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("genre_created", "genre_id", genre.ID, "name", genre.Name)

	writeJSON(w, http.StatusCreated, dto.ToGenreResponse(genre))
}

// Get handles GET /genres/{id}.
func (h *GenreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	genre, err := h.svc.GetGenre(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGenreResponse(genre))
}

// Update handles PUT /genres/{id} (admin only).
func (h *GenreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.GenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body.")
		return
	}

	genre, err := h.svc.UpdateGenre(r.Context(), id, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("genre_updated", "genre_id", genre.ID)

	writeJSON(w, http.StatusOK, dto.ToGenreResponse(genre))
}

// Delete handles DELETE /genres/{id} (admin only). Genres referenced by
// books cannot be deleted.
func (h *GenreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteGenre(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("genre_deleted", "genre_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps genre service errors to HTTP responses.
func (h *GenreHandler) handleServiceError(w http.ResponseWriter, err error) {
	if verr, ok := asValidationError(err); ok {
		writeValidationError(w, verr)
		return
	}

	switch {
	case errors.Is(err, service.ErrGenreNotFound):
		writeError(w, http.StatusNotFound, "GENRE_NOT_FOUND", "Genre not found.")
	case errors.Is(err, service.ErrGenreNameExists):
		writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
			Errors: map[string]string{"name": "A genre with this name already exists."},
			Code:   "GENRE_NAME_EXISTS",
		})
	case errors.Is(err, service.ErrGenreInUse):
		writeError(w, http.StatusBadRequest, "GENRE_IN_USE", "Cannot delete a genre that is assigned to books.")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred.")
	}
}
