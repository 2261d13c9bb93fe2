package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/biblio/biblio/internal/auth"
	"github.com/biblio/biblio/internal/handler/dto"
	"github.com/biblio/biblio/internal/service"
)

// BookHandler handles HTTP requests for catalog and borrow operations
// on books.
type BookHandler struct {
	catalog *service.CatalogService
	borrows *service.BorrowService
	logger  *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(catalog *service.CatalogService, borrows *service.BorrowService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		catalog: catalog,
		borrows: borrows,
		logger:  logger,
	}
}

// List handles GET /books.
// Supported query parameters: genre (exact name), author (substring),
// is_borrowed (bool), search (title/author), ordering (title, author,
// published_at; "-" prefix for descending).
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := service.ListBooksInput{
		GenreName: query.Get("genre"),
		Author:    query.Get("author"),
		Search:    query.Get("search"),
		OrderBy:   query.Get("ordering"),
	}

	if raw := query.Get("is_borrowed"); raw != "" {
		borrowed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
				Errors: map[string]string{"is_borrowed": "Must be a boolean."},
				Code:   "VALIDATION_ERROR",
			})
			return
		}
		input.IsBorrowed = &borrowed
	}

	books, err := h.catalog.ListBooks(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookListResponse(books))
}

// Create handles POST /books (admin only, enforced by middleware).
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body.")
		return
	}

	book, err := h.catalog.CreateBook(r.Context(), service.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		GenreID:     req.Genre,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_created",
		"book_id", book.ID,
		"title", book.Title,
	)

	writeJSON(w, http.StatusCreated, dto.ToBookResponse(book))
}

// Get handles GET /books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	book, err := h.catalog.GetBook(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// Update handles PUT /books/{id} (admin only).
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body.")
		return
	}

	book, err := h.catalog.UpdateBook(r.Context(), id, service.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		GenreID:     req.Genre,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_updated", "book_id", book.ID)

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// Delete handles DELETE /books/{id} (admin only).
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.DeleteBook(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_deleted", "book_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// Borrow handles POST /books/{id}/borrow.
func (h *BookHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := auth.UserIDFromContext(r.Context())

	record, err := h.borrows.Borrow(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_borrowed",
		"book_id", id,
		"user_id", userID,
		"record_id", record.ID,
	)

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "The book was successfully taken"})
}

// Return handles POST /books/{id}/return.
func (h *BookHandler) Return(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := auth.UserIDFromContext(r.Context())

	record, err := h.borrows.Return(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_returned",
		"book_id", id,
		"user_id", userID,
		"record_id", record.ID,
	)

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "Book successfully returned"})
}

// handleServiceError maps catalog/borrow service errors to HTTP responses.
func (h *BookHandler) handleServiceError(w http.ResponseWriter, err error) {
	if verr, ok := asValidationError(err); ok {
		writeValidationError(w, verr)
		return
	}

	switch {
	case errors.Is(err, service.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found.")
	case errors.Is(err, service.ErrGenreNotFound):
		writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
			Errors: map[string]string{"genre": "Genre not found."},
			Code:   "GENRE_NOT_FOUND",
		})
	case errors.Is(err, service.ErrAlreadyBorrowed):
		writeError(w, http.StatusBadRequest, "ALREADY_BORROWED", "The book has already been taken")
	case errors.Is(err, service.ErrNotBorrowedByUser):
		writeError(w, http.StatusBadRequest, "NOT_BORROWED", "You didn't take this book.")
	case errors.Is(err, service.ErrBookBorrowed):
		writeError(w, http.StatusBadRequest, "BOOK_BORROWED", "Cannot delete a borrowed book.")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found.")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred.")
	}
}
