package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biblio/biblio/internal/auth"
	"github.com/biblio/biblio/internal/handler/dto"
	"github.com/biblio/biblio/internal/service"
)

// UserHandler handles HTTP requests for user management and per-user
// borrow views.
type UserHandler struct {
	users   *service.UserService
	borrows *service.BorrowService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, borrows *service.BorrowService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		borrows: borrows,
		logger:  logger,
	}
}

// List handles GET /users (admin only).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Get handles GET /users/{id} (admin only).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Update handles PUT /users/{id} (admin only). Absent fields are left
// unchanged.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body.")
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Roles:    req.Roles,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /users/{id} (admin only). Users holding an
// active borrow cannot be deleted.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// MyBorrowed handles GET /users/borrowed. Lists the caller's currently
// borrowed books.
func (h *UserHandler) MyBorrowed(w http.ResponseWriter, r *http.Request) {
	caller := auth.AuthFromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required.")
		return
	}

	books, err := h.borrows.ListActiveBorrows(r.Context(), caller, caller.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookListResponse(books))
}

// Borrowed handles GET /users/{id}/borrowed. The caller must be the
// subject user or an admin.
func (h *UserHandler) Borrowed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := auth.AuthFromContext(r.Context())

	books, err := h.borrows.ListActiveBorrows(r.Context(), caller, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookListResponse(books))
}

// MyHistory handles GET /users/my-history. Returns the caller's full
// borrow history, newest first.
func (h *UserHandler) MyHistory(w http.ResponseWriter, r *http.Request) {
	caller := auth.AuthFromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required.")
		return
	}

	records, err := h.borrows.ListHistory(r.Context(), caller, caller.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBorrowHistoryResponse(records))
}

// History handles GET /users/{id}/history. The caller must be the
// subject user or an admin.
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := auth.AuthFromContext(r.Context())

	records, err := h.borrows.ListHistory(r.Context(), caller, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBorrowHistoryResponse(records))
}

// handleServiceError maps user/borrow service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	if verr, ok := asValidationError(err); ok {
		writeValidationError(w, verr)
		return
	}

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found.")
	case errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
			Errors: map[string]string{"email": "A user with this email already exists."},
			Code:   "EMAIL_TAKEN",
		})
	case errors.Is(err, service.ErrUserHasActiveBorrows):
		writeError(w, http.StatusBadRequest, "USER_HAS_ACTIVE_BORROWS", "Cannot delete a user with borrowed books.")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action.")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred.")
	}
}
