// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/biblio/biblio/internal/handler/dto"
	"github.com/biblio/biblio/internal/service"
)

// Handler provides the root and fallback endpoints.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello is the root info endpoint.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Hello from Biblio!",
		"version": "0.1.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found.")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed.")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = err
	}
}

// writeError writes an error response with a detail and stable code.
func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, dto.ErrorResponse{
		Detail: detail,
		Code:   code,
	})
}

// writeValidationError writes a 400 with field-keyed messages.
func writeValidationError(w http.ResponseWriter, verr service.ValidationError) {
	writeJSON(w, http.StatusBadRequest, dto.ValidationErrorResponse{
		Errors: verr,
		Code:   "VALIDATION_ERROR",
	})
}

// asValidationError extracts a ValidationError if err is one.
func asValidationError(err error) (service.ValidationError, bool) {
	var verr service.ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
