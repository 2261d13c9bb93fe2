package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/biblio/biblio/internal/service"
)

func newBookHandler() *BookHandler {
	return NewBookHandler(
		service.NewCatalogService(nil),
		service.NewBorrowService(nil),
		discardLogger(),
	)
}

func TestBookHandler_List_BadIsBorrowed(t *testing.T) {
	h := newBookHandler()

	req := httptest.NewRequest(http.MethodGet, "/books?is_borrowed=maybe", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var response struct {
		Errors map[string]string `json:"errors"`
		Code   string            `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Errors["is_borrowed"] == "" {
		t.Error("expected a message for is_borrowed")
	}
}

func TestBookHandler_Create_ValidationErrors(t *testing.T) {
	h := newBookHandler()

	body := `{"title":"","author":""}`
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var response struct {
		Errors map[string]string `json:"errors"`
		Code   string            `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected code: %s", response.Code)
	}
	if response.Errors["title"] == "" {
		t.Error("expected a message for title")
	}
	if response.Errors["author"] == "" {
		t.Error("expected a message for author")
	}
}

func TestBookHandler_Create_InvalidJSON(t *testing.T) {
	h := newBookHandler()

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["code"] != "INVALID_JSON" {
		t.Errorf("unexpected code: %s", response["code"])
	}
}

// withURLParam attaches a chi route parameter so URLParam works outside
// a router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
