package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/biblio/biblio/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService(nil, nil, nil, 0), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["code"] != "INVALID_JSON" {
		t.Errorf("unexpected code: %s", response["code"])
	}
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService(nil, nil, nil, 0), discardLogger())

	body := `{"name":"","email":"not-an-email","password":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

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
	for _, field := range []string{"name", "email", "password"} {
		if response.Errors[field] == "" {
			t.Errorf("expected a message for field %q", field)
		}
	}
}

func TestAuthHandler_Token_EmptyCredentials(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService(nil, nil, nil, 0), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(`{"email":"","password":""}`))
	rec := httptest.NewRecorder()

	h.Token(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["code"] != "INVALID_CREDENTIALS" {
		t.Errorf("unexpected code: %s", response["code"])
	}
}

func TestAuthHandler_TokenRefresh_Empty(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService(nil, nil, nil, 0), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/token/refresh", strings.NewReader(`{"refresh":""}`))
	rec := httptest.NewRecorder()

	h.TokenRefresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["code"] != "INVALID_REFRESH" {
		t.Errorf("unexpected code: %s", response["code"])
	}
}
