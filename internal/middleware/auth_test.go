package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biblio/biblio/internal/auth"
	"github.com/biblio/biblio/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_MissingToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Minute)
	mw := Auth(AuthConfig{Logger: discardLogger(), Issuer: issuer})

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Minute)
	mw := Auth(AuthConfig{Logger: discardLogger(), Issuer: issuer})

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Minute)
	mw := Auth(AuthConfig{Logger: discardLogger(), Issuer: issuer})

	user := &model.User{
		ID:    "user-1",
		Email: "reader@example.com",
		Roles: []string{model.RoleMember},
	}
	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	var seen *model.AuthContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.AuthFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if seen == nil {
		t.Fatal("expected auth context to be injected")
	}
	if seen.UserID != "user-1" {
		t.Errorf("unexpected user ID: %s", seen.UserID)
	}
	if seen.IsAdmin() {
		t.Error("member should not be admin")
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	shortIssuer := auth.NewTokenIssuer("test-secret", -time.Minute)
	token, err := shortIssuer.Issue(&model.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	issuer := auth.NewTokenIssuer("test-secret", time.Minute)
	mw := Auth(AuthConfig{Logger: discardLogger(), Issuer: issuer})

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Minute)
	authMW := Auth(AuthConfig{Logger: discardLogger(), Issuer: issuer})
	adminMW := RequireAdmin(discardLogger())

	tests := []struct {
		name       string
		roles      []string
		wantStatus int
	}{
		{name: "admin allowed", roles: []string{model.RoleAdmin}, wantStatus: http.StatusOK},
		{name: "member forbidden", roles: []string{model.RoleMember}, wantStatus: http.StatusForbidden},
		{name: "no roles forbidden", roles: nil, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := issuer.Issue(&model.User{ID: "user-1", Roles: tt.roles})
			if err != nil {
				t.Fatalf("failed to issue token: %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/books", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			authMW(adminMW(okHandler())).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequireAdmin_WithoutAuth(t *testing.T) {
	adminMW := RequireAdmin(discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	rec := httptest.NewRecorder()

	adminMW(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}
