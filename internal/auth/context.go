package auth

import (
	"context"
	"errors"

	"github.com/biblio/biblio/internal/model"
)

// ErrForbidden indicates the caller is not allowed to access the resource.
var ErrForbidden = errors.New("forbidden")

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// authContextKey is the context key for storing AuthContext.
const authContextKey contextKey = "auth_context"

// ContextWithAuth adds AuthContext to the context.
func ContextWithAuth(ctx context.Context, auth *model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

// AuthFromContext retrieves AuthContext from the context.
// Returns nil if not present.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	auth, ok := ctx.Value(authContextKey).(*model.AuthContext)
	if !ok {
		return nil
	}
	return auth
}

// MustAuthFromContext retrieves AuthContext from the context.
// Panics if not present (use only when auth middleware has run).
func MustAuthFromContext(ctx context.Context) *model.AuthContext {
	auth := AuthFromContext(ctx)
	if auth == nil {
		panic("auth context not found - ensure auth middleware is applied")
	}
	return auth
}

// UserIDFromContext is a convenience function to get user ID from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	auth := AuthFromContext(ctx)
	if auth == nil {
		return ""
	}
	return auth.UserID
}

// Authorize is the single owner-or-admin policy check used by every
// endpoint that exposes per-user data. The caller passes the id of the
// resource owner and whether the operation is admin-only.
//
// Rules:
//   - no auth context → ErrForbidden
//   - admin callers pass every check
//   - adminOnly operations fail for non-admins
//   - otherwise the caller must be the resource owner
func Authorize(authCtx *model.AuthContext, ownerID string, adminOnly bool) error {
	if authCtx == nil {
		return ErrForbidden
	}

	if authCtx.IsAdmin() {
		return nil
	}

	if adminOnly {
		return ErrForbidden
	}

	if ownerID == "" || authCtx.UserID != ownerID {
		return ErrForbidden
	}

	return nil
}
