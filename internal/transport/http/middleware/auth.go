package middleware

import (
	"context"
	"net/http"
	"strings"

	"snapshare/internal/httputil"
	"snapshare/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// IdentityKey is the context key for the authenticated identity
	IdentityKey contextKey = "identity"

	// TokenCookie is the cookie set at login and read as a fallback credential
	TokenCookie = "token"
)

// TokenVerifier resolves a bearer token to an identity.
type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

// AuthMiddleware rejects requests without a valid token.
// Checks the Authorization header first, then falls back to the token cookie.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				writeAuthError(w, model.ErrTokenMissing)
				return
			}

			identity, err := verifier.Verify(tokenString)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	// Expected format: "Bearer <token>"
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, err error) {
	de, ok := model.AsError(err)
	if !ok || de.Kind != model.KindAuth {
		de, _ = model.AsError(model.ErrTokenInvalid)
	}
	httputil.WriteError(w, http.StatusUnauthorized, de.Code, de.Message)
}

// GetIdentity extracts the authenticated identity from the request context.
func GetIdentity(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*model.Identity)
	return identity, ok && identity != nil
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return 0, false
	}
	return identity.UserID, true
}
