package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapshare/internal/model"
)

type stubVerifier map[string]error

func (s stubVerifier) Verify(token string) (*model.Identity, error) {
	if err, ok := s[token]; ok {
		return nil, err
	}
	return &model.Identity{UserID: 7, Email: "a@x.com", Username: "alice"}, nil
}

func TestAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{
		"expired": model.ErrTokenExpired,
		"bad":     model.ErrTokenInvalid,
	}

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantCode   string
	}{
		{"no credential", "", "", http.StatusUnauthorized, model.CodeUnauthorized},
		{"non bearer scheme", "Basic Zm9vOmJhcg==", "", http.StatusUnauthorized, model.CodeUnauthorized},
		{"expired", "Bearer expired", "", http.StatusUnauthorized, model.CodeTokenExpired},
		{"invalid", "Bearer bad", "", http.StatusUnauthorized, model.CodeTokenInvalid},
		{"valid bearer", "Bearer good", "", http.StatusOK, ""},
		{"case-insensitive scheme", "bearer good", "", http.StatusOK, ""},
		{"cookie fallback", "", "good", http.StatusOK, ""},
		{"header wins over cookie", "Bearer expired", "good", http.StatusUnauthorized, model.CodeTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, _ = GetUserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(verifier)(next).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, int64(7), gotID)
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestAuthMiddleware_MissingTokenMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthMiddleware(stubVerifier{})(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized: No token provided", body["message"])
}

func TestGetIdentity_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetIdentity(req.Context())
	assert.False(t, ok)
	_, ok = GetUserIDFromContext(req.Context())
	assert.False(t, ok)
}
