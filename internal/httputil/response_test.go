package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapshare/internal/model"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, "Post created", Payload{"post": map[string]int{"id": 1}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Post created", body["message"])
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, body["post"])
}

func TestWriteSuccess_EnvelopeWins(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusOK, "ok", Payload{"success": false})

	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", model.ErrTextRequired, http.StatusBadRequest, model.CodeBadRequest},
		{"forbidden", model.ErrNotPostOwner, http.StatusBadRequest, model.CodeForbidden},
		{"conflict", model.ErrAlreadyFollowing, http.StatusBadRequest, model.CodeAlreadyFollowing},
		{"self follow", model.ErrCannotFollowSelf, http.StatusBadRequest, model.CodeCannotFollowSelf},
		{"auth", model.ErrTokenExpired, http.StatusUnauthorized, model.CodeTokenExpired},
		{"not found", model.ErrPostNotFound, http.StatusNotFound, model.CodeNotFound},
		{"wrapped", fmt.Errorf("ctx: %w", model.ErrUserNotFound), http.StatusNotFound, model.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			rec := httptest.NewRecorder()

			WriteServiceError(rec, logger, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["error"])
			assert.NotEmpty(t, body["message"])
			assert.Empty(t, hook.Entries)
		})
	}
}

func TestWriteServiceError_UnexpectedIsGeneric(t *testing.T) {
	logger, hook := test.NewNullLogger()
	rec := httptest.NewRecorder()

	WriteServiceError(rec, logger, errors.New("pq: password authentication failed for user admin"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Internal server error", body["message"])
	assert.Equal(t, model.CodeInternal, body["error"])
	assert.NotContains(t, rec.Body.String(), "password")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
