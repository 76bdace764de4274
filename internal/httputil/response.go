package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"snapshare/internal/model"
)

// Payload holds the extra top-level fields of a success envelope.
type Payload map[string]interface{}

// ErrorResponse is the failure envelope:
// {"success": false, "message": "Human readable message", "error": "ERROR_CODE"}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent; nothing useful to do on failure
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteSuccess writes {"success": true, "message": message, ...payload}.
func WriteSuccess(w http.ResponseWriter, status int, message string, payload Payload) {
	body := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	body["message"] = message
	WriteJSON(w, status, body)
}

// WriteError writes a failure envelope.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, ErrorResponse{
		Success: false,
		Message: message,
		Error:   code,
	})
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, model.CodeBadRequest, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, model.CodeNotFound, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, model.CodeInternal, message)
}

// StatusFor maps an error kind to its HTTP status. Authorization-domain
// failures (forbidden, conflicts) are client errors, not 403/409.
func StatusFor(kind model.Kind) int {
	switch kind {
	case model.KindValidation, model.KindForbidden, model.KindConflict:
		return http.StatusBadRequest
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError translates a service error into a failure envelope.
// Errors without a domain kind are logged and reported generically.
func WriteServiceError(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	if de, ok := model.AsError(err); ok {
		WriteError(w, StatusFor(de.Kind), de.Code, de.Message)
		return
	}

	logger.WithError(err).Error("Unexpected error")
	WriteInternalError(w, "Internal server error")
}
