package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"snapshare/internal/httputil"
	"snapshare/internal/model"
	"snapshare/internal/service"
	"snapshare/internal/transport/http/middleware"
)

// InteractionHandler serves likes and comments.
type InteractionHandler struct {
	interactionService *service.InteractionService
	logger             logrus.FieldLogger
}

func NewInteractionHandler(interactionService *service.InteractionService, logger logrus.FieldLogger) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
		logger:             logger.WithField("component", "interaction_handler"),
	}
}

// Like handles POST /api/posts/{id}/like
// Each call flips the caller's like.
func (h *InteractionHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.target(w, r)
	if !ok {
		return
	}

	result, err := h.interactionService.ToggleLike(r.Context(), userID, postID)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	message := "Post unliked successfully"
	if result.Liked {
		message = "Post liked successfully"
	}
	httputil.WriteSuccess(w, http.StatusOK, message, httputil.Payload{
		"liked":      result.Liked,
		"likesCount": result.LikesCount,
		"post":       result.Post,
	})
}

// Comment handles POST /api/posts/{id}/comment
func (h *InteractionHandler) Comment(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req model.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.interactionService.AddComment(r.Context(), userID, postID, req.Text)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "Comment added successfully", httputil.Payload{
		"comment": comment,
	})
}

func (h *InteractionHandler) target(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteServiceError(w, h.logger, model.ErrTokenMissing)
		return 0, 0, false
	}

	postID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return 0, 0, false
	}
	return userID, postID, true
}
