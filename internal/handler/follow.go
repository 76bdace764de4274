package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"snapshare/internal/httputil"
	"snapshare/internal/model"
	"snapshare/internal/service"
	"snapshare/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
	logger        logrus.FieldLogger
}

func NewFollowHandler(followService *service.FollowService, logger logrus.FieldLogger) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		logger:        logger.WithField("component", "follow_handler"),
	}
}

// Follow handles POST /api/user/follow/{id}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, followeeID, ok := h.pair(w, r)
	if !ok {
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, followeeID); err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "User followed successfully", nil)
}

// Unfollow handles POST /api/user/unfollow/{id}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, followeeID, ok := h.pair(w, r)
	if !ok {
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followeeID); err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "User unfollowed successfully", nil)
}

func (h *FollowHandler) pair(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteServiceError(w, h.logger, model.ErrTokenMissing)
		return 0, 0, false
	}

	followeeID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return 0, 0, false
	}
	return followerID, followeeID, true
}
