package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"snapshare/internal/httputil"
	"snapshare/internal/service"
)

type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
	logger        logrus.FieldLogger
}

func NewUserHandler(userService *service.UserService, followService *service.FollowService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		logger:        logger.WithField("component", "user_handler"),
	}
}

// All handles GET /api/user/all
func (h *UserHandler) All(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Users fetched successfully", httputil.Payload{
		"users": users,
	})
}

// Profile handles GET /api/user/profile/{id}
// Followers and following are resolved to summaries.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	profile, err := h.followService.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "User profile fetched successfully", httputil.Payload{
		"user": profile,
	})
}
