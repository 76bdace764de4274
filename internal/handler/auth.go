package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"snapshare/internal/httputil"
	"snapshare/internal/model"
	"snapshare/internal/service"
	"snapshare/internal/transport/http/middleware"
)

// AuthHandler groups account endpoints and their dependencies.
type AuthHandler struct {
	userService  *service.UserService
	tokenService *service.TokenService
	mediaService *service.MediaService
	logger       logrus.FieldLogger
}

// NewAuthHandler wires dependencies for authentication endpoints.
// mediaService may be nil when object storage is not configured.
func NewAuthHandler(
	userService *service.UserService,
	tokenService *service.TokenService,
	mediaService *service.MediaService,
	logger logrus.FieldLogger,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		mediaService: mediaService,
		logger:       logger.WithField("component", "auth_handler"),
	}
}

// Register handles multipart sign-up with a required profile image.
// POST /api/user/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r) {
		return
	}

	req := model.RegisterRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	// Reject duplicates before anything is uploaded
	if err := h.userService.CheckRegistration(r.Context(), &req); err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	file, header, err := formFile(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid file upload")
		return
	}
	if file == nil {
		httputil.WriteServiceError(w, h.logger, model.ErrAvatarRequired)
		return
	}

	avatar, err := upload(r.Context(), h.mediaService, file, header, model.AvatarFolder)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}
	req.AvatarURL = avatar.URL
	req.AvatarKey = &avatar.Key

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.mediaService.DeleteQuietly(r.Context(), req.AvatarKey)
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	token, err := h.tokenService.Issue(user.ID, user.Email, user.Username)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, r, token.Token)
	httputil.WriteSuccess(w, http.StatusCreated, "User registered successfully", httputil.Payload{
		"user":  user,
		"token": token.Token,
	})
}

// Login handles user login
// POST /api/user/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	token, err := h.tokenService.Issue(user.ID, user.Email, user.Username)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, r, token.Token)
	httputil.WriteSuccess(w, http.StatusOK, "Login successful", httputil.Payload{
		"user":  user,
		"token": token.Token,
	})
}

// Logout clears the token cookie. Tokens are stateless, so an issued bearer
// token stays valid until it expires.
// POST /api/user/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the currently authenticated user
// GET /api/user/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteServiceError(w, h.logger, model.ErrTokenMissing)
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Current user fetched successfully", httputil.Payload{
		"currentUser": user,
	})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenService.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
