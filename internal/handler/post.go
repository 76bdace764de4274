package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"snapshare/internal/httputil"
	"snapshare/internal/model"
	"snapshare/internal/service"
	"snapshare/internal/transport/http/middleware"
)

type PostHandler struct {
	postService  *service.PostService
	mediaService *service.MediaService
	logger       logrus.FieldLogger
}

// NewPostHandler wires the post endpoints. mediaService may be nil when
// object storage is not configured; image uploads then fail with 500.
func NewPostHandler(postService *service.PostService, mediaService *service.MediaService, logger logrus.FieldLogger) *PostHandler {
	return &PostHandler{
		postService:  postService,
		mediaService: mediaService,
		logger:       logger.WithField("component", "post_handler"),
	}
}

// Create handles POST /api/posts/create (multipart: text, file)
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteServiceError(w, h.logger, model.ErrTokenMissing)
		return
	}

	if !parseMultipart(w, r) {
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		httputil.WriteServiceError(w, h.logger, model.ErrTextRequired)
		return
	}

	file, header, err := formFile(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid file upload")
		return
	}
	if file == nil {
		httputil.WriteServiceError(w, h.logger, model.ErrMediaRequired)
		return
	}

	image, err := upload(r.Context(), h.mediaService, file, header, model.PostMediaFolder)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	post, err := h.postService.Create(r.Context(), userID, model.CreatePostRequest{
		Text:     text,
		ImageURL: image.URL,
		ImageKey: &image.Key,
	})
	if err != nil {
		h.mediaService.DeleteQuietly(r.Context(), &image.Key)
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "Post created successfully", httputil.Payload{
		"post": post,
	})
}

// List handles GET /api/posts/get-posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListAll(r.Context())
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Posts fetched successfully", httputil.Payload{
		"posts": posts,
	})
}

// ListByUser handles GET /api/posts/user-posts
// Lists the caller's posts unless ?user_id= names another user.
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteServiceError(w, h.logger, model.ErrTokenMissing)
		return
	}

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httputil.WriteBadRequest(w, "Invalid user ID")
			return
		}
		userID = id
	}

	posts, err := h.postService.ListByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "User posts fetched successfully", httputil.Payload{
		"posts": posts,
	})
}

// GetByID handles GET /api/posts/{id}
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID)
	if err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Post fetched successfully", httputil.Payload{
		"post": post,
	})
}

// Update handles PUT /api/posts/update-post/{id}
// Accepts multipart (text and/or file) or a JSON body with "text".
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteServiceError(w, h.logger, model.ErrTokenMissing)
		return
	}

	postID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.UpdatePostRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !parseMultipart(w, r) {
			return
		}
		if values, ok := r.MultipartForm.Value["text"]; ok && len(values) > 0 {
			req.Text = &values[0]
		}

		file, header, err := formFile(r)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid file upload")
			return
		}
		if file != nil {
			image, err := upload(r.Context(), h.mediaService, file, header, model.PostMediaFolder)
			if err != nil {
				httputil.WriteServiceError(w, h.logger, err)
				return
			}
			req.ImageURL = &image.URL
			req.ImageKey = &image.Key
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), userID, postID, req)
	if err != nil {
		// The new image never made it onto the post
		h.mediaService.DeleteQuietly(r.Context(), req.ImageKey)
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Post updated successfully", httputil.Payload{
		"updatedPost": post,
	})
}

// Delete handles DELETE /api/posts/delete-post/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteServiceError(w, h.logger, model.ErrTokenMissing)
		return
	}

	postID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	if err := h.postService.Delete(r.Context(), userID, postID); err != nil {
		httputil.WriteServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Post deleted successfully", nil)
}
