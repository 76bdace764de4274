package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"snapshare/internal/httputil"
	"snapshare/internal/model"
	"snapshare/internal/service"
)

// maxFormSize leaves room for the text fields next to a full-size image.
const maxFormSize = model.MaxImageSizeBytes + 1<<20

var errMediaUnavailable = errors.New("media storage is not configured")

// parseIDParam reads a positive numeric chi URL parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseMultipart bounds the body and parses a multipart form. It writes the
// 400 response itself and reports whether the handler should continue.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	err := r.ParseMultipartForm(maxFormSize)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrNotMultipart):
		httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
	case errors.As(err, &tooLarge):
		httputil.WriteError(w, http.StatusBadRequest, model.CodeFileTooLarge, model.ErrFileTooLarge.Error())
	default:
		httputil.WriteBadRequest(w, "Invalid form data")
	}
	return false
}

// formFile returns the uploaded "file" part, or nil when none was sent.
func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	return file, header, err
}

// upload stores the image under folder. A nil media service means uploads
// are disabled for this process.
func upload(ctx context.Context, media *service.MediaService, file multipart.File, header *multipart.FileHeader, folder string) (*model.UploadResult, error) {
	defer file.Close()
	if media == nil {
		return nil, errMediaUnavailable
	}
	return media.UploadImage(ctx, file, header, folder)
}
