package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/imageboard/internal/service"
)

// ImageHandler serves image upload, deletion and the gallery JSON view.
type ImageHandler struct {
	images    *service.ImageService
	maxUpload int64
	logger    *slog.Logger
}

// NewImageHandler creates an ImageHandler. maxUpload caps multipart request
// bodies in bytes.
func NewImageHandler(images *service.ImageService, maxUpload int64, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		images:    images,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// HandleUpload stores the multipart "image" file on the image host and records it.
//
// HTTP: POST /upload
// RESPONSE: {"success": true, "image_url": "...", "date": "2024-01-02 10:00:00", "public_id": "..."}
func (h *ImageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("image")
	if err != nil {
		h.logger.Warn("upload without image", slog.String("error", err.Error()))
		writeFormError(w, err, "No image provided")
		return
	}
	defer file.Close()

	record, err := h.images.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success:  true,
		ImageURL: record.URL,
		Date:     record.Date,
		PublicID: record.PublicID,
	})
}

// deleteRequest keeps public_id untyped so a number or null can be told apart
// from a missing field and rejected with the same message.
type deleteRequest struct {
	PublicID interface{} `json:"public_id"`
}

// HandleDelete removes an image from the image host and the history.
//
// HTTP: POST /delete
// REQUEST BODY: {"public_id": "..."}
func (h *ImageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid delete request body", slog.String("error", err.Error()))
		writeFailure(w, http.StatusBadRequest, "Invalid or missing public_id")
		return
	}

	publicID, ok := req.PublicID.(string)
	if !ok || strings.TrimSpace(publicID) == "" {
		writeFailure(w, http.StatusBadRequest, "Invalid or missing public_id")
		return
	}

	if err := h.images.Delete(r.Context(), publicID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleGallery returns the history grouped by day.
//
// HTTP: GET /api/gallery
func (h *ImageHandler) HandleGallery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GalleryResponse{
		Success: true,
		Groups:  h.images.Gallery(r.Context()),
	})
}

// writeFormError answers a failed multipart read: 413 when the body exceeded
// the limit, 400 with message otherwise.
func writeFormError(w http.ResponseWriter, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeFailure(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	writeFailure(w, http.StatusBadRequest, message)
}
