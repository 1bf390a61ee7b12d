package handler

// RESPONSE ENVELOPE:
// Every JSON endpoint answers with the same envelope so the browser scripts
// can branch on one field:
//
//	success: {"success": true, ...payload fields}
//	failure: {"success": false, "error": "human-readable message"}
//
// Payload fields sit next to "success" (not nested under "data"), e.g.
// {"success": true, "likes": 3, "liked": true}. Each endpoint has its own
// response struct below so the field set is visible in one place.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/model"
)

// ErrorResponse is the failure envelope returned by all JSON endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SuccessResponse is the envelope for endpoints with no payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"image_url"`
	Date     string `json:"date"`
	PublicID string `json:"public_id"`
}

type ThreadResponse struct {
	Success bool          `json:"success"`
	Thread  *model.Thread `json:"thread"`
}

type ThreadsResponse struct {
	Success bool           `json:"success"`
	Threads []model.Thread `json:"threads"`
}

type CommentResponse struct {
	Success bool           `json:"success"`
	Comment *model.Comment `json:"comment"`
}

type ReplyResponse struct {
	Success bool         `json:"success"`
	Reply   *model.Reply `json:"reply"`
}

type LikeResponse struct {
	Success bool `json:"success"`
	Likes   int  `json:"likes"`
	Liked   bool `json:"liked"`
}

type GalleryResponse struct {
	Success bool              `json:"success"`
	Groups  []model.DateGroup `json:"groups"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before WriteHeader; anything set afterwards is ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeFailure sends the failure envelope with an explicit status.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

// statusFor maps an error kind to its HTTP status.
//
//	ErrValidation → 400
//	ErrNotFound   → 404
//	ErrIndex      → 404 (the addressed comment does not exist)
//	ErrRemote     → 502
//	ErrUpload, ErrStorage, anything else → 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrIndex):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a domain error to a status and the failure envelope.
//
// errors.As walks the whole chain, so a service error such as
// fmt.Errorf("uploading reply image: %w", apperror.Remote(...)) still yields
// the AppError's message. Errors that are not AppErrors never reach the
// client verbatim: they might carry file paths or driver internals.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeFailure(w, statusFor(err), appErr.Message)
		return
	}

	writeFailure(w, http.StatusInternalServerError, "An internal error occurred")
}
