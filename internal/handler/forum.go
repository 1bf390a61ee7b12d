package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/service"
)

// multipartMemory is how much of a reply form is held in memory before
// ParseMultipartForm spills file parts to disk.
const multipartMemory = 8 << 20

// ForumHandler serves threads, comments, replies and likes.
type ForumHandler struct {
	forum     *service.ForumService
	maxUpload int64
	logger    *slog.Logger
}

// NewForumHandler creates a ForumHandler. maxUpload caps reply form bodies in bytes.
func NewForumHandler(forum *service.ForumService, maxUpload int64, logger *slog.Logger) *ForumHandler {
	return &ForumHandler{
		forum:     forum,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// pathInt reads an integer URL parameter. A value that is not an integer
// addresses nothing, so it is reported as not found.
func pathInt(r *http.Request, name, resource string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NotFound(resource, raw)
	}
	return n, nil
}

// HandleListThreads returns every thread, newest first.
//
// HTTP: GET /api/threads
func (h *ForumHandler) HandleListThreads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ThreadsResponse{
		Success: true,
		Threads: h.forum.ListThreads(r.Context()),
	})
}

// HandleGetThread returns one thread with its comments.
//
// HTTP: GET /api/threads/{threadID}
func (h *ForumHandler) HandleGetThread(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "threadID", "thread")
	if err != nil {
		writeError(w, err)
		return
	}

	thread, err := h.forum.GetThread(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ThreadResponse{Success: true, Thread: thread})
}

type createThreadRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PublicID    string `json:"public_id"`
	Date        string `json:"date"`
}

// HandleCreateThread creates a thread, optionally pointing at an image
// uploaded beforehand through /upload.
//
// HTTP: POST /create_thread
// REQUEST BODY: {"title": "...", "description": "...", "image_url": "...", "public_id": "...", "date": "..."}
func (h *ForumHandler) HandleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid thread JSON", slog.String("error", err.Error()))
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	thread, err := h.forum.CreateThread(r.Context(), service.NewThread{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		PublicID:    req.PublicID,
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ThreadResponse{Success: true, Thread: thread})
}

type addCommentRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// HandleAddComment appends a comment to a thread.
//
// HTTP: POST /add_comment/{threadID}
// REQUEST BODY: {"username": "...", "content": "..."}
func (h *ForumHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathInt(r, "threadID", "thread")
	if err != nil {
		writeError(w, err)
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	comment, err := h.forum.AddComment(r.Context(), threadID, req.Username, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CommentResponse{Success: true, Comment: comment})
}

// HandleAddReply appends a reply to a comment. The body is a form
// (multipart when it carries an "image" file, urlencoded otherwise).
//
// HTTP: POST /add_reply/{threadID}/{commentIndex}
// FORM FIELDS: username (optional), content, image (optional file)
func (h *ForumHandler) HandleAddReply(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathInt(r, "threadID", "thread")
	if err != nil {
		writeError(w, err)
		return
	}
	commentIndex, err := pathInt(r, "commentIndex", "comment")
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.logger.Warn("invalid reply form", slog.String("error", err.Error()))
		writeFormError(w, err, "Invalid form body")
		return
	}

	in := service.NewReply{
		ThreadID:     threadID,
		CommentIndex: commentIndex,
		Username:     r.PostFormValue("username"),
		Content:      r.PostFormValue("content"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		in.Image = &service.ImageUpload{Filename: header.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no image attached
	default:
		h.logger.Warn("unreadable reply image", slog.String("error", err.Error()))
		writeFailure(w, http.StatusBadRequest, "Invalid image")
		return
	}

	reply, err := h.forum.AddReply(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReplyResponse{Success: true, Reply: reply})
}

// HandleToggleLike flips the thread's like flag.
//
// HTTP: POST /toggle_like/{threadID}
// RESPONSE: {"success": true, "likes": 1, "liked": true}
func (h *ForumHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathInt(r, "threadID", "thread")
	if err != nil {
		writeError(w, err)
		return
	}

	state, err := h.forum.ToggleLike(r.Context(), threadID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LikeResponse{
		Success: true,
		Likes:   state.Likes,
		Liked:   state.Liked,
	})
}
