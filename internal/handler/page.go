// Package handler contains the HTTP request handlers of the imageboard.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (path params, JSON bodies, forms)
// 2. Call the service layer
// 3. Write the response: an HTML page or the JSON envelope (see response.go)
//
// Handlers hold no business rules; validation and persistence live in
// internal/service and internal/repository.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/imageboard/internal/service"
)

// Page names; each is parsed together with base.html into its own template set.
const (
	pageIndex   = "index.html"
	pagePost    = "post.html"
	pageGallery = "gallery.html"
)

// PageHandler renders the HTML pages. Templates are parsed once at startup.
type PageHandler struct {
	pages  map[string]*template.Template
	images *service.ImageService
	forum  *service.ForumService
	logger *slog.Logger
}

// NewPageHandler parses the page templates from templateDir.
//
// TEMPLATE COMPOSITION:
// base.html defines the layout with a {{template "content" .}} placeholder and
// every page defines {{define "content"}}. Pages are parsed into separate sets
// because they all define "content".
func NewPageHandler(templateDir string, images *service.ImageService, forum *service.ForumService, logger *slog.Logger) (*PageHandler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{pageIndex, pagePost, pageGallery} {
		tmpl, err := template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, name),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{
		pages:  pages,
		images: images,
		forum:  forum,
		logger: logger,
	}, nil
}

// HandleIndex serves the thread list.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, pageIndex, map[string]interface{}{
		"Title":   "Imageboard",
		"Threads": h.forum.ListThreads(r.Context()),
	})
}

// HandlePost serves the new-thread form.
func (h *PageHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	h.render(w, pagePost, map[string]interface{}{
		"Title": "New thread · Imageboard",
	})
}

// HandleGallery serves the uploaded images grouped by day.
func (h *PageHandler) HandleGallery(w http.ResponseWriter, r *http.Request) {
	h.render(w, pageGallery, map[string]interface{}{
		"Title":  "Gallery · Imageboard",
		"Groups": h.images.Gallery(r.Context()),
	})
}

func (h *PageHandler) render(w http.ResponseWriter, page string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.pages[page].ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleHealth reports that the process is serving.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleNotFound answers unmatched routes with the failure envelope.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusNotFound, "Not found")
}

// HandleMethodNotAllowed answers a known route called with the wrong method.
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
}
