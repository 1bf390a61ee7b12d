// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: it opens the document backend and the
// image host selected in config, builds repositories → services → handlers,
// and maps URLs to handler methods. Keeping this out of main lets tests build a
// complete server around in-memory stores.
//
// DEPENDENCY CHAIN:
//
//	DocumentStore → repository.History / repository.Threads
//	imagestore.Store + History → service.ImageService
//	Threads + ImageService    → service.ForumService
//	services                  → handler.ImageHandler / ForumHandler / PageHandler
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/imageboard/internal/config"
	"github.com/sakif/imageboard/internal/handler"
	"github.com/sakif/imageboard/internal/imagestore"
	"github.com/sakif/imageboard/internal/middleware"
	"github.com/sakif/imageboard/internal/repository"
	"github.com/sakif/imageboard/internal/service"
)

// shutdownTimeout is how long in-flight requests get to finish after SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the document backend connection (sqlite file, redis client)
// when it opened it itself; Close releases it.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	close  CloseFunc
}

// New opens the configured stores and builds the server around them.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	docs, closeDocs, err := OpenDocumentStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s document store: %w", cfg.Store.Backend, err)
	}

	images, err := OpenImageStore(cfg)
	if err != nil {
		closeDocs()
		return nil, fmt.Errorf("creating %s image store: %w", cfg.Images.Provider, err)
	}

	s, err := NewWithStores(cfg, logger, docs, images)
	if err != nil {
		closeDocs()
		return nil, err
	}
	s.close = closeDocs
	return s, nil
}

// NewWithStores builds the server around stores the caller owns.
func NewWithStores(cfg *config.Config, logger *slog.Logger, docs repository.DocumentStore, images imagestore.Store) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		close:  noClose,
	}

	history := repository.NewHistory(docs, cfg.Store.HistoryName, logger)
	threads := repository.NewThreads(docs, cfg.Store.ThreadsName, logger)

	imageService := service.NewImageService(images, history, logger)
	forumService := service.NewForumService(threads, imageService, logger)

	if err := s.setupRoutes(imageService, forumService); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTES:
// GET  /                                   → thread list page
// GET  /post                               → new-thread page
// GET  /gallery                            → gallery page
// POST /upload                             → upload an image (multipart "image")
// POST /delete                             → delete an image ({"public_id"})
// POST /create_thread                      → create a thread (JSON)
// POST /add_comment/{threadID}             → comment on a thread (JSON)
// POST /add_reply/{threadID}/{commentIndex} → reply to a comment (form, optional image)
// POST /toggle_like/{threadID}             → flip a thread's like flag
// GET  /api/threads, /api/threads/{threadID}, /api/gallery → JSON read views
// GET  /healthz                            → liveness
// GET  /static/*                           → CSS/JS
// GET  {disk.base_url}/*                   → stored images (disk provider only)
//
// MIDDLEWARE ORDER:
// RequestID runs before Logger so every access-log line carries the id;
// Recoverer sits inside Logger so a recovered panic is logged as a 500.
func (s *Server) setupRoutes(images *service.ImageService, forum *service.ForumService) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// Set before Route so the /api sub-router inherits them.
	s.router.NotFound(handler.HandleNotFound)
	s.router.MethodNotAllowed(handler.HandleMethodNotAllowed)

	fileServer := http.FileServer(http.Dir(s.config.Server.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	if s.config.Images.Provider == config.ProviderDisk {
		prefix := strings.TrimRight(s.config.Disk.BaseURL, "/")
		if strings.HasPrefix(prefix, "/") {
			uploads := http.FileServer(http.Dir(s.config.Disk.Dir))
			s.router.Handle(prefix+"/*", http.StripPrefix(prefix+"/", uploads))
		}
	}

	pageHandler, err := handler.NewPageHandler(s.config.Server.TemplateDir, images, forum, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	s.router.Get("/", pageHandler.HandleIndex)
	s.router.Get("/post", pageHandler.HandlePost)
	s.router.Get("/gallery", pageHandler.HandleGallery)

	maxUpload := s.config.Server.MaxUploadBytes()
	imageHandler := handler.NewImageHandler(images, maxUpload, s.logger)
	forumHandler := handler.NewForumHandler(forum, maxUpload, s.logger)

	s.router.Post("/upload", imageHandler.HandleUpload)
	s.router.Post("/delete", imageHandler.HandleDelete)
	s.router.Post("/create_thread", forumHandler.HandleCreateThread)
	s.router.Post("/add_comment/{threadID}", forumHandler.HandleAddComment)
	s.router.Post("/add_reply/{threadID}/{commentIndex}", forumHandler.HandleAddReply)
	s.router.Post("/toggle_like/{threadID}", forumHandler.HandleToggleLike)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/threads", forumHandler.HandleListThreads)
		r.Get("/threads/{threadID}", forumHandler.HandleGetThread)
		r.Get("/gallery", imageHandler.HandleGallery)
	})

	s.router.Get("/healthz", handler.HandleHealth)

	return nil
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the document backend opened by New.
func (s *Server) Close() error {
	return s.close()
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully:
// 1. stop accepting new connections
// 2. wait up to 30s for in-flight requests
// 3. close the document backend
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Warn("closing document store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second, // multipart uploads
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("store", s.config.Store.Backend),
			slog.String("images", s.config.Images.Provider),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
