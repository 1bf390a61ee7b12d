package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/imageboard/internal/handler"
	"github.com/sakif/imageboard/internal/imagestore"
	"github.com/sakif/imageboard/internal/repository"
	"github.com/sakif/imageboard/internal/repository/memory"
	"github.com/sakif/imageboard/internal/service"
)

const maxUpload = 1 << 20

// fakeHost is an in-memory image host.
type fakeHost struct {
	UploadErr  error
	DestroyErr error
	stored     map[string]bool
	uploads    int
}

func (f *fakeHost) Upload(_ context.Context, _ string, r io.Reader) (*imagestore.Uploaded, error) {
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	f.uploads++
	id := fmt.Sprintf("img-%d", f.uploads)
	f.stored[id] = true
	return &imagestore.Uploaded{URL: "https://img.test/" + id, PublicID: id}, nil
}

func (f *fakeHost) Destroy(_ context.Context, publicID string) (bool, error) {
	if f.DestroyErr != nil {
		return false, f.DestroyErr
	}
	ok := f.stored[publicID]
	delete(f.stored, publicID)
	return ok, nil
}

// docStore is a memory.Store whose writes can be made to fail.
type docStore struct {
	*memory.Store
	writeErr error
}

func (d *docStore) Write(ctx context.Context, name string, data []byte) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	return d.Store.Write(ctx, name, data)
}

// testEnv is a router wired exactly like the server's, on in-memory stores.
type testEnv struct {
	router http.Handler
	host   *fakeHost
	docs   *docStore
	forum  *service.ForumService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := testLogger()
	docs := &docStore{Store: memory.New()}
	host := &fakeHost{stored: map[string]bool{}}

	history := repository.NewHistory(docs, "upload_history.json", logger)
	threads := repository.NewThreads(docs, "threads.json", logger)
	images := service.NewImageService(host, history, logger)
	forum := service.NewForumService(threads, images, logger)

	imageHandler := handler.NewImageHandler(images, maxUpload, logger)
	forumHandler := handler.NewForumHandler(forum, maxUpload, logger)

	r := chi.NewRouter()
	r.Post("/upload", imageHandler.HandleUpload)
	r.Post("/delete", imageHandler.HandleDelete)
	r.Post("/create_thread", forumHandler.HandleCreateThread)
	r.Post("/add_comment/{threadID}", forumHandler.HandleAddComment)
	r.Post("/add_reply/{threadID}/{commentIndex}", forumHandler.HandleAddReply)
	r.Post("/toggle_like/{threadID}", forumHandler.HandleToggleLike)
	r.Get("/api/threads", forumHandler.HandleListThreads)
	r.Get("/api/threads/{threadID}", forumHandler.HandleGetThread)
	r.Get("/api/gallery", imageHandler.HandleGallery)
	r.Get("/healthz", handler.HandleHealth)

	return &testEnv{router: r, host: host, docs: docs, forum: forum}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

// postForm sends fields as multipart/form-data, with an "image" part when image is non-nil.
func (e *testEnv) postForm(t *testing.T, path string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "cat.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req)
}

// createThread creates a thread through the service and returns its id.
func (e *testEnv) createThread(t *testing.T, title string) int {
	t.Helper()
	thread, err := e.forum.CreateThread(context.Background(), service.NewThread{Title: title, Description: "about " + title})
	require.NoError(t, err)
	return thread.ID
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

var errHostDown = errors.New("host down")
