package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/imageboard/internal/imagestore"
	"github.com/sakif/imageboard/internal/repository"
	"github.com/sakif/imageboard/internal/repository/memory"
)

// =========================================================================
// FAKE IMAGE HOST
// =========================================================================

// fakeImageStore keeps uploaded images in a map keyed by public id.
// UploadErr / DestroyErr / NoPublicID simulate a misbehaving host.
type fakeImageStore struct {
	images     map[string][]byte
	nextID     int
	UploadErr  error
	DestroyErr error
	NoPublicID bool
	uploads    int
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{images: make(map[string][]byte)}
}

func (f *fakeImageStore) Upload(_ context.Context, _ string, r io.Reader) (*imagestore.Uploaded, error) {
	f.uploads++
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f.NoPublicID {
		return &imagestore.Uploaded{URL: "https://img.test/none"}, nil
	}
	f.nextID++
	id := fmt.Sprintf("img-%d", f.nextID)
	f.images[id] = data
	return &imagestore.Uploaded{URL: "https://img.test/" + id, PublicID: id}, nil
}

func (f *fakeImageStore) Destroy(_ context.Context, publicID string) (bool, error) {
	if f.DestroyErr != nil {
		return false, f.DestroyErr
	}
	if _, ok := f.images[publicID]; !ok {
		return false, nil
	}
	delete(f.images, publicID)
	return true, nil
}

// brokenStore fails every document write.
type brokenStore struct {
	repository.DocumentStore
}

func (brokenStore) Write(context.Context, string, []byte) error {
	return errors.New("read-only file system")
}

// =========================================================================
// TEST HELPERS
// =========================================================================

var testNow = time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testEnv struct {
	docs    *memory.Store
	host    *fakeImageStore
	history *repository.History
	threads *repository.Threads
	images  *ImageService
	forum   *ForumService
}

// newTestEnv wires both services against an in-memory document store and a fake image host.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	docs := memory.New()
	host := newFakeImageStore()
	logger := testLogger()

	history := repository.NewHistory(docs, "upload_history.json", logger)
	threads := repository.NewThreads(docs, "threads.json", logger).
		WithClock(func() time.Time { return testNow })
	images := NewImageService(host, history, logger).
		WithClock(func() time.Time { return testNow })

	return &testEnv{
		docs:    docs,
		host:    host,
		history: history,
		threads: threads,
		images:  images,
		forum:   NewForumService(threads, images, logger),
	}
}
