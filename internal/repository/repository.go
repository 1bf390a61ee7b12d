// Package repository owns the two JSON documents that make up the datastore:
// the upload history and the threads list.
//
// STORAGE MODEL:
// Each document is read in full, mutated in memory and written back in full.
// There are no partial updates and no transactions. The bytes themselves live in
// a DocumentStore (file, sqlite, redis or memory; see the subpackages), so the
// History and Threads repositories below only deal with JSON and mutation rules.
//
//	handler → service → History/Threads → DocumentStore → disk / sqlite / redis
package repository

import (
	"context"
	"errors"

	"github.com/sakif/imageboard/internal/model"
)

// ErrNoDocument is returned by DocumentStore.Read when the named document has
// never been written.
var ErrNoDocument = errors.New("document does not exist")

// DocumentStore persists whole documents by name.
type DocumentStore interface {
	// Read returns the document's bytes, or ErrNoDocument if it is absent.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the document's bytes.
	Write(ctx context.Context, name string, data []byte) error
}

// HistoryRepository owns the upload-history document.
type HistoryRepository interface {
	Load(ctx context.Context) []model.UploadRecord
	Save(ctx context.Context, records []model.UploadRecord) error
	InsertNewest(ctx context.Context, record model.UploadRecord) error
	RemoveByPublicID(ctx context.Context, publicID string) (bool, error)
}

// ThreadRepository owns the threads document and the nested comment/reply/like mutations.
type ThreadRepository interface {
	Load(ctx context.Context) []model.Thread
	Save(ctx context.Context, threads []model.Thread) error
	FindByID(ctx context.Context, id int) (*model.Thread, error)
	CreateThread(ctx context.Context, title, description string, image *model.UploadRecord) (*model.Thread, error)
	AddComment(ctx context.Context, threadID int, username, content string) (*model.Comment, error)
	AddReply(ctx context.Context, threadID, commentIndex int, username, content string, image *model.UploadRecord) (*model.Reply, error)
	ToggleLike(ctx context.Context, threadID int) (*model.LikeState, error)
}
