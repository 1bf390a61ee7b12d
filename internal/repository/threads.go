package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/model"
)

var _ ThreadRepository = (*Threads)(nil)

// Threads is the threads document: Threads, newest first, each owning its
// comments and each comment its replies.
//
// MUTATION FLOW:
// Every mutating method validates its arguments first, then loads the full
// document, edits it in memory and writes it back. Validation and not-found
// errors therefore never touch the document.
type Threads struct {
	store  DocumentStore
	name   string
	logger *slog.Logger
	now    clock

	mu sync.Mutex
}

// NewThreads creates a Threads repository stored under name in store.
func NewThreads(store DocumentStore, name string, logger *slog.Logger) *Threads {
	return &Threads{
		store:  store,
		name:   name,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for created_at stamps.
func (t *Threads) WithClock(now func() time.Time) *Threads {
	t.now = now
	return t
}

func (t *Threads) timestamp() string {
	return model.FormatTimestamp(t.now())
}

// Load returns every thread that decodes. An absent document is created empty;
// a document that cannot be read or is not a JSON array is reported as empty
// (and left untouched).
func (t *Threads) Load(ctx context.Context) []model.Thread {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load(ctx)
	if err != nil {
		return []model.Thread{}
	}
	return doc.threads()
}

// errUnreadable marks a document that exists but cannot be used. Mutations
// refuse to write over it.
var errUnreadable = errors.New("document exists but cannot be read")

func (t *Threads) load(ctx context.Context) (*threadsDocument, error) {
	data, err := t.store.Read(ctx, t.name)
	if errors.Is(err, ErrNoDocument) {
		t.logger.Info("no threads document, creating an empty one",
			slog.String("document", t.name))
		doc := &threadsDocument{}
		if err := t.save(ctx, doc); err != nil {
			t.logger.Warn("failed to create threads document",
				slog.String("document", t.name),
				slog.String("error", err.Error()),
			)
		}
		return doc, nil
	}
	if err != nil {
		t.logger.Error("failed to read threads",
			slog.String("document", t.name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", errUnreadable, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.logger.Error("failed to parse threads",
			slog.String("document", t.name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", errUnreadable, err)
	}

	doc := &threadsDocument{entries: make([]threadEntry, 0, len(raw))}
	for i, item := range raw {
		var thread model.Thread
		err := json.Unmarshal(item, &thread)
		if err == nil && string(item) == "null" {
			err = errors.New("null entry")
		}
		if err != nil {
			t.logger.Warn("keeping undecodable thread as is",
				slog.String("document", t.name),
				slog.Int("position", i),
				slog.String("error", err.Error()),
			)
			doc.entries = append(doc.entries, threadEntry{raw: item})
			continue
		}
		doc.entries = append(doc.entries, threadEntry{thread: &thread})
	}
	return doc, nil
}

// Save overwrites the document with threads.
func (t *Threads) Save(ctx context.Context, threads []model.Thread) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc := &threadsDocument{entries: make([]threadEntry, len(threads))}
	for i := range threads {
		doc.entries[i] = threadEntry{thread: &threads[i]}
	}
	return t.save(ctx, doc)
}

func (t *Threads) save(ctx context.Context, doc *threadsDocument) error {
	data, err := encodeDocument(doc.items())
	if err != nil {
		return apperror.Storage(t.name, err)
	}
	if err := t.store.Write(ctx, t.name, data); err != nil {
		return apperror.Storage(t.name, err)
	}
	t.logger.Debug("saved threads",
		slog.String("document", t.name),
		slog.Int("threads", doc.len()),
	)
	return nil
}

// mutate runs fn against a freshly loaded document and saves it if fn succeeds.
// A document that exists but cannot be read is never overwritten.
func (t *Threads) mutate(ctx context.Context, fn func(doc *threadsDocument) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load(ctx)
	if err != nil {
		return apperror.Storage(t.name, err)
	}
	if err := fn(doc); err != nil {
		return err
	}
	return t.save(ctx, doc)
}

// threadsDocument is the loaded document in stored order. Entries that do not
// decode into model.Thread (a numeric comment content, for example) keep their
// raw JSON, count towards the thread total and are written back unchanged, but
// lookups cannot see them.
type threadsDocument struct {
	entries []threadEntry
}

type threadEntry struct {
	thread *model.Thread
	raw    json.RawMessage
}

func (d *threadsDocument) len() int {
	return len(d.entries)
}

// find returns the decoded thread with the given id, or nil.
func (d *threadsDocument) find(id int) *model.Thread {
	for _, e := range d.entries {
		if e.thread != nil && e.thread.ID == id {
			return e.thread
		}
	}
	return nil
}

func (d *threadsDocument) prepend(thread model.Thread) {
	d.entries = append([]threadEntry{{thread: &thread}}, d.entries...)
}

func (d *threadsDocument) threads() []model.Thread {
	threads := make([]model.Thread, 0, len(d.entries))
	for _, e := range d.entries {
		if e.thread != nil {
			threads = append(threads, *e.thread)
		}
	}
	return threads
}

// items is what gets encoded: *model.Thread or json.RawMessage per entry.
func (d *threadsDocument) items() []any {
	items := make([]any, len(d.entries))
	for i, e := range d.entries {
		if e.thread != nil {
			items[i] = e.thread
		} else {
			items[i] = e.raw
		}
	}
	return items
}

func threadNotFound(id int) error {
	return apperror.NotFound("thread", strconv.Itoa(id))
}

// FindByID returns the thread with the given id.
func (t *Threads) FindByID(ctx context.Context, id int) (*model.Thread, error) {
	for _, thread := range t.Load(ctx) {
		if thread.ID == id {
			return &thread, nil
		}
	}
	return nil, threadNotFound(id)
}

// CreateThread prepends a new thread. Its id is the current thread count plus one.
func (t *Threads) CreateThread(ctx context.Context, title, description string, image *model.UploadRecord) (*model.Thread, error) {
	if isBlank(title) || isBlank(description) {
		return nil, apperror.ValidationFailed("title", "title and description are required")
	}

	var created model.Thread
	err := t.mutate(ctx, func(doc *threadsDocument) error {
		created = model.Thread{
			ID:          doc.len() + 1,
			Title:       title,
			Description: description,
			Username:    model.AnonymousUsername,
			Image:       image,
			Comments:    []model.Comment{},
			Likes:       0,
			Liked:       false,
			CreatedAt:   t.timestamp(),
		}
		doc.prepend(created)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	return &created, nil
}

// AddComment appends a comment (with no replies) to the thread.
func (t *Threads) AddComment(ctx context.Context, threadID int, username, content string) (*model.Comment, error) {
	if isBlank(content) {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}

	comment := model.Comment{
		Username:  usernameOrAnonymous(username),
		Content:   content,
		CreatedAt: t.timestamp(),
		Replies:   []model.Reply{},
	}
	err := t.mutate(ctx, func(doc *threadsDocument) error {
		thread := doc.find(threadID)
		if thread == nil {
			return threadNotFound(threadID)
		}
		thread.Comments = append(thread.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding comment to thread %d: %w", threadID, err)
	}
	return &comment, nil
}

// AddReply appends a reply to the comment at commentIndex of the thread.
func (t *Threads) AddReply(ctx context.Context, threadID, commentIndex int, username, content string, image *model.UploadRecord) (*model.Reply, error) {
	if isBlank(content) {
		return nil, apperror.ValidationFailed("content", "reply content is required")
	}

	reply := model.Reply{
		Username:  usernameOrAnonymous(username),
		Content:   content,
		Image:     image,
		CreatedAt: t.timestamp(),
	}
	err := t.mutate(ctx, func(doc *threadsDocument) error {
		thread := doc.find(threadID)
		if thread == nil {
			return threadNotFound(threadID)
		}
		comments := thread.Comments
		if commentIndex < 0 || commentIndex >= len(comments) {
			return apperror.OutOfRange("comment", commentIndex, len(comments))
		}
		comments[commentIndex].Replies = append(comments[commentIndex].Replies, reply)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding reply to thread %d comment %d: %w", threadID, commentIndex, err)
	}
	return &reply, nil
}

// ToggleLike flips the thread's liked flag, adding one like when it becomes
// liked and removing one when it is unliked. The count never drops below zero.
func (t *Threads) ToggleLike(ctx context.Context, threadID int) (*model.LikeState, error) {
	var state model.LikeState
	err := t.mutate(ctx, func(doc *threadsDocument) error {
		thread := doc.find(threadID)
		if thread == nil {
			return threadNotFound(threadID)
		}
		if thread.Liked {
			thread.Liked = false
			thread.Likes = max(thread.Likes-1, 0)
		} else {
			thread.Liked = true
			thread.Likes++
		}
		state = model.LikeState{Likes: thread.Likes, Liked: thread.Liked}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggling like on thread %d: %w", threadID, err)
	}
	return &state, nil
}
