package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/model"
	"github.com/sakif/imageboard/internal/repository"
)

// NewThread is the input of ForumService.CreateThread. The image fields refer to
// an image uploaded beforehand through /upload; the image is attached only
// when ImageURL is set.
type NewThread struct {
	Title       string
	Description string
	ImageURL    string
	PublicID    string
	Date        string
}

// ImageUpload is an image file received with a reply.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// NewReply is the input of ForumService.AddReply.
type NewReply struct {
	ThreadID     int
	CommentIndex int
	Username     string
	Content      string
	Image        *ImageUpload // nil when the reply has no image
}

// ForumService handles threads, comments, replies and likes.
type ForumService struct {
	threads repository.ThreadRepository
	images  *ImageService
	logger  *slog.Logger
}

// NewForumService creates a ForumService. images handles reply image uploads.
func NewForumService(threads repository.ThreadRepository, images *ImageService, logger *slog.Logger) *ForumService {
	return &ForumService{
		threads: threads,
		images:  images,
		logger:  logger,
	}
}

// ListThreads returns every thread, newest first.
func (s *ForumService) ListThreads(ctx context.Context) []model.Thread {
	return s.threads.Load(ctx)
}

// GetThread returns one thread.
func (s *ForumService) GetThread(ctx context.Context, id int) (*model.Thread, error) {
	return s.threads.FindByID(ctx, id)
}

// CreateThread validates and stores a new thread.
func (s *ForumService) CreateThread(ctx context.Context, in NewThread) (*model.Thread, error) {
	var image *model.UploadRecord
	if in.ImageURL != "" {
		image = &model.UploadRecord{
			URL:      in.ImageURL,
			PublicID: in.PublicID,
			Date:     in.Date,
		}
	}

	thread, err := s.threads.CreateThread(ctx, in.Title, in.Description, image)
	if err != nil {
		return nil, err
	}

	s.logger.Info("thread created",
		slog.Int("id", thread.ID),
		slog.String("title", thread.Title),
	)
	return thread, nil
}

// AddComment adds a comment to a thread.
func (s *ForumService) AddComment(ctx context.Context, threadID int, username, content string) (*model.Comment, error) {
	comment, err := s.threads.AddComment(ctx, threadID, username, content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment added", slog.Int("thread_id", threadID))
	return comment, nil
}

// AddReply adds a reply to a comment, uploading its image first when there is one.
//
// ORDER OF CHECKS:
// Content, thread and comment index are checked before the image is uploaded,
// so a reply that would be rejected never leaves an orphaned image behind.
// The repository repeats the checks when it applies the mutation.
func (s *ForumService) AddReply(ctx context.Context, in NewReply) (*model.Reply, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperror.ValidationFailed("content", "reply content is required")
	}

	thread, err := s.threads.FindByID(ctx, in.ThreadID)
	if err != nil {
		return nil, err
	}
	if in.CommentIndex < 0 || in.CommentIndex >= len(thread.Comments) {
		return nil, apperror.OutOfRange("comment", in.CommentIndex, len(thread.Comments))
	}

	var image *model.UploadRecord
	if in.Image != nil {
		image, err = s.images.Upload(ctx, in.Image.Filename, in.Image.Body)
		if err != nil {
			return nil, fmt.Errorf("uploading reply image: %w", err)
		}
	}

	reply, err := s.threads.AddReply(ctx, in.ThreadID, in.CommentIndex, in.Username, in.Content, image)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reply added",
		slog.Int("thread_id", in.ThreadID),
		slog.Int("comment_index", in.CommentIndex),
		slog.Bool("with_image", image != nil),
	)
	return reply, nil
}

// ToggleLike flips the thread's global like flag.
func (s *ForumService) ToggleLike(ctx context.Context, threadID int) (*model.LikeState, error) {
	state, err := s.threads.ToggleLike(ctx, threadID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("like toggled",
		slog.Int("thread_id", threadID),
		slog.Int("likes", state.Likes),
		slog.Bool("liked", state.Liked),
	)
	return state, nil
}
