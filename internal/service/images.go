// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes the JSON envelope
//	Service (Business layer) → validates, orchestrates the image host and repositories, logs
//	Repository (Data layer)  → reads/rewrites the JSON documents
//
// Services take repository interfaces and an imagestore.Store, never concrete
// backends, so tests run them against repository/memory and a fake image host.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/imagestore"
	"github.com/sakif/imageboard/internal/model"
	"github.com/sakif/imageboard/internal/repository"
)

// ImageService handles uploads, deletions and the gallery.
type ImageService struct {
	store   imagestore.Store
	history repository.HistoryRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewImageService creates an ImageService.
func NewImageService(store imagestore.Store, history repository.HistoryRepository, logger *slog.Logger) *ImageService {
	return &ImageService{
		store:   store,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for upload dates.
func (s *ImageService) WithClock(now func() time.Time) *ImageService {
	s.now = now
	return s
}

// Upload sends the image to the image host and records it as the newest
// history entry, dated at call time.
//
// ERRORS:
//   - apperror.ErrValidation → the image host refused the file as not an image
//   - apperror.ErrRemote     → the image host call failed
//   - apperror.ErrUpload     → the host answered without a public id or url
//   - apperror.ErrStorage    → the history document could not be written
func (s *ImageService) Upload(ctx context.Context, filename string, r io.Reader) (*model.UploadRecord, error) {
	uploaded, err := s.store.Upload(ctx, filename, r)
	if errors.Is(err, apperror.ErrValidation) {
		s.logger.Warn("image rejected",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if err != nil {
		s.logger.Error("image upload failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Remote("upload", err)
	}
	if uploaded == nil || strings.TrimSpace(uploaded.PublicID) == "" {
		s.logger.Error("image host returned no public id", slog.String("filename", filename))
		return nil, apperror.UploadFailed("image host returned no public_id")
	}
	if uploaded.URL == "" {
		s.logger.Error("image host returned no url", slog.String("public_id", uploaded.PublicID))
		return nil, apperror.UploadFailed("image host returned no url")
	}

	record := model.UploadRecord{
		URL:      uploaded.URL,
		Date:     model.FormatTimestamp(s.now()),
		PublicID: uploaded.PublicID,
	}
	if err := s.history.InsertNewest(ctx, record); err != nil {
		s.logger.Error("failed to record upload",
			slog.String("public_id", record.PublicID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recording upload: %w", err)
	}

	s.logger.Info("image uploaded", slog.String("public_id", record.PublicID))
	return &record, nil
}

// Delete removes the image from the image host and from the history.
//
// Both sides are always attempted. A failing host call is only logged; the
// delete is reported as not found only when the host deleted nothing AND no
// history entry was removed. That way an image that exists on just one side is
// still cleaned up.
func (s *ImageService) Delete(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return apperror.ValidationFailed("public_id", "invalid or missing public_id")
	}

	remoteOK, err := s.store.Destroy(ctx, publicID)
	switch {
	case err != nil:
		s.logger.Warn("image host delete failed",
			slog.String("public_id", publicID),
			slog.String("error", err.Error()),
		)
		remoteOK = false
	case !remoteOK:
		s.logger.Warn("image host had nothing to delete", slog.String("public_id", publicID))
	default:
		s.logger.Info("image host deleted image", slog.String("public_id", publicID))
	}

	removed, err := s.history.RemoveByPublicID(ctx, publicID)
	if err != nil {
		s.logger.Error("failed to remove history entry",
			slog.String("public_id", publicID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting image: %w", err)
	}
	if removed {
		s.logger.Info("removed image from history", slog.String("public_id", publicID))
	} else {
		s.logger.Warn("no history entry for image", slog.String("public_id", publicID))
	}

	if !remoteOK && !removed {
		return apperror.NotFound("image", publicID)
	}
	return nil
}

// Gallery returns the upload history grouped by day, most recent day first.
func (s *ImageService) Gallery(ctx context.Context) []model.DateGroup {
	return GroupByDate(s.history.Load(ctx))
}

// GroupByDate buckets records by the date portion of their timestamp. Groups are
// sorted by date descending; records inside a group keep their input order.
func GroupByDate(records []model.UploadRecord) []model.DateGroup {
	index := make(map[string]int)
	groups := []model.DateGroup{}

	for _, record := range records {
		day := record.Day()
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, model.DateGroup{Date: day})
		}
		groups[i].Images = append(groups[i].Images, record)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Date > groups[b].Date
	})
	return groups
}
