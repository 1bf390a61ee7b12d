package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/imageboard/internal/apperror"
	"github.com/sakif/imageboard/internal/model"
)

var _ HistoryRepository = (*History)(nil)

// History is the upload-history document: UploadRecords, newest first.
//
// LOAD NEVER FAILS:
// A missing, unreadable or unparsable document is reported as an empty history
// and logged. Only writes surface errors (as apperror.ErrStorage).
type History struct {
	store  DocumentStore
	name   string
	logger *slog.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewHistory creates a History stored under name in store.
func NewHistory(store DocumentStore, name string, logger *slog.Logger) *History {
	return &History{
		store:  store,
		name:   name,
		logger: logger,
	}
}

// Load returns the valid records of the document.
//
// Records missing url/date or with a blank (or non-string) public_id are dropped,
// and if anything was dropped the filtered list is written back immediately.
// An absent document yields an empty list and is NOT created.
func (h *History) Load(ctx context.Context) []model.UploadRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

func (h *History) load(ctx context.Context) []model.UploadRecord {
	data, err := h.store.Read(ctx, h.name)
	if errors.Is(err, ErrNoDocument) {
		h.logger.Debug("no history document, starting with empty history",
			slog.String("document", h.name))
		return []model.UploadRecord{}
	}
	if err != nil {
		h.logger.Error("failed to read history",
			slog.String("document", h.name),
			slog.String("error", err.Error()),
		)
		return []model.UploadRecord{}
	}

	// Decode record by record so that one malformed entry (e.g. a numeric
	// public_id) is dropped instead of failing the whole document.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		h.logger.Error("failed to parse history",
			slog.String("document", h.name),
			slog.String("error", err.Error()),
		)
		return []model.UploadRecord{}
	}

	valid := make([]model.UploadRecord, 0, len(raw))
	for _, item := range raw {
		var record model.UploadRecord
		if err := json.Unmarshal(item, &record); err != nil {
			continue
		}
		if !record.Valid() {
			continue
		}
		valid = append(valid, record)
	}

	if dropped := len(raw) - len(valid); dropped > 0 {
		h.logger.Info("filtered invalid history entries",
			slog.String("document", h.name),
			slog.Int("dropped", dropped),
		)
		if err := h.save(ctx, valid); err != nil {
			h.logger.Warn("failed to persist filtered history",
				slog.String("document", h.name),
				slog.String("error", err.Error()),
			)
		}
	}

	return valid
}

// Save overwrites the document with records.
func (h *History) Save(ctx context.Context, records []model.UploadRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.save(ctx, records)
}

func (h *History) save(ctx context.Context, records []model.UploadRecord) error {
	if records == nil {
		records = []model.UploadRecord{}
	}
	data, err := encodeDocument(records)
	if err != nil {
		return apperror.Storage(h.name, err)
	}
	if err := h.store.Write(ctx, h.name, data); err != nil {
		return apperror.Storage(h.name, err)
	}
	h.logger.Debug("saved history",
		slog.String("document", h.name),
		slog.Int("records", len(records)),
	)
	return nil
}

// InsertNewest prepends record to the history.
func (h *History) InsertNewest(ctx context.Context, record model.UploadRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := h.load(ctx)
	records = append([]model.UploadRecord{record}, records...)
	if err := h.save(ctx, records); err != nil {
		return fmt.Errorf("inserting %s: %w", record.PublicID, err)
	}
	return nil
}

// RemoveByPublicID drops every record with the given public id. The document is
// only rewritten when something was removed; the result reports whether it was.
func (h *History) RemoveByPublicID(ctx context.Context, publicID string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := h.load(ctx)
	kept := make([]model.UploadRecord, 0, len(records))
	for _, record := range records {
		if record.PublicID != publicID {
			kept = append(kept, record)
		}
	}

	if len(kept) == len(records) {
		return false, nil
	}
	if err := h.save(ctx, kept); err != nil {
		return false, fmt.Errorf("removing %s: %w", publicID, err)
	}
	return true, nil
}
