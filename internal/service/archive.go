package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/storage"
)

// Archive is the local record of finalized submissions, newest first.
type Archive struct {
	mu      sync.Mutex
	storage storage.Storage
	key     string
	max     int
	logger  *slog.Logger
}

// ArchiveConfig holds configuration for the archive
type ArchiveConfig struct {
	Storage    storage.Storage
	Key        string // defaults to model.SubmissionsKey
	MaxEntries int    // defaults to model.MaxArchivedSubmissions
	Logger     *slog.Logger
}

// NewArchive creates a new submission archive
func NewArchive(cfg ArchiveConfig) *Archive {
	a := &Archive{storage: cfg.Storage, key: cfg.Key, max: cfg.MaxEntries}
	if a.key == "" {
		a.key = model.SubmissionsKey
	}
	if a.max <= 0 {
		a.max = model.MaxArchivedSubmissions
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a.logger = logger.With(slog.String("component", "archive"))
	return a
}

// Save stores a snapshot of the state at the front of the archive, evicting
// the oldest entries beyond the cap.
func (a *Archive) Save(ctx context.Context, meta model.SubmissionMeta, state model.FormState) (model.SubmissionData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := a.read(ctx)
	if err != nil {
		return model.SubmissionData{}, fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}

	data := model.SubmissionData{SubmissionMeta: meta, FormState: state.Clone()}
	entries = append([]model.SubmissionData{data}, entries...)
	if len(entries) > a.max {
		a.logger.Info("evicting oldest submissions", slog.Int("count", len(entries)-a.max))
		entries = entries[:a.max]
	}
	if err := a.write(ctx, entries); err != nil {
		return model.SubmissionData{}, fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}

	a.logger.Info("submission saved locally",
		slog.String("submission_id", meta.SubmissionID),
		slog.Int("total", len(entries)),
	)
	return data, nil
}

// List returns every archived submission, newest first.
func (a *Archive) List(ctx context.Context) ([]model.SubmissionData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.read(ctx)
}

// Get returns one submission by id.
func (a *Archive) Get(ctx context.Context, id string) (model.SubmissionData, error) {
	entries, err := a.List(ctx)
	if err != nil {
		return model.SubmissionData{}, err
	}
	for _, e := range entries {
		if e.SubmissionID == id {
			return e, nil
		}
	}
	return model.SubmissionData{}, ErrSubmissionNotFound
}

// Delete removes one submission by id.
func (a *Archive) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := a.read(ctx)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.SubmissionID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return ErrSubmissionNotFound
	}
	return a.write(ctx, kept)
}

// ClearAll removes the archive slot.
func (a *Archive) ClearAll(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.storage.Remove(ctx, a.key)
}

// Export renders the archive as indented JSON.
func (a *Archive) Export(ctx context.Context) ([]byte, error) {
	entries, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(entries, "", "  ")
}

// Stats summarizes the archive size and time range.
func (a *Archive) Stats(ctx context.Context) (model.ArchiveStats, error) {
	entries, err := a.List(ctx)
	if err != nil {
		return model.ArchiveStats{}, err
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return model.ArchiveStats{}, err
	}
	size := len(raw)
	stats := model.ArchiveStats{
		TotalSubmissions: len(entries),
		StorageSize:      size,
		StorageSizeKB:    strconv.FormatFloat(float64(size)/1024, 'f', 2, 64),
		StorageSizeMB:    strconv.FormatFloat(float64(size)/(1024*1024), 'f', 2, 64),
	}
	if len(entries) > 0 {
		newest := entries[0].Timestamp
		oldest := entries[len(entries)-1].Timestamp
		stats.NewestSubmission = &newest
		stats.OldestSubmission = &oldest
	}
	return stats, nil
}

// read loads the archive. A missing or corrupt slot reads as empty.
// Callers hold mu.
func (a *Archive) read(ctx context.Context) ([]model.SubmissionData, error) {
	raw, err := a.storage.Get(ctx, a.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []model.SubmissionData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	var entries []model.SubmissionData
	if err := json.Unmarshal(raw, &entries); err != nil {
		a.logger.Warn("archive unreadable, treating as empty",
			slog.String("error", fmt.Errorf("%w: %v", ErrArchiveCorrupt, err).Error()),
		)
		return []model.SubmissionData{}, nil
	}
	if entries == nil {
		entries = []model.SubmissionData{}
	}
	return entries, nil
}

func (a *Archive) write(ctx context.Context, entries []model.SubmissionData) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}
	return a.storage.Set(ctx, a.key, raw)
}
