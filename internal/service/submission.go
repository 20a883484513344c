package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/storage"
)

// Receipt messages
const (
	msgSubmitted     = "Your culture pulse has been saved and submitted successfully!"
	msgRemotePending = "Saved locally, but the sheet submission failed. Your answers are safe."
)

const markerTrue = "true"

// IncompleteError is returned by Submit when completion is required and
// some sections do not validate.
type IncompleteError struct {
	Report model.SectionReport
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSurveyIncomplete, e.Report.Incomplete())
}

func (e *IncompleteError) Unwrap() error { return ErrSurveyIncomplete }

// SubmissionService runs the local-first submit flow: archive, then send
// to the sheet, then record completion.
type SubmissionService struct {
	store           *FormStore
	archive         *Archive
	transformer     *Transformer
	submitter       Submitter
	markers         storage.Storage
	requireComplete bool
	now             func() time.Time
	logger          *slog.Logger
}

// SubmissionServiceConfig holds configuration for the submission service
type SubmissionServiceConfig struct {
	Store           *FormStore
	Archive         *Archive
	Transformer     *Transformer
	Submitter       Submitter
	Markers         storage.Storage
	RequireComplete bool
	Now             func() time.Time
	Logger          *slog.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(cfg SubmissionServiceConfig) *SubmissionService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	transformer := cfg.Transformer
	if transformer == nil {
		transformer = NewTransformer(TransformerConfig{Now: now})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		store:           cfg.Store,
		archive:         cfg.Archive,
		transformer:     transformer,
		submitter:       cfg.Submitter,
		markers:         cfg.Markers,
		requireComplete: cfg.RequireComplete,
		now:             now,
		logger:          logger.With(slog.String("component", "submission_service")),
	}
}

// Submit archives the current answers and sends them to the sheet. Only an
// archive failure is an error; a failed remote send yields a receipt with
// outcome saved_locally_remote_pending.
func (s *SubmissionService) Submit(ctx context.Context) (model.SubmissionReceipt, error) {
	state := s.store.Snapshot()

	if s.requireComplete {
		report := BuildSectionReport(state, model.FlowCulturePulse)
		if !report.Complete {
			return model.SubmissionReceipt{}, &IncompleteError{Report: report}
		}
	}

	meta := s.transformer.NewMeta()
	if _, err := s.archive.Save(ctx, meta, state); err != nil {
		s.logger.Error("local archive failed", slog.String("error", err.Error()))
		return model.SubmissionReceipt{}, err
	}

	result := s.submitter.Submit(ctx, s.transformer.TransformWithMeta(meta, state))

	s.setMarker(ctx, model.PulseCompletedKey, markerTrue)
	s.setMarker(ctx, model.PulseCompletionDateKey, s.now().UTC().Format(timestampLayout))
	s.setMarker(ctx, model.PulseSubmissionIDKey, meta.SubmissionID)

	receipt := model.SubmissionReceipt{
		SubmissionID: meta.SubmissionID,
		Outcome:      model.OutcomeSubmitted,
		ArchivedAt:   meta.Timestamp,
		Remote:       result,
		Message:      msgSubmitted,
	}
	if !result.Sent() {
		receipt.Outcome = model.OutcomeRemotePending
		receipt.Message = msgRemotePending
		s.logger.Warn("remote submission pending",
			slog.String("submission_id", meta.SubmissionID),
			slog.String("error", result.Error),
		)
	}
	return receipt, nil
}

// Finish clears the form after a terminal submission.
func (s *SubmissionService) Finish(ctx context.Context) (model.FormState, error) {
	marker, err := s.Completion(ctx, model.FlowCulturePulse)
	if err != nil {
		return s.store.Snapshot(), err
	}
	if !marker.Completed {
		return s.store.Snapshot(), ErrNothingToFinish
	}
	return s.store.Clear(ctx), nil
}

// CompleteYearInReview marks the Year in Review flow as finished. The flow
// has no remote submission.
func (s *SubmissionService) CompleteYearInReview(ctx context.Context) (model.CompletionMarker, error) {
	if s.requireComplete {
		report := BuildSectionReport(s.store.Snapshot(), model.FlowYearInReview)
		if !report.Complete {
			return model.CompletionMarker{}, &IncompleteError{Report: report}
		}
	}
	s.setMarker(ctx, model.YearInReviewCompletedKey, markerTrue)
	s.setMarker(ctx, model.YearInReviewCompletionDateKey, s.now().UTC().Format(timestampLayout))
	return s.Completion(ctx, model.FlowYearInReview)
}

// Completion reads the completion markers of a flow.
func (s *SubmissionService) Completion(ctx context.Context, flow model.Flow) (model.CompletionMarker, error) {
	completedKey, dateKey, idKey := model.PulseCompletedKey, model.PulseCompletionDateKey, model.PulseSubmissionIDKey
	if flow == model.FlowYearInReview {
		completedKey, dateKey, idKey = model.YearInReviewCompletedKey, model.YearInReviewCompletionDateKey, ""
	}

	marker := model.CompletionMarker{Flow: flow}
	completed, err := s.getMarker(ctx, completedKey)
	if err != nil {
		return marker, err
	}
	marker.Completed = completed == markerTrue

	date, err := s.getMarker(ctx, dateKey)
	if err != nil {
		return marker, err
	}
	if t, perr := time.Parse(time.RFC3339Nano, date); perr == nil {
		marker.CompletedAt = &t
	}
	if idKey != "" {
		if marker.SubmissionID, err = s.getMarker(ctx, idKey); err != nil {
			return marker, err
		}
	}
	return marker, nil
}

func (s *SubmissionService) setMarker(ctx context.Context, key, value string) {
	if err := s.markers.Set(ctx, key, []byte(value)); err != nil {
		s.logger.Warn("failed to record completion marker",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *SubmissionService) getMarker(ctx context.Context, key string) (string, error) {
	v, err := s.markers.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read marker %s: %w", key, err)
	}
	return string(v), nil
}
