package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/storage"
)

// FormStore owns the single in-progress answer set. Mutations are serialized
// by a mutex, reconciled, and written through to durable storage before they
// return. Storage failures never lose the in-memory state.
type FormStore struct {
	mu      sync.Mutex
	storage storage.Storage
	key     string
	roster  *model.Roster
	logger  *slog.Logger
	state   model.FormState
}

// FormStoreConfig holds configuration for the form store
type FormStoreConfig struct {
	Storage storage.Storage
	Key     string        // defaults to model.FormStateKey
	Roster  *model.Roster // defaults to model.DefaultRoster()
	Logger  *slog.Logger
}

// NewFormStore creates a store holding the default state. Call Load to
// hydrate it from storage.
func NewFormStore(cfg FormStoreConfig) *FormStore {
	key := cfg.Key
	if key == "" {
		key = model.FormStateKey
	}
	roster := cfg.Roster
	if roster == nil {
		roster = model.DefaultRoster()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FormStore{
		storage: cfg.Storage,
		key:     key,
		roster:  roster,
		logger:  logger.With(slog.String("component", "form_store")),
		state:   model.DefaultFormState(),
	}
}

// Load hydrates the state from storage over the defaults. Missing or
// malformed data falls back to defaults; individual fields of the wrong type
// keep their default while the rest are applied. Load never fails.
func (s *FormStore) Load(ctx context.Context) model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.read(ctx)
	return s.state.Clone()
}

func (s *FormStore) read(ctx context.Context) model.FormState {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return model.DefaultFormState()
	}
	if err != nil {
		s.logger.Warn("form state unreadable, using defaults", slog.String("error", err.Error()))
		return model.DefaultFormState()
	}

	state, fieldErrs, err := model.DecodeFormState(data)
	if err != nil {
		s.logger.Warn("form state malformed, using defaults", slog.String("error", err.Error()))
		return model.DefaultFormState()
	}
	for _, fe := range fieldErrs {
		s.logger.Warn("form state field reset to default",
			slog.String("field", fe.Field),
			slog.String("error", fe.Message),
		)
	}
	if n := state.Reconcile(); n > 0 {
		s.logger.Info("pruned orphaned form entries", slog.Int("count", n))
	}
	return state
}

// Snapshot returns a deep copy of the current state.
func (s *FormStore) Snapshot() model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update shallow-merges the patch: each field present replaces the current
// value. A patch that names unknown fields or carries values of the wrong
// type is rejected as a whole with a validation error.
func (s *FormStore) Update(ctx context.Context, patch model.FormPatch) (model.FormState, error) {
	return s.Mutate(ctx, func(state *model.FormState) error {
		if errs := state.Merge(patch); len(errs) > 0 {
			return model.NewValidationError(errs)
		}
		return nil
	})
}

// Mutate applies fn to a copy of the state. If fn succeeds the copy is
// reconciled, becomes the current state and is persisted.
func (s *FormStore) Mutate(ctx context.Context, fn func(state *model.FormState) error) (model.FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return s.state.Clone(), err
	}
	next.Reconcile()
	s.state = next
	s.persist(ctx)
	return s.state.Clone(), nil
}

// Clear resets the state to defaults and removes the durable slot.
func (s *FormStore) Clear(ctx context.Context) model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = model.DefaultFormState()
	if err := s.storage.Remove(ctx, s.key); err != nil {
		s.logger.Warn("failed to remove stored form state", slog.String("error", err.Error()))
	}
	return s.state.Clone()
}

// persist writes the current state. Callers hold mu.
func (s *FormStore) persist(ctx context.Context) {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn("failed to encode form state", slog.String("error", err.Error()))
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to persist form state", slog.String("error", err.Error()))
	}
}
