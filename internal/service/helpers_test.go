package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/storage"
)

// ============================================================================
// Test Doubles
// ============================================================================

var errStorageDown = errors.New("storage down")

// flakyStorage wraps a Storage and fails the operations whose flags are set.
type flakyStorage struct {
	storage.Storage
	mu       sync.Mutex
	failGet  bool
	failSet  bool
	failRm   bool
	failKeys map[string]bool
	setCalls int
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{Storage: storage.NewMemory(), failKeys: map[string]bool{}}
}

func (f *flakyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, errStorageDown
	}
	return f.Storage.Get(ctx, key)
}

func (f *flakyStorage) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.setCalls++
	fail := f.failSet || f.failKeys[key]
	f.mu.Unlock()
	if fail {
		return errStorageDown
	}
	return f.Storage.Set(ctx, key, value)
}

func (f *flakyStorage) Remove(ctx context.Context, key string) error {
	if f.failRm {
		return errStorageDown
	}
	return f.Storage.Remove(ctx, key)
}

// mockSubmitter records submitted records and returns a canned result.
type mockSubmitter struct {
	mu      sync.Mutex
	result  model.SubmitResult
	records []*model.FlatRecord
}

func (m *mockSubmitter) Submit(ctx context.Context, record *model.FlatRecord) model.SubmitResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return m.result
}

// zeroReader yields an endless stream of one byte value.
type zeroReader byte

func (z zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(z)
	}
	return len(p), nil
}

var fixedNow = time.Date(2025, 12, 30, 10, 15, 30, 123_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(s storage.Storage) *FormStore {
	return NewFormStore(FormStoreConfig{Storage: s, Logger: quietLogger()})
}

func newTestTransformer() *Transformer {
	return NewTransformer(TransformerConfig{Now: fixedClock, Random: zeroReader(0)})
}

// ratingsFor rates every question in the set with v.
func ratingsFor(set model.QuestionSet, v int) map[model.QuestionID]int {
	m := make(map[model.QuestionID]int, len(set.Questions))
	for _, q := range set.IDs() {
		m[q] = v
	}
	return m
}

// completeCulturePulse returns a state in which every Culture Pulse section
// validates.
func completeCulturePulse() model.FormState {
	s := model.DefaultFormState()
	s.WinsText = "Shipped the new onboarding"
	s.QuickPicks = []model.TagID{"impact"}

	s.BlockerText = "Slow reviews"
	s.SelectedTags = []model.TagID{"process"}
	s.InventText = "Automate the release notes"
	s.PeopleBlockerText = "Waiting on design"

	s.Ratings = ratingsFor(model.CulturePulseQuestions, 8)
	s.StrongestValue = "Product First"
	s.WeakestValue = "Invent & Simplify"

	s.ShoutoutSelectedTeammates = []model.TeammateID{"suha-hussein"}
	s.SelectedImpactByTeammate = map[model.TeammateID][]model.TagID{"suha-hussein": {"unblocked"}}

	s.FeedbackSelectedLeaders = []model.LeaderID{"sheikh-mohammed-fahim"}
	s.FeedbackLeaderRatings = model.LeaderRatings{"sheikh-mohammed-fahim": ratingsFor(model.LeadershipQuestions, 9)}

	s.CultureText = "Keep the honesty"
	return s
}
