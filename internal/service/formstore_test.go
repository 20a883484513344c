package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/storage"
)

// ============================================================================
// Load
// ============================================================================

func TestFormStore_Load_MissingSlotYieldsDefaults(t *testing.T) {
	store := newTestStore(storage.NewMemory())

	got := store.Load(context.Background())
	if diff := cmp.Diff(model.DefaultFormState(), got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormStore_Load_MalformedJSONYieldsDefaults(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, model.FormStateKey, []byte(`{"winsText": "unterminated`)))

	got := newTestStore(mem).Load(ctx)
	if diff := cmp.Diff(model.DefaultFormState(), got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormStore_Load_BadFieldKeepsItsDefault(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, model.FormStateKey, []byte(`{
		"winsText": "Shipped it",
		"ratings": "not a map",
		"someRetiredField": 3
	}`)))

	got := newTestStore(mem).Load(ctx)
	assert.Equal(t, "Shipped it", got.WinsText)
	assert.NotNil(t, got.Ratings)
	assert.Empty(t, got.Ratings)
}

func TestFormStore_Load_ReadErrorYieldsDefaults(t *testing.T) {
	fs := newFlakyStorage()
	fs.failGet = true

	got := newTestStore(fs).Load(context.Background())
	assert.Equal(t, model.DefaultFormState(), got)
}

func TestFormStore_Load_PrunesOrphanedEntries(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, model.FormStateKey, []byte(`{
		"selectedTeammates": ["suha-hussein"],
		"teammateSpecificFeedback": {"suha-hussein": "kept", "robiul": "orphan"}
	}`)))

	got := newTestStore(mem).Load(ctx)
	assert.Equal(t, map[model.TeammateID]string{"suha-hussein": "kept"}, got.TeammateSpecificFeedback)
}

func TestFormStore_PersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	want := completeCulturePulse()
	want.FeedbackLeaderStopKeepStart = map[model.LeaderID]model.StopKeepStart{
		"sheikh-mohammed-fahim": {Stop: "a", Keep: "b", Start: "c"},
	}

	first := newTestStore(mem)
	_, err := first.Mutate(ctx, func(s *model.FormState) error {
		*s = want.Clone()
		return nil
	})
	require.NoError(t, err)

	got := newTestStore(mem).Load(ctx)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// ============================================================================
// Update
// ============================================================================

func TestFormStore_Update_ShallowMerge(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := newTestStore(mem)
	store.Load(ctx)

	_, err := store.Update(ctx, model.FormPatch{
		"winsText":   json.RawMessage(`"first"`),
		"quickPicks": json.RawMessage(`["learning"]`),
	})
	require.NoError(t, err)

	got, err := store.Update(ctx, model.FormPatch{"winsText": json.RawMessage(`"second"`)})
	require.NoError(t, err)
	assert.Equal(t, "second", got.WinsText)
	assert.Equal(t, []model.TagID{"learning"}, got.QuickPicks)

	raw, err := mem.Get(ctx, model.FormStateKey)
	require.NoError(t, err)
	var stored map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "second", stored["winsText"])
}

func TestFormStore_Update_RejectsWholePatchOnBadField(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemory())

	_, err := store.Update(ctx, model.FormPatch{
		"winsText":    json.RawMessage(`"applied?"`),
		"bogusField":  json.RawMessage(`1`),
		"blockerText": json.RawMessage(`42`),
	})
	var pd *model.ProblemDetails
	require.ErrorAs(t, err, &pd)
	require.Len(t, pd.Errors, 2)
	assert.Equal(t, "blockerText", pd.Errors[0].Field)
	assert.Equal(t, "bogusField", pd.Errors[1].Field)

	assert.Empty(t, store.Snapshot().WinsText)
}

func TestFormStore_Update_DeselectPrunes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemory())

	_, err := store.Update(ctx, model.FormPatch{
		"feedbackSelectedLeaders": json.RawMessage(`["sheikh-mohammed-fahim","tashfeen-sara"]`),
		"feedbackLeaderFeedback":  json.RawMessage(`{"sheikh-mohammed-fahim":"x","tashfeen-sara":"y"}`),
	})
	require.NoError(t, err)

	got, err := store.Update(ctx, model.FormPatch{
		"feedbackSelectedLeaders": json.RawMessage(`["tashfeen-sara"]`),
	})
	require.NoError(t, err)
	assert.Equal(t, map[model.LeaderID]string{"tashfeen-sara": "y"}, got.FeedbackLeaderFeedback)
}

func TestFormStore_PersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	fs := newFlakyStorage()
	fs.failSet = true
	store := newTestStore(fs)

	got, err := store.Update(ctx, model.FormPatch{"cultureText": json.RawMessage(`"still here"`)})
	require.NoError(t, err)
	assert.Equal(t, "still here", got.CultureText)
	assert.Equal(t, "still here", store.Snapshot().CultureText)

	_, err = fs.Storage.Get(ctx, model.FormStateKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFormStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemory())
	_, err := store.Update(ctx, model.FormPatch{"quickPicks": json.RawMessage(`["learning"]`)})
	require.NoError(t, err)

	snap := store.Snapshot()
	snap.QuickPicks[0] = "mutated"
	snap.Ratings["focus"] = 3

	again := store.Snapshot()
	assert.Equal(t, []model.TagID{"learning"}, again.QuickPicks)
	assert.Empty(t, again.Ratings)
}

// ============================================================================
// Clear
// ============================================================================

func TestFormStore_Clear(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	store := newTestStore(mem)
	_, err := store.Update(ctx, model.FormPatch{"winsText": json.RawMessage(`"x"`)})
	require.NoError(t, err)

	got := store.Clear(ctx)
	assert.Equal(t, model.DefaultFormState(), got)

	_, err = mem.Get(ctx, model.FormStateKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFormStore_Clear_StorageFailureStillResets(t *testing.T) {
	ctx := context.Background()
	fs := newFlakyStorage()
	store := newTestStore(fs)
	_, err := store.Update(ctx, model.FormPatch{"winsText": json.RawMessage(`"x"`)})
	require.NoError(t, err)

	fs.failRm = true
	got := store.Clear(ctx)
	assert.Empty(t, got.WinsText)
	assert.Empty(t, store.Snapshot().WinsText)
}
