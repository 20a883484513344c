package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// ============================================================================
// Metadata
// ============================================================================

func TestTransformer_NewMeta(t *testing.T) {
	meta := newTestTransformer().NewMeta()

	assert.Equal(t, "qpt-1767089730123-000000000", meta.SubmissionID)
	assert.Equal(t, "2025-12-30T10:15:30.123Z", meta.Timestamp)
	assert.Equal(t, "session-1767089730123", meta.SessionID)
	assert.Equal(t, 100, meta.CompletionPercentage)
}

func TestTransformer_SuffixIsBase36(t *testing.T) {
	tr := NewTransformer(TransformerConfig{Now: fixedClock, Random: zeroReader(37)})
	id := tr.NewMeta().SubmissionID

	suffix := id[strings.LastIndex(id, "-")+1:]
	assert.Equal(t, "111111111", suffix)
}

func TestTransformer_DefaultRandomnessIsUnique(t *testing.T) {
	tr := NewTransformer(TransformerConfig{Now: fixedClock})
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := tr.NewMeta().SubmissionID
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

// ============================================================================
// Totality
// ============================================================================

func TestTransform_DefaultStateHasEveryBaseColumn(t *testing.T) {
	rec := newTestTransformer().Transform(model.DefaultFormState())

	assert.Equal(t, model.BaseColumns(), rec.Keys())
	assert.Equal(t, 39, rec.Len())
	assert.Equal(t, "No", rec.String(model.ColLearningFollowUp))
	assert.Equal(t, "", rec.String(model.CulturePulseColumn("focus")))
	assert.Equal(t, "", rec.String(model.ColFeedbackLeaders))
}

func TestTransform_ZeroValueStateDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		rec := newTestTransformer().Transform(model.FormState{})
		assert.Equal(t, 39, rec.Len())
	})
}

// ============================================================================
// Formatting
// ============================================================================

func TestTransform_Values(t *testing.T) {
	s := completeCulturePulse()
	s.QuickPicks = []model.TagID{"impact", "custom-pick"}
	s.SelectedLearningTeammateIDs = []model.TeammateID{"robiul", "ghost-teammate"}
	s.LearningFollowUp = true
	s.SelectedTeammates = []model.TeammateID{"suha-hussein", "robiul"}
	s.TeammateSpecificFeedback = map[model.TeammateID]string{
		"robiul":       "  late handoffs  ",
		"suha-hussein": "   ",
	}
	s.SelectedBlockerTagsByTeammate = map[model.TeammateID][]model.TagID{
		"suha-hussein": {"handoffs", "meetings"},
		"robiul":       {},
	}
	s.Ratings["joy"] = 0
	s.ShoutoutSelectedTeammates = []model.TeammateID{"suha-hussein", "tajrian-rahman"}
	s.SelectedImpactByTeammate = map[model.TeammateID][]model.TagID{
		"tajrian-rahman": {"bar"},
		"suha-hussein":   {"unblocked", "clarity"},
	}
	s.FeedbackSelectedLeaders = []model.LeaderID{"tashfeen-sara", "sheikh-mohammed-fahim"}
	s.FeedbackLeaderFeedback = map[model.LeaderID]string{"sheikh-mohammed-fahim": "Great year"}
	s.FeedbackLeaderStopKeepStart = map[model.LeaderID]model.StopKeepStart{
		"tashfeen-sara":         {Stop: "late changes", Keep: "", Start: " demos "},
		"sheikh-mohammed-fahim": {Keep: "1:1s"},
	}

	rec := newTestTransformer().Transform(s)

	assert.Equal(t, "Delivered real impact, custom-pick", rec.String(model.ColQuickPicks))
	assert.Equal(t, "Robiul, ghost-teammate", rec.String(model.ColLearningTeammates))
	assert.Equal(t, "Yes", rec.String(model.ColLearningFollowUp))
	assert.Equal(t, "Process", rec.String(model.ColBlockerTags))
	assert.Equal(t, "Suha, Robiul", rec.String(model.ColBlockedByTeammates))
	assert.Equal(t, "Robiul: late handoffs", rec.String(model.ColTeammateSpecificFeedback))
	assert.Equal(t, "Suha: Handoffs & collaboration, Meeting hygiene", rec.String(model.ColBlockerTagsByTeammate))
	assert.Equal(t, "8/10", rec.String(model.CulturePulseColumn("focus")))
	assert.Equal(t, "", rec.String(model.CulturePulseColumn("joy")))
	assert.Equal(t, "Suha, Tajrian", rec.String(model.ColShoutoutTeammates))
	assert.Equal(t, "Suha: Unblocked me, Gave clarity | Tajrian: Raised the bar", rec.String(model.ColImpactTagsByTeammate))
	assert.Equal(t, "Tashfeen (Lead), Fahim (HOD)", rec.String(model.ColFeedbackLeaders))
	assert.Equal(t, "Fahim (HOD): Great year", rec.String(model.ColLeaderFeedback))
	assert.Equal(t, "Tashfeen (Lead): late changes", rec.String(model.ColLeaderStop))
	assert.Equal(t, "Fahim (HOD): 1:1s", rec.String(model.ColLeaderKeep))
	assert.Equal(t, "Tashfeen (Lead): demos", rec.String(model.ColLeaderStart))
}

// ============================================================================
// Leader Ratings
// ============================================================================

func TestTransform_LeaderColumnsOnlyForSelectedLeaders(t *testing.T) {
	s := completeCulturePulse()
	s.FeedbackLeaderRatings[fahim]["bias"] = 0

	rec := newTestTransformer().Transform(s)

	var dynamic []string
	for _, k := range rec.Keys() {
		if model.IsFeedbackColumn(k) {
			dynamic = append(dynamic, k)
		}
	}
	require.Len(t, dynamic, 10)
	assert.Equal(t, "feedback_Fahim_clarity", dynamic[0])
	assert.Equal(t, "9/10", rec.String("feedback_Fahim_clarity"))
	assert.Equal(t, "", rec.String("feedback_Fahim_bias"))
	assert.Equal(t, 49, rec.Len())

	// dynamic columns sit between feedbackLeaders and leaderFeedback
	keys := rec.Keys()
	idx := func(k string) int {
		for i, key := range keys {
			if key == k {
				return i
			}
		}
		return -1
	}
	assert.Equal(t, idx(model.ColFeedbackLeaders)+1, idx("feedback_Fahim_clarity"))
	assert.Equal(t, idx("feedback_Fahim_example")+1, idx(model.ColLeaderFeedback))
}

func TestTransformer_LeaderRatingsTable(t *testing.T) {
	s := model.DefaultFormState()
	s.FeedbackSelectedLeaders = []model.LeaderID{sara}
	s.FeedbackLeaderRatings = model.LeaderRatings{
		sara:  {"clarity": 6},
		fahim: {"clarity": 2},
	}

	table := newTestTransformer().LeaderRatings(s)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Tashfeen", table.Rows[0].LeaderName)
	assert.Equal(t, 6, table.Rows[0].Values[0])
	assert.Equal(t, model.LeadershipQuestions.IDs(), table.Questions)
}

func TestTransform_JSONIsOrdered(t *testing.T) {
	rec := newTestTransformer().Transform(model.DefaultFormState())
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), `{"submissionId":"qpt-1767089730123-000000000","timestamp":`))
	assert.Contains(t, string(b), `"completionPercentage":100`)
}
