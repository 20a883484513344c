package service

import (
	"crypto/rand"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// Record formatting
const (
	listSeparator      = ", "
	entrySeparator     = " | "
	timestampLayout    = "2006-01-02T15:04:05.000Z07:00"
	submissionIDPrefix = "qpt-"
	sessionIDPrefix    = "session-"
	randomSuffixLength = 9
	base36Digits       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Transformer flattens a form state into one spreadsheet row.
type Transformer struct {
	roster *model.Roster
	now    func() time.Time
	random io.Reader
}

// TransformerConfig holds configuration for the transformer
type TransformerConfig struct {
	Roster *model.Roster
	Now    func() time.Time
	Random io.Reader // source of submission id suffixes; defaults to crypto/rand
}

// NewTransformer creates a new record transformer
func NewTransformer(cfg TransformerConfig) *Transformer {
	t := &Transformer{roster: cfg.Roster, now: cfg.Now, random: cfg.Random}
	if t.roster == nil {
		t.roster = model.DefaultRoster()
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.random == nil {
		t.random = rand.Reader
	}
	return t
}

// NewMeta generates fresh submission metadata.
func (t *Transformer) NewMeta() model.SubmissionMeta {
	now := t.now().UTC()
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	return model.SubmissionMeta{
		SubmissionID:         submissionIDPrefix + millis + "-" + t.suffix(),
		Timestamp:            now.Format(timestampLayout),
		SessionID:            sessionIDPrefix + millis,
		CompletionPercentage: model.DefaultCompletionPercentage,
	}
}

func (t *Transformer) suffix() string {
	buf := make([]byte, randomSuffixLength)
	if _, err := io.ReadFull(t.random, buf); err != nil {
		// Fall back to the clock so the id stays well-formed.
		n := t.now().UnixNano()
		for i := range buf {
			buf[i] = byte(n >> (i * 7))
		}
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = base36Digits[int(b)%len(base36Digits)]
	}
	return string(out)
}

// Transform flattens the state with freshly generated metadata.
func (t *Transformer) Transform(state model.FormState) *model.FlatRecord {
	return t.TransformWithMeta(t.NewMeta(), state)
}

// TransformWithMeta flattens the state under the given metadata. Every base
// column is always present; absent answers render as empty values.
func (t *Transformer) TransformWithMeta(meta model.SubmissionMeta, state model.FormState) *model.FlatRecord {
	s := state.Clone()
	r := model.NewFlatRecord()

	r.Set(model.ColSubmissionID, meta.SubmissionID)
	r.Set(model.ColTimestamp, meta.Timestamp)
	r.Set(model.ColSessionID, meta.SessionID)
	r.Set(model.ColCompletionPercentage, meta.CompletionPercentage)

	r.Set(model.ColWinsText, s.WinsText)
	r.Set(model.ColQuickPicks, joinLabels(s.QuickPicks, quickPickLabels))
	r.Set(model.ColLearningTeammates, t.teammateNames(s.SelectedLearningTeammateIDs))
	r.Set(model.ColTeachingTeammates, t.teammateNames(s.SelectedTeachingTeammateIDs))
	r.Set(model.ColLearningFollowUp, yesNo(s.LearningFollowUp))
	r.Set(model.ColTeachingFollowUp, yesNo(s.TeachingFollowUp))

	r.Set(model.ColBlockerText, s.BlockerText)
	r.Set(model.ColBlockerTags, joinLabels(s.SelectedTags, blockerLabels))
	r.Set(model.ColInventText, s.InventText)
	r.Set(model.ColPeopleBlockerText, s.PeopleBlockerText)
	r.Set(model.ColBlockedByTeammates, t.teammateNames(s.SelectedTeammates))
	r.Set(model.ColTeammateSpecificFeedback, joinEntries(s.SelectedTeammates, s.TeammateSpecificFeedback, t.roster.TeammateName, strings.TrimSpace))
	r.Set(model.ColBlockerTagsByTeammate, joinEntries(s.SelectedTeammates, s.SelectedBlockerTagsByTeammate, t.roster.TeammateName, func(tags []model.TagID) string {
		return joinLabels(tags, blockerFeedbackTags)
	}))

	set := model.CulturePulseQuestions
	for _, q := range set.IDs() {
		r.Set(model.CulturePulseColumn(q), formatRating(s.Ratings[q], set.Scale))
	}
	r.Set(model.ColStrongestValue, s.StrongestValue)
	r.Set(model.ColWeakestValue, s.WeakestValue)

	r.Set(model.ColShoutoutTeammates, t.teammateNames(s.ShoutoutSelectedTeammates))
	r.Set(model.ColImpactTagsByTeammate, joinEntries(s.ShoutoutSelectedTeammates, s.SelectedImpactByTeammate, t.roster.TeammateName, func(tags []model.TagID) string {
		return joinLabels(tags, impactLabels)
	}))
	r.Set(model.ColShoutoutNotes, s.NoteText)

	r.Set(model.ColFeedbackLeaders, t.leaderNames(s.FeedbackSelectedLeaders))
	for _, col := range t.LeaderRatings(s).Columns() {
		r.Set(col.Key, col.Value)
	}
	leaders := s.FeedbackSelectedLeaders
	r.Set(model.ColLeaderFeedback, joinEntries(leaders, s.FeedbackLeaderFeedback, t.roster.LeaderNameWithRole, strings.TrimSpace))
	sks := s.FeedbackLeaderStopKeepStart
	r.Set(model.ColLeaderStop, joinEntries(leaders, sks, t.roster.LeaderNameWithRole, func(v model.StopKeepStart) string { return strings.TrimSpace(v.Stop) }))
	r.Set(model.ColLeaderKeep, joinEntries(leaders, sks, t.roster.LeaderNameWithRole, func(v model.StopKeepStart) string { return strings.TrimSpace(v.Keep) }))
	r.Set(model.ColLeaderStart, joinEntries(leaders, sks, t.roster.LeaderNameWithRole, func(v model.StopKeepStart) string { return strings.TrimSpace(v.Start) }))

	r.Set(model.ColCultureText, s.CultureText)
	return r
}

// LeaderRatings builds the rating grid for the selected leaders only.
func (t *Transformer) LeaderRatings(state model.FormState) model.LeaderRatingTable {
	set := model.LeadershipQuestions
	table := model.LeaderRatingTable{
		Questions: set.IDs(),
		Scale:     set.Scale,
		Rows:      make([]model.LeaderRatingRow, 0, len(state.FeedbackSelectedLeaders)),
	}
	for _, id := range state.FeedbackSelectedLeaders {
		row := model.LeaderRatingRow{
			Leader:     id,
			LeaderName: t.roster.LeaderName(id),
			Values:     make([]int, len(table.Questions)),
		}
		for i, q := range table.Questions {
			row.Values[i] = state.FeedbackLeaderRatings[id][q]
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func (t *Transformer) teammateNames(ids []model.TeammateID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = t.roster.TeammateName(id)
	}
	return strings.Join(names, listSeparator)
}

func (t *Transformer) leaderNames(ids []model.LeaderID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = t.roster.LeaderNameWithRole(id)
	}
	return strings.Join(names, listSeparator)
}

func joinLabels[T ~string](ids []T, labels map[string]string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if label, ok := labels[string(id)]; ok {
			out[i] = label
		} else {
			out[i] = string(id)
		}
	}
	return strings.Join(out, listSeparator)
}

// joinEntries renders "Name: value" pairs for every entry with content.
// Selected ids come first in selection order, then any other keys sorted.
func joinEntries[K ~string, V any](order []K, m map[K]V, name func(K) string, format func(V) string) string {
	seen := make(map[K]struct{}, len(order))
	keys := make([]K, 0, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok {
			if _, dup := seen[k]; !dup {
				keys = append(keys, k)
			}
		}
		seen[k] = struct{}{}
	}
	var rest []K
	for k := range m {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	keys = append(keys, rest...)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := format(m[k])
		if strings.TrimSpace(v) == "" {
			continue
		}
		parts = append(parts, name(k)+": "+v)
	}
	return strings.Join(parts, entrySeparator)
}

func formatRating(v int, scale model.RatingScale) string {
	if !scale.Contains(v) {
		return ""
	}
	return model.FormatRating(v, scale)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
