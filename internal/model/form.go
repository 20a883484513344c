package model

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// FormStateKey is the durable slot holding the in-progress answers.
const FormStateKey = "qpt-form-data"

// StopKeepStart is the three-part free text attached to a leader.
type StopKeepStart struct {
	Stop  string `json:"stop"`
	Keep  string `json:"keep"`
	Start string `json:"start"`
}

// IsEmpty reports whether all three parts are blank.
func (s StopKeepStart) IsEmpty() bool {
	return strings.TrimSpace(s.Stop) == "" &&
		strings.TrimSpace(s.Keep) == "" &&
		strings.TrimSpace(s.Start) == ""
}

// StopKeepStart field names
const (
	FieldStop  = "stop"
	FieldKeep  = "keep"
	FieldStart = "start"
)

// LeaderRatings maps leader -> question -> rating.
type LeaderRatings map[LeaderID]map[QuestionID]int

// FormState is the full answer set of one respondent. JSON names match the
// persisted snapshot format so stored state survives upgrades.
type FormState struct {
	// Wins
	WinsText                    string       `json:"winsText"`
	QuickPicks                  []TagID      `json:"quickPicks"`
	SelectedLearningTeammateIDs []TeammateID `json:"selectedLearningTeammateIds"`
	SelectedTeachingTeammateIDs []TeammateID `json:"selectedTeachingTeammateIds"`
	LearningFollowUp            bool         `json:"learningFollowUp"`
	TeachingFollowUp            bool         `json:"teachingFollowUp"`

	// Blockers
	BlockerText                   string                 `json:"blockerText"`
	SelectedTags                  []TagID                `json:"selectedTags"`
	InventText                    string                 `json:"inventText"`
	PeopleBlockerText             string                 `json:"peopleBlockerText"`
	SelectedTeammates             []TeammateID           `json:"selectedTeammates"`
	TeammateSpecificFeedback      map[TeammateID]string  `json:"teammateSpecificFeedback"`
	SelectedBlockerTagsByTeammate map[TeammateID][]TagID `json:"selectedBlockerTagsByTeammate"`

	// Culture Pulse
	Ratings        map[QuestionID]int `json:"ratings"`
	StrongestValue string             `json:"strongestValue"`
	WeakestValue   string             `json:"weakestValue"`

	// Shoutouts
	ShoutoutSelectedTeammates []TeammateID           `json:"shoutoutSelectedTeammates"`
	SelectedImpactByTeammate  map[TeammateID][]TagID `json:"selectedImpactByTeammate"`
	NoteText                  string                 `json:"noteText"`

	// Leadership feedback
	FeedbackSelectedLeaders     []LeaderID                 `json:"feedbackSelectedLeaders"`
	FeedbackLeaderRatings       LeaderRatings              `json:"feedbackLeaderRatings"`
	FeedbackLeaderFeedback      map[LeaderID]string        `json:"feedbackLeaderFeedback"`
	FeedbackLeaderStopKeepStart map[LeaderID]StopKeepStart `json:"feedbackLeaderStopKeepStart"`
	FeedbackAnonymous           bool                       `json:"feedbackAnonymous"`
	Actionable                  bool                       `json:"actionable"`

	// Culture Protection
	CultureText string `json:"cultureText"`

	// Year in Review
	YearInReviewWinsText            string                     `json:"yearInReviewWinsText"`
	YearInReviewQuickPicks          []TagID                    `json:"yearInReviewQuickPicks"`
	YearInReviewBlockerText         string                     `json:"yearInReviewBlockerText"`
	YearInReviewBlockerTags         []TagID                    `json:"yearInReviewBlockerTags"`
	YearInReviewWishMoreOf          string                     `json:"yearInReviewWishMoreOf"`
	YearInReviewPulseRatings        map[QuestionID]int         `json:"yearInReviewPulseRatings"`
	YearInReviewPeopleWhoHelped     []TeammateID               `json:"yearInReviewPeopleWhoHelped"`
	YearInReviewPeopleHelpReasons   map[TeammateID][]TagID     `json:"yearInReviewPeopleHelpReasons"`
	YearInReviewSelectedLeaders     []LeaderID                 `json:"yearInReviewSelectedLeaders"`
	YearInReviewLeaderRatings       LeaderRatings              `json:"yearInReviewLeaderRatings"`
	YearInReviewLeaderFeedback      map[LeaderID]string        `json:"yearInReviewLeaderFeedback"`
	YearInReviewLeaderStopKeepStart map[LeaderID]StopKeepStart `json:"yearInReviewLeaderStopKeepStart"`
	YearInReviewLeaderNextYear      map[LeaderID]string        `json:"yearInReviewLeaderNextYear"`
}

// DefaultFormState returns the all-empty state of a first visit. Collections
// are non-nil so they serialize as [] and {} rather than null.
func DefaultFormState() FormState {
	var s FormState
	s.normalize()
	return s
}

// normalize replaces nil collections with empty ones.
func (s *FormState) normalize() {
	fillSlice(&s.QuickPicks)
	fillSlice(&s.SelectedLearningTeammateIDs)
	fillSlice(&s.SelectedTeachingTeammateIDs)
	fillSlice(&s.SelectedTags)
	fillSlice(&s.SelectedTeammates)
	fillMap(&s.TeammateSpecificFeedback)
	fillMap(&s.SelectedBlockerTagsByTeammate)
	fillMap(&s.Ratings)
	fillSlice(&s.ShoutoutSelectedTeammates)
	fillMap(&s.SelectedImpactByTeammate)
	fillSlice(&s.FeedbackSelectedLeaders)
	if s.FeedbackLeaderRatings == nil {
		s.FeedbackLeaderRatings = LeaderRatings{}
	}
	fillMap(&s.FeedbackLeaderFeedback)
	fillMap(&s.FeedbackLeaderStopKeepStart)
	fillSlice(&s.YearInReviewQuickPicks)
	fillSlice(&s.YearInReviewBlockerTags)
	fillMap(&s.YearInReviewPulseRatings)
	fillSlice(&s.YearInReviewPeopleWhoHelped)
	fillMap(&s.YearInReviewPeopleHelpReasons)
	fillSlice(&s.YearInReviewSelectedLeaders)
	if s.YearInReviewLeaderRatings == nil {
		s.YearInReviewLeaderRatings = LeaderRatings{}
	}
	fillMap(&s.YearInReviewLeaderFeedback)
	fillMap(&s.YearInReviewLeaderStopKeepStart)
	fillMap(&s.YearInReviewLeaderNextYear)
}

func fillSlice[T any](s *[]T) {
	if *s == nil {
		*s = []T{}
	}
}

func fillMap[K comparable, V any](m *map[K]V) {
	if *m == nil {
		*m = map[K]V{}
	}
}

// Clone returns a deep copy.
func (s FormState) Clone() FormState {
	c := s
	c.QuickPicks = cloneSlice(s.QuickPicks)
	c.SelectedLearningTeammateIDs = cloneSlice(s.SelectedLearningTeammateIDs)
	c.SelectedTeachingTeammateIDs = cloneSlice(s.SelectedTeachingTeammateIDs)
	c.SelectedTags = cloneSlice(s.SelectedTags)
	c.SelectedTeammates = cloneSlice(s.SelectedTeammates)
	c.TeammateSpecificFeedback = cloneMap(s.TeammateSpecificFeedback)
	c.SelectedBlockerTagsByTeammate = cloneSliceMap(s.SelectedBlockerTagsByTeammate)
	c.Ratings = cloneMap(s.Ratings)
	c.ShoutoutSelectedTeammates = cloneSlice(s.ShoutoutSelectedTeammates)
	c.SelectedImpactByTeammate = cloneSliceMap(s.SelectedImpactByTeammate)
	c.FeedbackSelectedLeaders = cloneSlice(s.FeedbackSelectedLeaders)
	c.FeedbackLeaderRatings = s.FeedbackLeaderRatings.clone()
	c.FeedbackLeaderFeedback = cloneMap(s.FeedbackLeaderFeedback)
	c.FeedbackLeaderStopKeepStart = cloneMap(s.FeedbackLeaderStopKeepStart)
	c.YearInReviewQuickPicks = cloneSlice(s.YearInReviewQuickPicks)
	c.YearInReviewBlockerTags = cloneSlice(s.YearInReviewBlockerTags)
	c.YearInReviewPulseRatings = cloneMap(s.YearInReviewPulseRatings)
	c.YearInReviewPeopleWhoHelped = cloneSlice(s.YearInReviewPeopleWhoHelped)
	c.YearInReviewPeopleHelpReasons = cloneSliceMap(s.YearInReviewPeopleHelpReasons)
	c.YearInReviewSelectedLeaders = cloneSlice(s.YearInReviewSelectedLeaders)
	c.YearInReviewLeaderRatings = s.YearInReviewLeaderRatings.clone()
	c.YearInReviewLeaderFeedback = cloneMap(s.YearInReviewLeaderFeedback)
	c.YearInReviewLeaderStopKeepStart = cloneMap(s.YearInReviewLeaderStopKeepStart)
	c.YearInReviewLeaderNextYear = cloneMap(s.YearInReviewLeaderNextYear)
	c.normalize()
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSliceMap[K comparable, V any](m map[K][]V) map[K][]V {
	if m == nil {
		return nil
	}
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = cloneSlice(v)
	}
	return out
}

func (r LeaderRatings) clone() LeaderRatings {
	if r == nil {
		return nil
	}
	out := make(LeaderRatings, len(r))
	for k, v := range r {
		out[k] = cloneMap(v)
	}
	return out
}

// Reconcile drops every per-entity map entry whose entity is no longer in
// the matching selection set. It returns the number of entries removed.
func (s *FormState) Reconcile() int {
	s.normalize()

	blocked := setOf(s.SelectedTeammates)
	shoutouts := setOf(s.ShoutoutSelectedTeammates)
	helpers := setOf(s.YearInReviewPeopleWhoHelped)
	leaders := setOf(s.FeedbackSelectedLeaders)
	yirLeaders := setOf(s.YearInReviewSelectedLeaders)

	n := 0
	n += prune(s.TeammateSpecificFeedback, blocked)
	n += prune(s.SelectedBlockerTagsByTeammate, blocked)
	n += prune(s.SelectedImpactByTeammate, shoutouts)
	n += prune(s.YearInReviewPeopleHelpReasons, helpers)
	n += prune(s.FeedbackLeaderRatings, leaders)
	n += prune(s.FeedbackLeaderFeedback, leaders)
	n += prune(s.FeedbackLeaderStopKeepStart, leaders)
	n += prune(s.YearInReviewLeaderRatings, yirLeaders)
	n += prune(s.YearInReviewLeaderFeedback, yirLeaders)
	n += prune(s.YearInReviewLeaderStopKeepStart, yirLeaders)
	n += prune(s.YearInReviewLeaderNextYear, yirLeaders)
	return n
}

func setOf[K comparable](ids []K) map[K]struct{} {
	set := make(map[K]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func prune[K comparable, V any](m map[K]V, keep map[K]struct{}) int {
	n := 0
	for k := range m {
		if _, ok := keep[k]; !ok {
			delete(m, k)
			n++
		}
	}
	return n
}

// FormPatch is a partial update keyed by FormState JSON field name. Fields
// present in the patch replace the current value wholesale.
type FormPatch map[string]json.RawMessage

var (
	formFieldsOnce sync.Once
	formFields     map[string]int
)

func formFieldIndex() map[string]int {
	formFieldsOnce.Do(func() {
		t := reflect.TypeOf(FormState{})
		formFields = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			if name != "" && name != "-" {
				formFields[name] = i
			}
		}
	})
	return formFields
}

// FormFieldNames lists every FormState JSON field name, sorted.
func FormFieldNames() []string {
	idx := formFieldIndex()
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge applies the patch field by field. Unknown fields and values that do
// not decode into the field's type are reported and leave the field as it
// was; all other fields are applied. Nil collections are normalized but the
// state is not reconciled.
func (s *FormState) Merge(p FormPatch) []FieldError {
	idx := formFieldIndex()
	v := reflect.ValueOf(s).Elem()

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []FieldError
	for _, name := range keys {
		i, ok := idx[name]
		if !ok {
			errs = append(errs, FieldError{Field: name, Message: "unknown field"})
			continue
		}
		field := v.Field(i)
		target := reflect.New(field.Type())
		if err := json.Unmarshal(p[name], target.Interface()); err != nil {
			errs = append(errs, FieldError{Field: name, Message: "invalid value: " + err.Error()})
			continue
		}
		field.Set(target.Elem())
	}
	s.normalize()
	return errs
}

// DecodeFormState hydrates stored JSON over the defaults. A document that is
// not a JSON object yields the defaults and a non-nil error; individual
// fields that fail to decode keep their defaults and are returned as
// field errors.
func DecodeFormState(data []byte) (FormState, []FieldError, error) {
	state := DefaultFormState()
	var patch FormPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return state, nil, err
	}
	var kept []FieldError
	for _, fe := range state.Merge(patch) {
		// Fields dropped from the schema are tolerated silently.
		if fe.Message == "unknown field" {
			continue
		}
		kept = append(kept, fe)
	}
	return state, kept, nil
}
