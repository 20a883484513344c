package service

import (
	"context"
	"fmt"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// ToggleKind names one entity operation of the wizard pages.
type ToggleKind string

// Toggle kinds
const (
	ToggleLearningTeammate ToggleKind = "learning-teammate"
	ToggleTeachingTeammate ToggleKind = "teaching-teammate"
	ToggleQuickPick        ToggleKind = "quick-pick"

	ToggleBlockerTeammate   ToggleKind = "blocker-teammate"
	ToggleBlockerTag        ToggleKind = "blocker-tag"
	ToggleBlockerQuickTag   ToggleKind = "blocker-quick-tag"
	ToggleTeammateFeedback  ToggleKind = "teammate-feedback"
	ToggleCulturePulseScore ToggleKind = "rating"

	ToggleShoutoutTeammate ToggleKind = "shoutout-teammate"
	ToggleImpactTag        ToggleKind = "impact-tag"

	ToggleLeader         ToggleKind = "leader"
	ToggleLeaderAdd      ToggleKind = "leader-add"
	ToggleLeaderRemove   ToggleKind = "leader-remove"
	ToggleLeaderRating   ToggleKind = "leader-rating"
	ToggleLeaderFeedback ToggleKind = "leader-feedback"
	ToggleStopKeepStart  ToggleKind = "stop-keep-start"

	ToggleYIRQuickPick      ToggleKind = "yir-quick-pick"
	ToggleYIRBlockerTag     ToggleKind = "yir-blocker-tag"
	ToggleYIRPulseRating    ToggleKind = "yir-pulse-rating"
	ToggleYIRHelper         ToggleKind = "yir-helper"
	ToggleYIRHelpReason     ToggleKind = "yir-help-reason"
	ToggleYIRLeaderAdd      ToggleKind = "yir-leader-add"
	ToggleYIRLeaderRemove   ToggleKind = "yir-leader-remove"
	ToggleYIRLeaderRating   ToggleKind = "yir-leader-rating"
	ToggleYIRLeaderFeedback ToggleKind = "yir-leader-feedback"
	ToggleYIRStopKeepStart  ToggleKind = "yir-stop-keep-start"
	ToggleYIRNextYear       ToggleKind = "yir-next-year"
)

// ToggleRequest carries the arguments of a toggle. Which fields are read
// depends on the kind.
type ToggleRequest struct {
	ID       string `json:"id"`
	Tag      string `json:"tag,omitempty"`
	Question string `json:"question,omitempty"`
	Value    int    `json:"value,omitempty"`
	Text     string `json:"text,omitempty"`
	Field    string `json:"field,omitempty"`
}

// QuickTextSeparator joins canned text onto existing free text.
const QuickTextSeparator = "\n\n"

var (
	quickPickLabels     = model.Labels(model.QuickPicks)
	blockerLabels       = model.Labels(model.BlockerTags)
	blockerFeedbackTags = model.Labels(model.BlockerFeedbackTags)
	impactLabels        = model.Labels(model.ImpactTags)
)

// ApplyToggle dispatches a toggle by kind.
func (s *FormStore) ApplyToggle(ctx context.Context, kind ToggleKind, req ToggleRequest) (model.FormState, error) {
	switch kind {
	case ToggleLearningTeammate:
		return s.ToggleLearningTeammate(ctx, model.TeammateID(req.ID))
	case ToggleTeachingTeammate:
		return s.ToggleTeachingTeammate(ctx, model.TeammateID(req.ID))
	case ToggleQuickPick:
		return s.AddQuickPick(ctx, model.TagID(req.ID))
	case ToggleBlockerTeammate:
		return s.ToggleBlockerTeammate(ctx, model.TeammateID(req.ID))
	case ToggleBlockerTag:
		return s.ToggleBlockerTag(ctx, model.TeammateID(req.ID), model.TagID(req.Tag))
	case ToggleBlockerQuickTag:
		return s.AddBlockerQuickTag(ctx, model.TagID(req.ID))
	case ToggleTeammateFeedback:
		return s.SetTeammateFeedback(ctx, model.TeammateID(req.ID), req.Text)
	case ToggleCulturePulseScore:
		return s.SetRating(ctx, model.QuestionID(req.ID), req.Value)
	case ToggleShoutoutTeammate:
		return s.ToggleShoutoutTeammate(ctx, model.TeammateID(req.ID))
	case ToggleImpactTag:
		return s.ToggleImpactTag(ctx, model.TeammateID(req.ID), model.TagID(req.Tag))
	case ToggleLeader:
		return s.ToggleLeader(ctx, model.FlowCulturePulse, model.LeaderID(req.ID))
	case ToggleLeaderAdd:
		return s.AddLeader(ctx, model.FlowCulturePulse, model.LeaderID(req.ID))
	case ToggleLeaderRemove:
		return s.RemoveLeader(ctx, model.FlowCulturePulse, model.LeaderID(req.ID))
	case ToggleLeaderRating:
		return s.SetLeaderRating(ctx, model.FlowCulturePulse, model.LeaderID(req.ID), model.QuestionID(req.Question), req.Value)
	case ToggleLeaderFeedback:
		return s.SetLeaderFeedback(ctx, model.FlowCulturePulse, model.LeaderID(req.ID), req.Text)
	case ToggleStopKeepStart:
		return s.SetStopKeepStart(ctx, model.FlowCulturePulse, model.LeaderID(req.ID), req.Field, req.Text)
	case ToggleYIRQuickPick:
		return s.ToggleYearInReviewQuickPick(ctx, model.TagID(req.ID))
	case ToggleYIRBlockerTag:
		return s.ToggleYearInReviewBlockerTag(ctx, model.TagID(req.ID))
	case ToggleYIRPulseRating:
		return s.SetYearInReviewRating(ctx, model.QuestionID(req.ID), req.Value)
	case ToggleYIRHelper:
		return s.ToggleYearInReviewHelper(ctx, model.TeammateID(req.ID))
	case ToggleYIRHelpReason:
		return s.ToggleHelpReason(ctx, model.TeammateID(req.ID), model.TagID(req.Tag))
	case ToggleYIRLeaderAdd:
		return s.AddLeader(ctx, model.FlowYearInReview, model.LeaderID(req.ID))
	case ToggleYIRLeaderRemove:
		return s.RemoveLeader(ctx, model.FlowYearInReview, model.LeaderID(req.ID))
	case ToggleYIRLeaderRating:
		return s.SetLeaderRating(ctx, model.FlowYearInReview, model.LeaderID(req.ID), model.QuestionID(req.Question), req.Value)
	case ToggleYIRLeaderFeedback:
		return s.SetLeaderFeedback(ctx, model.FlowYearInReview, model.LeaderID(req.ID), req.Text)
	case ToggleYIRStopKeepStart:
		return s.SetStopKeepStart(ctx, model.FlowYearInReview, model.LeaderID(req.ID), req.Field, req.Text)
	case ToggleYIRNextYear:
		return s.SetLeaderNextYear(ctx, model.LeaderID(req.ID), req.Text)
	}
	return s.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownToggle, kind)
}

// ===== Wins =====

// ToggleLearningTeammate adds or removes a teammate the respondent learned from.
func (s *FormStore) ToggleLearningTeammate(ctx context.Context, id model.TeammateID) (model.FormState, error) {
	if err := s.checkTeammate(id); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.SelectedLearningTeammateIDs = toggle(st.SelectedLearningTeammateIDs, id)
		return nil
	})
}

// ToggleTeachingTeammate adds or removes a teammate the respondent taught.
func (s *FormStore) ToggleTeachingTeammate(ctx context.Context, id model.TeammateID) (model.FormState, error) {
	if err := s.checkTeammate(id); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.SelectedTeachingTeammateIDs = toggle(st.SelectedTeachingTeammateIDs, id)
		return nil
	})
}

// AddQuickPick appends the pick's canned text to the wins text and records
// the pick. Picking again appends the text again.
func (s *FormStore) AddQuickPick(ctx context.Context, tag model.TagID) (model.FormState, error) {
	label, ok := quickPickLabels[string(tag)]
	if !ok {
		return s.Snapshot(), fmt.Errorf("%w: quick pick %q", ErrUnknownTag, tag)
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.WinsText = appendQuickText(st.WinsText, label)
		st.QuickPicks = appendUnique(st.QuickPicks, tag)
		return nil
	})
}

// ===== Blockers =====

// ToggleBlockerTeammate selects or deselects a teammate on the blockers page.
// Deselecting drops that teammate's feedback and tags.
func (s *FormStore) ToggleBlockerTeammate(ctx context.Context, id model.TeammateID) (model.FormState, error) {
	if err := s.checkTeammate(id); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.SelectedTeammates = toggle(st.SelectedTeammates, id)
		return nil
	})
}

// ToggleBlockerTag toggles a challenge area on a selected teammate.
func (s *FormStore) ToggleBlockerTag(ctx context.Context, id model.TeammateID, tag model.TagID) (model.FormState, error) {
	if err := s.checkTeammate(id); err != nil {
		return s.Snapshot(), err
	}
	if _, ok := blockerFeedbackTags[string(tag)]; !ok {
		return s.Snapshot(), fmt.Errorf("%w: blocker tag %q", ErrUnknownTag, tag)
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		if !contains(st.SelectedTeammates, id) {
			return fmt.Errorf("%w: teammate %s", ErrNotSelected, id)
		}
		st.SelectedBlockerTagsByTeammate[id] = toggle(st.SelectedBlockerTagsByTeammate[id], tag)
		if len(st.SelectedBlockerTagsByTeammate[id]) == 0 {
			delete(st.SelectedBlockerTagsByTeammate, id)
		}
		return nil
	})
}

// SetTeammateFeedback sets the free text for a selected teammate. Empty text
// removes the entry.
func (s *FormStore) SetTeammateFeedback(ctx context.Context, id model.TeammateID, text string) (model.FormState, error) {
	if err := s.checkTeammate(id); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		if !contains(st.SelectedTeammates, id) {
			return fmt.Errorf("%w: teammate %s", ErrNotSelected, id)
		}
		setOrDelete(st.TeammateSpecificFeedback, id, text)
		return nil
	})
}

// AddBlockerQuickTag appends the tag's text to the blocker text and records
// the tag.
func (s *FormStore) AddBlockerQuickTag(ctx context.Context, tag model.TagID) (model.FormState, error) {
	label, ok := blockerLabels[string(tag)]
	if !ok {
		return s.Snapshot(), fmt.Errorf("%w: blocker tag %q", ErrUnknownTag, tag)
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.BlockerText = appendQuickText(st.BlockerText, label)
		st.SelectedTags = appendUnique(st.SelectedTags, tag)
		return nil
	})
}

// ===== Culture Pulse =====

// SetRating records a culture pulse rating. Zero clears it.
func (s *FormStore) SetRating(ctx context.Context, q model.QuestionID, value int) (model.FormState, error) {
	if err := checkRating(model.CulturePulseQuestions, q, value); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		setRating(st.Ratings, q, value)
		return nil
	})
}

// ===== Shoutouts =====

// ToggleShoutoutTeammate selects or deselects a shoutout recipient.
// Deselecting drops that teammate's impact tags.
func (s *FormStore) ToggleShoutoutTeammate(ctx context.Context, id model.TeammateID) (model.FormState, error) {
	if err := s.checkTeammate(id); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.ShoutoutSelectedTeammates = toggle(st.ShoutoutSelectedTeammates, id)
		return nil
	})
}

// ToggleImpactTag toggles an impact tag on a selected shoutout recipient.
func (s *FormStore) ToggleImpactTag(ctx context.Context, id model.TeammateID, tag model.TagID) (model.FormState, error) {
	if err := s.checkTeammate(id); err != nil {
		return s.Snapshot(), err
	}
	if _, ok := impactLabels[string(tag)]; !ok {
		return s.Snapshot(), fmt.Errorf("%w: impact tag %q", ErrUnknownTag, tag)
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		if !contains(st.ShoutoutSelectedTeammates, id) {
			return fmt.Errorf("%w: teammate %s", ErrNotSelected, id)
		}
		st.SelectedImpactByTeammate[id] = toggle(st.SelectedImpactByTeammate[id], tag)
		if len(st.SelectedImpactByTeammate[id]) == 0 {
			delete(st.SelectedImpactByTeammate, id)
		}
		return nil
	})
}

// ===== Leadership Feedback =====

type leaderFields struct {
	selected *[]model.LeaderID
	ratings  model.LeaderRatings
	feedback map[model.LeaderID]string
	sks      map[model.LeaderID]model.StopKeepStart
}

func leaderSlots(st *model.FormState, flow model.Flow) leaderFields {
	if flow == model.FlowYearInReview {
		return leaderFields{
			selected: &st.YearInReviewSelectedLeaders,
			ratings:  st.YearInReviewLeaderRatings,
			feedback: st.YearInReviewLeaderFeedback,
			sks:      st.YearInReviewLeaderStopKeepStart,
		}
	}
	return leaderFields{
		selected: &st.FeedbackSelectedLeaders,
		ratings:  st.FeedbackLeaderRatings,
		feedback: st.FeedbackLeaderFeedback,
		sks:      st.FeedbackLeaderStopKeepStart,
	}
}

// ToggleLeader adds an unselected leader or removes a selected one.
func (s *FormStore) ToggleLeader(ctx context.Context, flow model.Flow, id model.LeaderID) (model.FormState, error) {
	if err := s.checkLeader(id); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		f := leaderSlots(st, flow)
		*f.selected = toggle(*f.selected, id)
		return nil
	})
}

// AddLeader selects a leader. Adding a selected leader is a no-op.
func (s *FormStore) AddLeader(ctx context.Context, flow model.Flow, id model.LeaderID) (model.FormState, error) {
	if err := s.checkLeader(id); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		f := leaderSlots(st, flow)
		*f.selected = appendUnique(*f.selected, id)
		return nil
	})
}

// RemoveLeader deselects a leader and drops their ratings, feedback,
// stop/keep/start and next-year text.
func (s *FormStore) RemoveLeader(ctx context.Context, flow model.Flow, id model.LeaderID) (model.FormState, error) {
	return s.Mutate(ctx, func(st *model.FormState) error {
		f := leaderSlots(st, flow)
		*f.selected = remove(*f.selected, id)
		return nil
	})
}

// SetLeaderRating records one leadership rating for a selected leader. Zero
// clears it.
func (s *FormStore) SetLeaderRating(ctx context.Context, flow model.Flow, id model.LeaderID, q model.QuestionID, value int) (model.FormState, error) {
	if err := checkRating(model.LeadershipQuestions, q, value); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		f := leaderSlots(st, flow)
		if !contains(*f.selected, id) {
			return fmt.Errorf("%w: leader %s", ErrNotSelected, id)
		}
		if f.ratings[id] == nil {
			f.ratings[id] = make(map[model.QuestionID]int)
		}
		setRating(f.ratings[id], q, value)
		return nil
	})
}

// SetLeaderFeedback sets the free text for a selected leader.
func (s *FormStore) SetLeaderFeedback(ctx context.Context, flow model.Flow, id model.LeaderID, text string) (model.FormState, error) {
	return s.Mutate(ctx, func(st *model.FormState) error {
		f := leaderSlots(st, flow)
		if !contains(*f.selected, id) {
			return fmt.Errorf("%w: leader %s", ErrNotSelected, id)
		}
		setOrDelete(f.feedback, id, text)
		return nil
	})
}

// SetStopKeepStart sets one part of a selected leader's stop/keep/start.
func (s *FormStore) SetStopKeepStart(ctx context.Context, flow model.Flow, id model.LeaderID, field, text string) (model.FormState, error) {
	return s.Mutate(ctx, func(st *model.FormState) error {
		f := leaderSlots(st, flow)
		if !contains(*f.selected, id) {
			return fmt.Errorf("%w: leader %s", ErrNotSelected, id)
		}
		sks := f.sks[id]
		switch field {
		case model.FieldStop:
			sks.Stop = text
		case model.FieldKeep:
			sks.Keep = text
		case model.FieldStart:
			sks.Start = text
		default:
			return fmt.Errorf("%w: %q", ErrInvalidSKSField, field)
		}
		f.sks[id] = sks
		return nil
	})
}

// ===== Year in Review =====

// ToggleYearInReviewQuickPick toggles a win marker. Unlike the Culture Pulse
// quick picks it does not touch the free text.
func (s *FormStore) ToggleYearInReviewQuickPick(ctx context.Context, tag model.TagID) (model.FormState, error) {
	if _, ok := quickPickLabels[string(tag)]; !ok {
		return s.Snapshot(), fmt.Errorf("%w: quick pick %q", ErrUnknownTag, tag)
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.YearInReviewQuickPicks = toggle(st.YearInReviewQuickPicks, tag)
		return nil
	})
}

// ToggleYearInReviewBlockerTag toggles a blocker category.
func (s *FormStore) ToggleYearInReviewBlockerTag(ctx context.Context, tag model.TagID) (model.FormState, error) {
	if _, ok := blockerLabels[string(tag)]; !ok {
		return s.Snapshot(), fmt.Errorf("%w: blocker tag %q", ErrUnknownTag, tag)
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.YearInReviewBlockerTags = toggle(st.YearInReviewBlockerTags, tag)
		return nil
	})
}

// SetYearInReviewRating records a five point work experience rating.
func (s *FormStore) SetYearInReviewRating(ctx context.Context, q model.QuestionID, value int) (model.FormState, error) {
	if err := checkRating(model.YearInReviewPulseQuestions, q, value); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		setRating(st.YearInReviewPulseRatings, q, value)
		return nil
	})
}

// ToggleYearInReviewHelper selects or deselects a person who helped.
func (s *FormStore) ToggleYearInReviewHelper(ctx context.Context, id model.TeammateID) (model.FormState, error) {
	if err := s.checkTeammate(id); err != nil {
		return s.Snapshot(), err
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		st.YearInReviewPeopleWhoHelped = toggle(st.YearInReviewPeopleWhoHelped, id)
		return nil
	})
}

// ToggleHelpReason toggles an impact tag on a selected helper.
func (s *FormStore) ToggleHelpReason(ctx context.Context, id model.TeammateID, tag model.TagID) (model.FormState, error) {
	if _, ok := impactLabels[string(tag)]; !ok {
		return s.Snapshot(), fmt.Errorf("%w: impact tag %q", ErrUnknownTag, tag)
	}
	return s.Mutate(ctx, func(st *model.FormState) error {
		if !contains(st.YearInReviewPeopleWhoHelped, id) {
			return fmt.Errorf("%w: teammate %s", ErrNotSelected, id)
		}
		st.YearInReviewPeopleHelpReasons[id] = toggle(st.YearInReviewPeopleHelpReasons[id], tag)
		if len(st.YearInReviewPeopleHelpReasons[id]) == 0 {
			delete(st.YearInReviewPeopleHelpReasons, id)
		}
		return nil
	})
}

// SetLeaderNextYear sets what a selected leader should do next year.
func (s *FormStore) SetLeaderNextYear(ctx context.Context, id model.LeaderID, text string) (model.FormState, error) {
	return s.Mutate(ctx, func(st *model.FormState) error {
		if !contains(st.YearInReviewSelectedLeaders, id) {
			return fmt.Errorf("%w: leader %s", ErrNotSelected, id)
		}
		setOrDelete(st.YearInReviewLeaderNextYear, id, text)
		return nil
	})
}

// ===== Helpers =====

func (s *FormStore) checkTeammate(id model.TeammateID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if !s.roster.IsTeammate(id) {
		return fmt.Errorf("%w: %s", ErrUnknownTeammate, id)
	}
	return nil
}

func (s *FormStore) checkLeader(id model.LeaderID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if !s.roster.IsLeader(id) {
		return fmt.Errorf("%w: %s", ErrUnknownLeader, id)
	}
	return nil
}

func checkRating(set model.QuestionSet, q model.QuestionID, value int) error {
	if !contains(set.IDs(), q) {
		return fmt.Errorf("%w: %s has no question %q", ErrUnknownQuestion, set.Name, q)
	}
	if value != 0 && !set.Scale.Contains(value) {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidRating, value, set.Scale.Min, set.Scale.Max)
	}
	return nil
}

func setRating(m map[model.QuestionID]int, q model.QuestionID, value int) {
	if value == 0 {
		delete(m, q)
		return
	}
	m[q] = value
}

func setOrDelete[K comparable](m map[K]string, k K, text string) {
	if text == "" {
		delete(m, k)
		return
	}
	m[k] = text
}

func appendQuickText(text, label string) string {
	if text == "" {
		return label
	}
	return text + QuickTextSeparator + label
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// toggle removes v if present, else appends it. It reports whether v was
// added.
func toggle[T comparable](list []T, v T) []T {
	if contains(list, v) {
		return remove(list, v)
	}
	return append(list, v)
}

func appendUnique[T comparable](list []T, v T) []T {
	if contains(list, v) {
		return list
	}
	return append(list, v)
}

func remove[T comparable](list []T, v T) []T {
	out := list[:0:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
