package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// Validator reports whether one section's required fields are filled.
type Validator func(model.FormState) bool

// sectionCheck lists what is missing from one section, keyed by form field.
type sectionCheck func(model.FormState) []model.FieldError

var sectionChecks = map[model.Section]sectionCheck{
	model.SectionWins:              checkWins,
	model.SectionBlockers:          checkBlockers,
	model.SectionCulturePulse:      checkCulturePulse,
	model.SectionShoutouts:         checkShoutouts,
	model.SectionFeedback:          checkFeedback,
	model.SectionCultureProtection: checkCultureProtection,

	model.SectionYearInReviewWins:       checkYearInReviewWins,
	model.SectionYearInReviewBlockers:   checkYearInReviewBlockers,
	model.SectionYearInReviewWishMore:   checkYearInReviewWishMore,
	model.SectionYearInReviewPulse:      checkYearInReviewPulse,
	model.SectionYearInReviewPeople:     checkYearInReviewPeople,
	model.SectionYearInReviewLeadership: checkYearInReviewLeadership,
}

// ValidatorFor returns the completion predicate of a section.
func ValidatorFor(section model.Section) (Validator, error) {
	check, ok := sectionChecks[section]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return func(s model.FormState) bool { return len(check(s)) == 0 }, nil
}

// IsSectionComplete reports whether the section validates. Unknown sections
// are never complete.
func IsSectionComplete(state model.FormState, section model.Section) bool {
	check, ok := sectionChecks[section]
	return ok && len(check(state)) == 0
}

// CheckSection returns the completion of one section with its field errors.
func CheckSection(state model.FormState, section model.Section) (model.SectionStatus, error) {
	check, ok := sectionChecks[section]
	if !ok {
		return model.SectionStatus{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	errs := check(state)
	return model.SectionStatus{Section: section, Complete: len(errs) == 0, Errors: errs}, nil
}

// BuildSectionReport validates every section of a flow.
func BuildSectionReport(state model.FormState, flow model.Flow) model.SectionReport {
	sections := flow.Sections()
	report := model.SectionReport{
		Flow:     flow,
		Sections: make([]model.SectionStatus, 0, len(sections)),
	}
	done := 0
	for _, sec := range sections {
		errs := sectionChecks[sec](state)
		if len(errs) == 0 {
			done++
		}
		report.Sections = append(report.Sections, model.SectionStatus{
			Section:  sec,
			Complete: len(errs) == 0,
			Errors:   errs,
		})
	}
	if len(sections) > 0 {
		report.CompletionPercentage = int(math.Round(float64(done) * 100 / float64(len(sections))))
	}
	report.Complete = done == len(sections)
	return report
}

// ===== Culture Pulse =====

func checkWins(s model.FormState) []model.FieldError {
	var errs []model.FieldError
	errs = requireText(errs, "winsText", s.WinsText)
	if s.LearningFollowUp && len(s.SelectedLearningTeammateIDs) == 0 {
		errs = append(errs, model.FieldError{Field: "selectedLearningTeammateIds", Message: "select who you learned from"})
	}
	if s.TeachingFollowUp && len(s.SelectedTeachingTeammateIDs) == 0 {
		errs = append(errs, model.FieldError{Field: "selectedTeachingTeammateIds", Message: "select who you helped"})
	}
	return errs
}

func checkBlockers(s model.FormState) []model.FieldError {
	var errs []model.FieldError
	errs = requireText(errs, "blockerText", s.BlockerText)
	errs = requireText(errs, "inventText", s.InventText)
	errs = requireText(errs, "peopleBlockerText", s.PeopleBlockerText)
	if len(s.SelectedTags) == 0 {
		errs = append(errs, model.FieldError{Field: "selectedTags", Message: "select at least one tag"})
	}
	for _, id := range s.SelectedTeammates {
		if len(s.SelectedBlockerTagsByTeammate[id]) == 0 {
			errs = append(errs, model.FieldError{
				Field:   "selectedBlockerTagsByTeammate." + string(id),
				Message: "select at least one challenge area",
			})
		}
	}
	return errs
}

func checkCulturePulse(s model.FormState) []model.FieldError {
	errs := requireRatings(nil, "ratings", model.CulturePulseQuestions, s.Ratings)
	errs = requireText(errs, "strongestValue", s.StrongestValue)
	return requireText(errs, "weakestValue", s.WeakestValue)
}

func checkShoutouts(s model.FormState) []model.FieldError {
	if len(s.ShoutoutSelectedTeammates) == 0 {
		return []model.FieldError{{Field: "shoutoutSelectedTeammates", Message: "select at least one teammate"}}
	}
	var errs []model.FieldError
	for _, id := range s.ShoutoutSelectedTeammates {
		if len(s.SelectedImpactByTeammate[id]) == 0 {
			errs = append(errs, model.FieldError{
				Field:   "selectedImpactByTeammate." + string(id),
				Message: "select at least one impact",
			})
		}
	}
	return errs
}

func checkFeedback(s model.FormState) []model.FieldError {
	if len(s.FeedbackSelectedLeaders) == 0 {
		return []model.FieldError{{Field: "feedbackSelectedLeaders", Message: "select at least one leader"}}
	}
	return requireLeaderRatings(nil, "feedbackLeaderRatings", s.FeedbackSelectedLeaders, s.FeedbackLeaderRatings)
}

func checkCultureProtection(s model.FormState) []model.FieldError {
	return requireText(nil, "cultureText", s.CultureText)
}

// ===== Year in Review =====

func checkYearInReviewWins(s model.FormState) []model.FieldError {
	if hasText(s.YearInReviewWinsText) || len(s.YearInReviewQuickPicks) > 0 {
		return nil
	}
	return []model.FieldError{{Field: "yearInReviewWinsText", Message: "describe a win or pick one"}}
}

func checkYearInReviewBlockers(s model.FormState) []model.FieldError {
	if hasText(s.YearInReviewBlockerText) || len(s.YearInReviewBlockerTags) > 0 {
		return nil
	}
	return []model.FieldError{{Field: "yearInReviewBlockerText", Message: "describe a blocker or pick one"}}
}

func checkYearInReviewWishMore(s model.FormState) []model.FieldError {
	return requireText(nil, "yearInReviewWishMoreOf", s.YearInReviewWishMoreOf)
}

func checkYearInReviewPulse(s model.FormState) []model.FieldError {
	return requireRatings(nil, "yearInReviewPulseRatings", model.YearInReviewPulseQuestions, s.YearInReviewPulseRatings)
}

// People are optional; anyone selected needs a reason.
func checkYearInReviewPeople(s model.FormState) []model.FieldError {
	var errs []model.FieldError
	for _, id := range s.YearInReviewPeopleWhoHelped {
		if len(s.YearInReviewPeopleHelpReasons[id]) == 0 {
			errs = append(errs, model.FieldError{
				Field:   "yearInReviewPeopleHelpReasons." + string(id),
				Message: "select at least one reason",
			})
		}
	}
	return errs
}

// Leaders are optional; anyone selected needs every rating.
func checkYearInReviewLeadership(s model.FormState) []model.FieldError {
	return requireLeaderRatings(nil, "yearInReviewLeaderRatings", s.YearInReviewSelectedLeaders, s.YearInReviewLeaderRatings)
}

// ===== Helpers =====

func hasText(s string) bool { return strings.TrimSpace(s) != "" }

func requireText(errs []model.FieldError, field, value string) []model.FieldError {
	if hasText(value) {
		return errs
	}
	return append(errs, model.FieldError{Field: field, Message: "is required"})
}

func requireRatings(errs []model.FieldError, field string, set model.QuestionSet, ratings map[model.QuestionID]int) []model.FieldError {
	for _, q := range set.IDs() {
		if !set.Scale.Contains(ratings[q]) {
			errs = append(errs, model.FieldError{
				Field:   field + "." + string(q),
				Message: fmt.Sprintf("rate from %d to %d", set.Scale.Min, set.Scale.Max),
			})
		}
	}
	return errs
}

func requireLeaderRatings(errs []model.FieldError, field string, leaders []model.LeaderID, ratings model.LeaderRatings) []model.FieldError {
	for _, id := range leaders {
		errs = requireRatings(errs, field+"."+string(id), model.LeadershipQuestions, ratings[id])
	}
	return errs
}
