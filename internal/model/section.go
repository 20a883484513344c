package model

// Section names one validated page of the survey.
type Section string

// Culture Pulse sections
const (
	SectionWins              Section = "wins"
	SectionBlockers          Section = "blockers"
	SectionCulturePulse      Section = "culture-pulse"
	SectionShoutouts         Section = "shoutouts"
	SectionFeedback          Section = "feedback"
	SectionCultureProtection Section = "culture-protection"
)

// Year in Review sections
const (
	SectionYearInReviewWins       Section = "yir-wins"
	SectionYearInReviewBlockers   Section = "yir-blockers"
	SectionYearInReviewWishMore   Section = "yir-wish-more"
	SectionYearInReviewPulse      Section = "yir-pulse"
	SectionYearInReviewPeople     Section = "yir-people"
	SectionYearInReviewLeadership Section = "yir-leadership"
)

// Flow is one of the two survey variants sharing the form state.
type Flow string

const (
	FlowCulturePulse Flow = "culture-pulse"
	FlowYearInReview Flow = "year-in-review"
)

// ParseFlow maps a flow name to its Flow. The empty string selects the
// Culture Pulse flow.
func ParseFlow(s string) (Flow, bool) {
	switch Flow(s) {
	case "", FlowCulturePulse:
		return FlowCulturePulse, true
	case FlowYearInReview:
		return FlowYearInReview, true
	}
	return "", false
}

// Sections returns the flow's sections in wizard order.
func (f Flow) Sections() []Section {
	if f == FlowYearInReview {
		return YearInReviewSections
	}
	return CulturePulseSections
}

// CulturePulseSections are the validated pages of the Culture Pulse flow.
var CulturePulseSections = []Section{
	SectionWins,
	SectionBlockers,
	SectionCulturePulse,
	SectionShoutouts,
	SectionFeedback,
	SectionCultureProtection,
}

// YearInReviewSections are the validated pages of the Year in Review flow.
var YearInReviewSections = []Section{
	SectionYearInReviewWins,
	SectionYearInReviewBlockers,
	SectionYearInReviewWishMore,
	SectionYearInReviewPulse,
	SectionYearInReviewPeople,
	SectionYearInReviewLeadership,
}

// AllSections returns every known section.
func AllSections() []Section {
	out := make([]Section, 0, len(CulturePulseSections)+len(YearInReviewSections))
	out = append(out, CulturePulseSections...)
	return append(out, YearInReviewSections...)
}

// ParseSection maps a section name to its Section.
func ParseSection(s string) (Section, bool) {
	for _, sec := range AllSections() {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// SectionStatus is the completion of one section.
type SectionStatus struct {
	Section  Section      `json:"section"`
	Complete bool         `json:"complete"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// SectionReport summarizes completion of one flow.
type SectionReport struct {
	Flow                 Flow            `json:"flow"`
	Sections             []SectionStatus `json:"sections"`
	CompletionPercentage int             `json:"completionPercentage"`
	Complete             bool            `json:"complete"`
}

// Incomplete lists the sections that are not yet complete.
func (r SectionReport) Incomplete() []Section {
	var out []Section
	for _, s := range r.Sections {
		if !s.Complete {
			out = append(out, s.Section)
		}
	}
	return out
}

// FieldErrors flattens the field errors of every section.
func (r SectionReport) FieldErrors() []FieldError {
	var out []FieldError
	for _, s := range r.Sections {
		out = append(out, s.Errors...)
	}
	return out
}
