package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Record column names
const (
	ColSubmissionID             = "submissionId"
	ColTimestamp                = "timestamp"
	ColSessionID                = "sessionId"
	ColCompletionPercentage     = "completionPercentage"
	ColWinsText                 = "winsText"
	ColQuickPicks               = "quickPicks"
	ColLearningTeammates        = "learningTeammates"
	ColTeachingTeammates        = "teachingTeammates"
	ColLearningFollowUp         = "learningFollowUp"
	ColTeachingFollowUp         = "teachingFollowUp"
	ColBlockerText              = "blockerText"
	ColBlockerTags              = "blockerTags"
	ColInventText               = "inventText"
	ColPeopleBlockerText        = "peopleBlockerText"
	ColBlockedByTeammates       = "blockedByTeammates"
	ColTeammateSpecificFeedback = "teammateSpecificFeedback"
	ColBlockerTagsByTeammate    = "blockerTagsByTeammate"
	ColStrongestValue           = "strongestValue"
	ColWeakestValue             = "weakestValue"
	ColShoutoutTeammates        = "shoutoutTeammates"
	ColImpactTagsByTeammate     = "impactTagsByTeammate"
	ColShoutoutNotes            = "shoutoutNotes"
	ColFeedbackLeaders          = "feedbackLeaders"
	ColLeaderFeedback           = "leaderFeedback"
	ColLeaderStop               = "leaderStop"
	ColLeaderKeep               = "leaderKeep"
	ColLeaderStart              = "leaderStart"
	ColCultureText              = "cultureText"
)

const (
	culturePulsePrefix = "culturePulse_"
	feedbackPrefix     = "feedback_"
)

// CulturePulseColumn names the column holding one culture rating.
func CulturePulseColumn(q QuestionID) string {
	return culturePulsePrefix + string(q)
}

// FeedbackColumn names the dynamic column holding one leader rating.
func FeedbackColumn(leaderName string, q QuestionID) string {
	return feedbackPrefix + leaderName + "_" + string(q)
}

// IsFeedbackColumn reports whether key is a dynamic leader rating column.
func IsFeedbackColumn(key string) bool {
	rest, ok := strings.CutPrefix(key, feedbackPrefix)
	return ok && strings.Contains(rest, "_")
}

// BaseColumns returns the fixed header row in sheet order. Leader rating
// columns are not included; the sheet appends them as they first appear.
func BaseColumns() []string {
	cols := []string{
		ColSubmissionID,
		ColTimestamp,
		ColSessionID,
		ColCompletionPercentage,

		ColWinsText,
		ColQuickPicks,
		ColLearningTeammates,
		ColTeachingTeammates,
		ColLearningFollowUp,
		ColTeachingFollowUp,

		ColBlockerText,
		ColBlockerTags,
		ColInventText,
		ColPeopleBlockerText,
		ColBlockedByTeammates,
		ColTeammateSpecificFeedback,
		ColBlockerTagsByTeammate,
	}
	for _, q := range CulturePulseQuestions.IDs() {
		cols = append(cols, CulturePulseColumn(q))
	}
	return append(cols,
		ColStrongestValue,
		ColWeakestValue,

		ColShoutoutTeammates,
		ColImpactTagsByTeammate,
		ColShoutoutNotes,

		ColFeedbackLeaders,
		ColLeaderFeedback,
		ColLeaderStop,
		ColLeaderKeep,
		ColLeaderStart,

		ColCultureText,
	)
}

// FlatRecord is one spreadsheet row keyed by column name. Keys keep their
// insertion order so the JSON and form encodings are deterministic. Values
// are strings except completionPercentage, which is numeric.
type FlatRecord struct {
	keys   []string
	values map[string]any
}

// NewFlatRecord returns an empty record.
func NewFlatRecord() *FlatRecord {
	return &FlatRecord{values: make(map[string]any)}
}

// Set assigns a column, appending it if new.
func (r *FlatRecord) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value of a column.
func (r *FlatRecord) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// String returns the column rendered as text, or "" if absent.
func (r *FlatRecord) String(key string) string {
	v, ok := r.values[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// Keys returns the column names in insertion order.
func (r *FlatRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns.
func (r *FlatRecord) Len() int { return len(r.keys) }

// SubmissionID returns the record's submission id.
func (r *FlatRecord) SubmissionID() string { return r.String(ColSubmissionID) }

// Map returns the record as a plain map.
func (r *FlatRecord) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// FormValues encodes the record for an application/x-www-form-urlencoded
// body. Non-scalar values are sent as JSON text.
func (r *FlatRecord) FormValues() url.Values {
	form := make(url.Values, len(r.keys))
	for _, k := range r.keys {
		switch v := r.values[k].(type) {
		case string:
			form.Set(k, v)
		case int, int64, float64, bool:
			form.Set(k, fmt.Sprint(v))
		default:
			b, err := json.Marshal(v)
			if err != nil {
				form.Set(k, fmt.Sprint(v))
				continue
			}
			form.Set(k, string(b))
		}
	}
	return form
}

// MarshalJSON writes the columns in insertion order.
func (r *FlatRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping document key order.
func (r *FlatRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("flat record: expected object")
	}
	r.keys = nil
	r.values = make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("flat record: expected key")
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("column %s: %w", key, err)
		}
		if n, ok := v.(json.Number); ok {
			v = numberValue(n)
		}
		r.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// LeaderRatingRow holds one selected leader's answers in question order.
// A zero value means unrated.
type LeaderRatingRow struct {
	Leader     LeaderID `json:"leader"`
	LeaderName string   `json:"leaderName"`
	Values     []int    `json:"values"`
}

// LeaderRatingTable is the leader x question grid of the feedback section.
type LeaderRatingTable struct {
	Questions []QuestionID      `json:"questions"`
	Scale     RatingScale       `json:"scale"`
	Rows      []LeaderRatingRow `json:"rows"`
}

// Columns serializes the table into dynamic feedback columns, row by row.
func (t LeaderRatingTable) Columns() []Column {
	cols := make([]Column, 0, len(t.Rows)*len(t.Questions))
	for _, row := range t.Rows {
		for i, q := range t.Questions {
			value := ""
			if i < len(row.Values) && t.Scale.Contains(row.Values[i]) {
				value = FormatRating(row.Values[i], t.Scale)
			}
			cols = append(cols, Column{Key: FeedbackColumn(row.LeaderName, q), Value: value})
		}
	}
	return cols
}

// Column is a single key and rendered value.
type Column struct {
	Key   string
	Value string
}

// FormatRating renders v as "v/max".
func FormatRating(v int, scale RatingScale) string {
	return strconv.Itoa(v) + "/" + strconv.Itoa(scale.Max)
}
