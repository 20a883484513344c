package model

import (
	"encoding/json"
	"testing"
)

// ============================================================================
// BaseColumns Tests
// ============================================================================

func TestBaseColumns_OrderAndCount(t *testing.T) {
	t.Parallel()

	cols := BaseColumns()

	if len(cols) != 39 {
		t.Fatalf("expected 39 base columns, got %d", len(cols))
	}
	if cols[0] != ColSubmissionID || cols[len(cols)-1] != ColCultureText {
		t.Errorf("unexpected column bounds: %s .. %s", cols[0], cols[len(cols)-1])
	}
	if cols[17] != "culturePulse_focus" || cols[27] != "culturePulse_joy" {
		t.Errorf("culture pulse columns out of place: %v", cols[17:28])
	}
	for _, c := range cols {
		if IsFeedbackColumn(c) {
			t.Errorf("base column %s must not be a dynamic feedback column", c)
		}
	}
}

func TestIsFeedbackColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want bool
	}{
		{"feedback_Saif_clarity", true},
		{"feedback_x", false},
		{"feedbackLeaders", false},
		{"leaderFeedback", false},
	}
	for _, tt := range tests {
		if got := IsFeedbackColumn(tt.key); got != tt.want {
			t.Errorf("IsFeedbackColumn(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

// ============================================================================
// FlatRecord Tests
// ============================================================================

func TestFlatRecord_MarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	r := NewFlatRecord()
	r.Set("b", "2")
	r.Set("a", "1")
	r.Set(ColCompletionPercentage, 100)
	r.Set("b", "3")

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"b":"3","a":"1","completionPercentage":100}` {
		t.Errorf("unexpected JSON: %s", b)
	}
}

func TestFlatRecord_UnmarshalRoundTrip(t *testing.T) {
	t.Parallel()

	var r FlatRecord
	if err := json.Unmarshal([]byte(`{"z":"1","completionPercentage":100,"a":""}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	keys := r.Keys()
	if len(keys) != 3 || keys[0] != "z" || keys[2] != "a" {
		t.Errorf("unexpected key order: %v", keys)
	}
	if r.String(ColCompletionPercentage) != "100" {
		t.Errorf("expected numeric completion, got %q", r.String(ColCompletionPercentage))
	}
}

func TestFlatRecord_FormValues(t *testing.T) {
	t.Parallel()

	r := NewFlatRecord()
	r.Set("winsText", "a & b")
	r.Set(ColCompletionPercentage, 100)
	r.Set("nested", map[string]string{"k": "v"})

	form := r.FormValues()

	if form.Get("winsText") != "a & b" {
		t.Errorf("unexpected winsText: %q", form.Get("winsText"))
	}
	if form.Get(ColCompletionPercentage) != "100" {
		t.Errorf("unexpected completion: %q", form.Get(ColCompletionPercentage))
	}
	if form.Get("nested") != `{"k":"v"}` {
		t.Errorf("expected JSON text for objects, got %q", form.Get("nested"))
	}
}

// ============================================================================
// LeaderRatingTable Tests
// ============================================================================

func TestLeaderRatingTable_Columns(t *testing.T) {
	t.Parallel()

	table := LeaderRatingTable{
		Questions: []QuestionID{"clarity", "bias"},
		Scale:     ScaleTen,
		Rows: []LeaderRatingRow{
			{Leader: "hm-saif-noor", LeaderName: "Saif", Values: []int{8, 0}},
			{Leader: "api-singha", LeaderName: "Abhi", Values: []int{11}},
		},
	}

	cols := table.Columns()

	want := []Column{
		{Key: "feedback_Saif_clarity", Value: "8/10"},
		{Key: "feedback_Saif_bias", Value: ""},
		{Key: "feedback_Abhi_clarity", Value: ""},
		{Key: "feedback_Abhi_bias", Value: ""},
	}
	if len(cols) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(cols))
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("column %d: got %+v, want %+v", i, cols[i], want[i])
		}
	}
}
