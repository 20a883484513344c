package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// SheetName is the tab the receiver appends to.
const SheetName = "Submissions"

// Sheet is a header row plus data rows. Every row has one cell per header.
type Sheet struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// EnsureHeaders writes the base header row into an empty sheet. It reports
// whether the headers were created.
func (s *Sheet) EnsureHeaders() bool {
	if len(s.Headers) > 0 {
		return false
	}
	s.Headers = BaseColumns()
	return true
}

// Widen appends every leader rating column in keys that the header row does
// not have yet, in the order given. Existing rows are padded with empty
// cells. It returns the added headers.
func (s *Sheet) Widen(keys []string) []string {
	seen := make(map[string]struct{}, len(s.Headers))
	for _, h := range s.Headers {
		seen[h] = struct{}{}
	}
	var added []string
	for _, k := range keys {
		if !IsFeedbackColumn(k) {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		added = append(added, k)
	}
	if len(added) == 0 {
		return nil
	}
	s.Headers = append(s.Headers, added...)
	for i, row := range s.Rows {
		s.Rows[i] = padRow(row, len(s.Headers))
	}
	return added
}

// Append widens the sheet for the payload and adds one row rendered in header
// order. Keys without a matching header are dropped. It returns the row.
func (s *Sheet) Append(payload map[string]any) []string {
	s.EnsureHeaders()
	s.Widen(PayloadKeys(payload))
	row := make([]string, len(s.Headers))
	for i, h := range s.Headers {
		if v, ok := payload[h]; ok {
			row[i] = RenderCell(v)
		}
	}
	s.Rows = append(s.Rows, row)
	return row
}

// Column returns the index of a header, or -1.
func (s *Sheet) Column(header string) int {
	for i, h := range s.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// HasSubmission reports whether a row already carries the submission id.
func (s *Sheet) HasSubmission(id string) bool {
	col := s.Column(ColSubmissionID)
	if col < 0 || id == "" {
		return false
	}
	for _, row := range s.Rows {
		if col < len(row) && row[col] == id {
			return true
		}
	}
	return false
}

func padRow(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

// PayloadKeys returns the payload keys sorted so dynamic columns are added in
// a stable order.
func PayloadKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderCell converts a payload value to cell text. Booleans become Yes or
// No, lists are comma joined, objects are written as JSON, and empty or zero
// values become an empty cell.
func RenderCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		return x
	case int:
		if x == 0 {
			return ""
		}
		return strconv.Itoa(x)
	case int64:
		if x == 0 {
			return ""
		}
		return strconv.FormatInt(x, 10)
	case float64:
		if x == 0 {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		if f, err := x.Float64(); err == nil && f == 0 {
			return ""
		}
		return x.String()
	case []string:
		return strings.Join(x, ", ")
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = listElement(e)
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func listElement(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

// ParseFormPayload decodes a form-encoded submission. Every value is kept as
// text so a cell reads the same as it would from the JSON transport.
func ParseFormPayload(form url.Values) map[string]any {
	payload := make(map[string]any, len(form))
	for k, vs := range form {
		if len(vs) == 0 {
			continue
		}
		payload[k] = vs[0]
	}
	return payload
}
