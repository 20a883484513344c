package repository

import (
	"encoding/json"
	"fmt"
)

// extractQueryResults extracts query results array from SurrealDB response
func extractQueryResults(result interface{}) ([]interface{}, bool) {
	if results, ok := result.([]interface{}); ok {
		if len(results) > 0 {
			if firstResult, ok := results[0].(map[string]interface{}); ok {
				if resultArray, ok := firstResult["result"].([]interface{}); ok {
					return resultArray, true
				}
			}
			return results, true
		}
	}
	return nil, false
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getStringSlice extracts a string slice from a map. Non-string elements are
// rendered as JSON.
func getStringSlice(m map[string]interface{}, key string) []string {
	v, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(v))
	for _, item := range v {
		switch s := item.(type) {
		case string:
			result = append(result, s)
		case nil:
			result = append(result, "")
		default:
			b, err := json.Marshal(s)
			if err != nil {
				result = append(result, fmt.Sprint(s))
				continue
			}
			result = append(result, string(b))
		}
	}
	return result
}
