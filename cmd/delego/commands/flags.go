package commands

import (
	"encoding/json"
	"fmt"
	"time"
)

// parseTimeFlag parses an optional RFC3339 flag value, empty means unset.
func parseTimeFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid RFC3339 timestamp: %w", s, err)
	}

	t = t.UTC()
	return &t, nil
}

// parseDataFlag parses an optional JSON object flag value, empty means unset.
func parseDataFlag(s string) (map[string]interface{}, error) {
	if s == "" {
		return nil, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, fmt.Errorf("%q is not a valid JSON object: %w", s, err)
	}

	return data, nil
}
