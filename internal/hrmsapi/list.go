package hrmsapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

var listKeys = []string{"items", "results", "employees", "profiles", "leaves", "grievances", "announcements", "polls"}

// List decodes a collection that arrives either as a bare array or wrapped
// in an object next to pagination fields.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("expected a list: %w", err)
	}

	for _, key := range listKeys {
		if raw, ok := fields[key]; ok && isArray(raw) {
			return l.UnmarshalJSON(raw)
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isArray(fields[k]) {
			return l.UnmarshalJSON(fields[k])
		}
	}

	*l = nil
	return nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
