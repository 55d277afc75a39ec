package util

import (
	"encoding/json"
)

// DecodeEach decodes every element of a raw JSON array into T, skipping
// elements that do not fit. A missing or non-array value gives ok=false.
// Search endpoints change shape without notice and one odd record should
// not cost the rest.
func DecodeEach[T any](raw json.RawMessage) (out []T, skipped int, ok bool) {
	if len(raw) == 0 {
		return nil, 0, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, false
	}
	out = make([]T, 0, len(items))
	for _, it := range items {
		var v T
		if err := json.Unmarshal(it, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped, true
}
