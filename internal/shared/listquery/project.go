package listquery

import (
	"encoding/json"
	"fmt"
)

// Project reduces each item to the selected JSON fields. With no selection
// the items are returned as they are.
func Project[T any](items []T, fields []string) (any, error) {
	if len(fields) == 0 {
		return items, nil
	}

	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}

		var full map[string]json.RawMessage
		if err := json.Unmarshal(raw, &full); err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}

		picked := make(map[string]json.RawMessage, len(fields))
		for _, f := range fields {
			if v, ok := full[f]; ok {
				picked[f] = v
			}
		}
		out = append(out, picked)
	}
	return out, nil
}
