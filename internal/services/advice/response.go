package advice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// adviceResponse is the object the prompt asks the generator to return
type adviceResponse struct {
	Answer          string      `json:"answer"`
	Recommendations stringList  `json:"recommendations"`
	Considerations  stringList  `json:"considerations"`
	NextSteps       stringList  `json:"next_steps"`
	MarketContext   textOrValue `json:"market_context"`
}

// stringList accepts a JSON array, a single string or null. Non-string
// array items are flattened to text.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = stringList{s}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected string list: %w", err)
	}
	out := make(stringList, 0, len(items))
	for _, item := range items {
		if s := flatten(item); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// textOrValue accepts a string or any JSON value, kept as text
type textOrValue string

func (t *textOrValue) UnmarshalJSON(data []byte) error {
	*t = textOrValue(flatten(data))
	return nil
}

// flatten renders a JSON value as plain text. Objects become "key: value"
// pairs in key order.
func flatten(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return flattenValue(v)
}

func flattenValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := flattenValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := flattenValue(x[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}
