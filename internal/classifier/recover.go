package classifier

import (
	"encoding/json"
	"strings"
)

// extractAnswers recovers a same-length answer sequence from the raw model
// response. The recovery order is fixed: unwrap a json-tagged fence if one is
// present, parse, accept a top-level array directly, otherwise scan an
// object's values in document order for the first array, and finally reject
// anything whose length differs from the batch. Every failure returns
// (all-absent, false); nothing here panics or raises on malformed input.
func extractAnswers(raw string, batchLen int) ([]string, bool) {
	payload := unwrapJSONFence(raw)

	var parsed json.RawMessage
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return make([]string, batchLen), false
	}

	sequence, ok := answerSequence(parsed)
	if !ok || len(sequence) != batchLen {
		return make([]string, batchLen), false
	}

	answers := make([]string, batchLen)
	for i, value := range sequence {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			answers[i] = s
		}
	}
	return answers, true
}

// answerSequence resolves the parsed value to an ordered list: either the
// value itself, or the first list-valued member of an object wrapper.
func answerSequence(parsed json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := strings.TrimSpace(string(parsed))
	if trimmed == "" {
		return nil, false
	}

	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, false
		}
		return list, true
	case '{':
		return firstListValue(trimmed)
	default:
		return nil, false
	}
}

// firstListValue walks an object token by token so values are visited in
// document order, which a Go map would not preserve.
func firstListValue(object string) ([]json.RawMessage, bool) {
	decoder := json.NewDecoder(strings.NewReader(object))
	if _, err := decoder.Token(); err != nil { // opening brace
		return nil, false
	}
	for decoder.More() {
		if _, err := decoder.Token(); err != nil { // key
			return nil, false
		}
		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return nil, false
		}
		inner := strings.TrimSpace(string(value))
		if strings.HasPrefix(inner, "[") {
			var list []json.RawMessage
			if err := json.Unmarshal(value, &list); err != nil {
				return nil, false
			}
			return list, true
		}
	}
	return nil, false
}

// unwrapJSONFence extracts the contents of a ```json fenced block when the
// response contains one; otherwise the full text is used as-is.
func unwrapJSONFence(raw string) string {
	lower := strings.ToLower(raw)
	start := strings.Index(lower, "```json")
	if start < 0 {
		return strings.TrimSpace(raw)
	}
	body := raw[start+len("```json"):]
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
