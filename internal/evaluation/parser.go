package evaluation

import "encoding/json"

// Parse extracts device evaluations from raw agent output.
//
// The algorithm is a greedy brace-span extraction: take the substring from
// the first '{' to the last '}' and decode it as a Payload. Any failure
// (no braces, malformed JSON, or a decoded object without an evaluations
// field) yields an empty list, never an error. The caller retains the raw
// text separately so a human can recover the agent's intent.
func Parse(raw string) []DeviceEvaluation {
	payload, ok := ParsePayload(raw)
	if !ok {
		return nil
	}
	return payload.Evaluations
}

// ParsePayload is Parse with the surrounding summary and priority fixes.
// ok is false when nothing decodable was found.
func ParsePayload(raw string) (*Payload, bool) {
	span := extractBraceSpan(raw)
	if span == "" {
		return nil, false
	}

	var payload Payload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, false
	}
	if payload.Evaluations == nil {
		return nil, false
	}
	return &payload, true
}

// extractBraceSpan returns the substring from the first '{' to the last '}'.
// Returns empty string if no valid boundaries are found. Deliberately not a
// real JSON-boundary scan; the prompt instructs the agent to emit JSON only,
// and prose-wrapped JSON is the failure mode this still survives.
func extractBraceSpan(content string) string {
	start := -1
	for i := 0; i < len(content); i++ {
		if content[i] == '{' {
			start = i
			break
		}
	}

	end := -1
	for i := len(content) - 1; i >= 0; i-- {
		if content[i] == '}' {
			end = i
			break
		}
	}

	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return ""
}
