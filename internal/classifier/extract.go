package classifier

import (
	"encoding/json"
	"strings"
)

// extractJSONObject recovers a JSON object from a model reply that may wrap
// it in prose or a markdown fence. It tries, in order:
//  1. the whole text as a JSON object,
//  2. the contents of the first ``` / ```json fenced block,
//  3. the first balanced {...} span anywhere in the text.
//
// Returns the candidate object text and whether one was found.
func extractJSONObject(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if isJSONObject(trimmed) {
		return trimmed, true
	}

	if inner, ok := fencedBlock(trimmed); ok {
		inner = strings.TrimSpace(inner)
		if isJSONObject(inner) {
			return inner, true
		}
		if span, ok := balancedObject(inner); ok {
			return span, true
		}
	}

	if span, ok := balancedObject(trimmed); ok {
		return span, true
	}
	return "", false
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

// fencedBlock returns the body of the first triple-backtick block,
// tolerating an optional "json" language tag.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	if strings.HasPrefix(rest, "json") {
		rest = rest[len("json"):]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// balancedObject scans for the first '{' and walks to its matching '}',
// counting depth and skipping brace characters inside string literals.
// A non-greedy regexp cannot do this: repaired payloads routinely nest
// objects.
func balancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				// First balanced span was not valid JSON; try again
				// after it.
				if span, ok := balancedObject(text[i+1:]); ok {
					return span, true
				}
				return "", false
			}
		}
	}
	return "", false
}
