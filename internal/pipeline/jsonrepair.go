package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Parse steps reported by ParseModelArray, in recovery order.
const (
	ParseDirect  = "direct"
	ParseRepair  = "repair"
	ParseExtract = "extract"
)

// ParseModelArray recovers a JSON array of objects from a model response.
// It tries a direct parse first, then structural repair of truncated or
// malformed output, then regex extraction of the first array. The returned
// step names which attempt succeeded, which is worth logging: recovery depth
// says a lot about how well the model is behaving.
func ParseModelArray(raw string) ([]map[string]any, string, error) {
	cleaned := stripCodeFences(raw)

	if items, err := parseArray(cleaned); err == nil {
		return items, ParseDirect, nil
	}

	if items, err := parseArray(repairJSON(cleaned)); err == nil {
		return items, ParseRepair, nil
	}

	if extracted, ok := extractArray(cleaned); ok {
		if items, err := parseArray(repairJSON(extracted)); err == nil {
			return items, ParseExtract, nil
		}
	}

	return nil, "", fmt.Errorf("model response is not a recoverable JSON array")
}

func parseArray(s string) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// stripCodeFences removes markdown code fences the model may wrap its
// output in, with or without a language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// repairJSON makes a best-effort structural repair of a truncated or
// sloppy array: strip trailing commas, truncate to the last complete
// element, and balance whatever brackets remain open. Prose around the
// array is not handled here; that is the extraction step's job.
func repairJSON(s string) string {
	if !strings.HasPrefix(strings.TrimSpace(s), "[") {
		return s
	}

	s = trailingCommaRe.ReplaceAllString(s, "$1")

	if balanced(s) {
		return s
	}

	if truncated, ok := truncateToLastElement(s); ok {
		return truncated
	}

	return balanceBrackets(s)
}

// truncateToLastElement cuts a partially emitted array back to the end of
// its last complete object element and closes it.
func truncateToLastElement(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	lastEnd := -1

	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				depth++
			}
		case '}', ']':
			if !inString {
				depth--
				// depth 1 means we just closed an object that sits
				// directly inside the top-level array
				if r == '}' && depth == 1 {
					lastEnd = i
				}
			}
		}
	}

	if lastEnd < 0 {
		return "", false
	}
	return s[:lastEnd+1] + "]", true
}

// balanceBrackets appends the closers for any brackets left open.
func balanceBrackets(s string) string {
	var stack []rune
	inString := false
	escaped := false

	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, r)
			}
		case '}', ']':
			if !inString && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}
	return s
}

func balanced(s string) bool {
	var items []any
	return json.Unmarshal([]byte(s), &items) == nil
}

var arrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// extractArray pulls the first top-level array out of surrounding prose.
func extractArray(s string) (string, bool) {
	match := arrayRe.FindString(s)
	return match, match != ""
}
