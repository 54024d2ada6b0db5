package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the first JSON value out of an LLM response.
// Models wrap payloads in markdown fences or add prose around them even
// when told not to, so we scan for the outermost object or array instead
// of unmarshalling the raw text.
func ExtractJSON(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)

	// Strip markdown code fences if present
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return nil, fmt.Errorf("no JSON value in response")
	}

	end, err := matchDelimiter(text, start)
	if err != nil {
		return nil, err
	}

	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("extracted text is not valid JSON")
	}

	return json.RawMessage(candidate), nil
}

// matchDelimiter finds the index of the closing brace/bracket matching the
// opener at start, ignoring delimiters inside string literals.
func matchDelimiter(text string, start int) (int, error) {
	open := text[start]
	var closer byte
	switch open {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	default:
		return 0, fmt.Errorf("unexpected delimiter %q", open)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}

	return 0, fmt.Errorf("unterminated JSON value")
}
