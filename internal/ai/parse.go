package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseEntries turns raw model output into loosely typed entries. Balanced
// JSON blocks are decoded as is in order of appearance; if none decodes the
// text is repaired once and extraction is retried.
func parseEntries(raw string) ([]map[string]any, error) {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	entries, firstErr := decodeBlock(cleaned)
	if firstErr == nil {
		return entries, nil
	}

	if start := strings.IndexAny(cleaned, "[{"); start > 0 {
		cleaned = cleaned[start:]
	}

	entries, err := decodeBlock(repairJSON(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %v (after repair: %v)", ErrParse, firstErr, err)
	}
	return entries, nil
}

// decodeBlock returns the entries of the first balanced block that decodes.
// A block that does not decode is skipped as a whole, so prose such as
// "{my} answer: [...]" still yields the array.
func decodeBlock(text string) ([]map[string]any, error) {
	var firstErr error
	for from := 0; from < len(text); {
		block, end, ok := nextBlock(text, from)
		if !ok {
			break
		}
		from = end

		entries, err := decodeEntries(block)
		if err == nil {
			return entries, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("no balanced JSON block")
}

func decodeEntries(block string) ([]map[string]any, error) {
	var data any
	if err := json.Unmarshal([]byte(block), &data); err != nil {
		return nil, err
	}
	return asEntries(data)
}

// asEntries accepts an array of objects, a single object, or an object
// wrapping the array under any key.
func asEntries(data any) ([]map[string]any, error) {
	switch val := data.(type) {
	case []any:
		entries := make([]map[string]any, 0, len(val))
		for _, item := range val {
			if obj, ok := item.(map[string]any); ok {
				entries = append(entries, obj)
			}
		}
		return entries, nil
	case map[string]any:
		if _, ok := val["id"]; ok {
			return []map[string]any{val}, nil
		}
		for _, key := range []string{"matches", "results", "candidates", "data"} {
			if list, ok := val[key].([]any); ok {
				return asEntries(list)
			}
		}
		for _, nested := range val {
			if list, ok := nested.([]any); ok {
				return asEntries(list)
			}
		}
		return nil, fmt.Errorf("object without match entries")
	default:
		return nil, fmt.Errorf("unexpected JSON value %T", data)
	}
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// extractBlock returns the first balanced {...} or [...] block. Brackets inside
// double-quoted strings are ignored.
func extractBlock(text string) (string, bool) {
	block, _, ok := nextBlock(text, 0)
	return block, ok
}

// nextBlock returns the first balanced block starting at or after from and
// the offset just past it.
func nextBlock(text string, from int) (string, int, bool) {
	offset := strings.IndexAny(text[from:], "[{")
	if offset == -1 {
		return "", 0, false
	}
	start := from + offset

	var stack []byte
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
		case '[', '{':
			stack = append(stack, c)
		case ']', '}':
			if len(stack) == 0 {
				return "", 0, false
			}
			open := stack[len(stack)-1]
			if (c == ']' && open != '[') || (c == '}' && open != '{') {
				return "", 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return text[start : i+1], i + 1, true
			}
		}
	}

	return "", 0, false
}

// repairJSON fixes the usual LLM mistakes: single-quoted strings, bare object
// keys and trailing commas.
func repairJSON(text string) string {
	return repairStructure(normalizeQuotes(text))
}

// repairStructure quotes bare object keys and drops trailing commas. Only text
// outside double-quoted strings is touched.
func repairStructure(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	inString := false
	escaped := false
	expectKey := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			b.WriteByte(c)
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

		switch {
		case c == '"':
			inString = true
			expectKey = false
		case c == ',':
			if next := skipSpace(text, i+1); next < len(text) && (text[next] == '}' || text[next] == ']') {
				i = next - 1
				continue
			}
			expectKey = true
		case c == '{':
			expectKey = true
		case expectKey && isIdentStart(c):
			end := i + 1
			for end < len(text) && isIdentPart(text[end]) {
				end++
			}
			if colon := skipSpace(text, end); colon < len(text) && text[colon] == ':' {
				b.WriteByte('"')
				b.WriteString(text[i:end])
				b.WriteString(`":`)
				i = colon
				expectKey = false
				continue
			}
			expectKey = false
		case !isSpace(c):
			expectKey = false
		}
		b.WriteByte(c)
	}

	return b.String()
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// normalizeQuotes rewrites single-quoted strings as double-quoted ones.
// Apostrophes inside double-quoted strings are left alone.
func normalizeQuotes(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var quote byte
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0 && escaped:
			escaped = false
			if quote == '\'' && c == '\'' {
				b.WriteByte('\'')
				continue
			}
		case quote != 0 && c == '\\':
			escaped = true
			if quote == '\'' && i+1 < len(text) && text[i+1] == '\'' {
				continue
			}
		case quote == '\'' && c == '"':
			b.WriteString(`\"`)
			continue
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
			b.WriteByte('"')
			continue
		case quote != 0 && c == quote:
			quote = 0
			b.WriteByte('"')
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func clampScore(score float64) int {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}
