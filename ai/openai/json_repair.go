package openai

import (
	"strings"
	"unicode"
)

// stripCodeFences removes the markdown fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// repairJSON fixes the formatting mistakes vision models commonly make:
// keys missing their opening quote (`, label":`), fully unquoted keys
// (`{label: ...`) and trailing commas before a closing bracket.
// Content inside string literals is never touched.
func repairJSON(s string) string {
	in := []rune(s)
	var out strings.Builder
	out.Grow(len(s) + 16)

	inString := false
	escaped := false
	expectKey := false
	var open []rune

	for i := 0; i < len(in); i++ {
		ch := in[i]

		if inString {
			out.WriteRune(ch)
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

		switch {
		case ch == '"':
			inString = true
			expectKey = false
			out.WriteRune(ch)

		case ch == '{' || ch == '[':
			open = append(open, ch)
			expectKey = ch == '{'
			out.WriteRune(ch)

		case ch == '}' || ch == ']':
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
			expectKey = false
			out.WriteRune(ch)

		case ch == ',':
			j := skipSpace(in, i+1)
			if j < len(in) && (in[j] == '}' || in[j] == ']') {
				continue
			}
			expectKey = len(open) > 0 && open[len(open)-1] == '{'
			out.WriteRune(ch)

		case expectKey && unicode.IsLetter(ch):
			j := i
			for j < len(in) && (unicode.IsLetter(in[j]) || unicode.IsDigit(in[j]) || in[j] == '_') {
				j++
			}
			key := string(in[i:j])
			switch {
			case j < len(in) && in[j] == '"':
				// missing opening quote; the closing quote is kept
				out.WriteString(`"` + key + `"`)
				i = j
			case skipSpace(in, j) < len(in) && in[skipSpace(in, j)] == ':':
				out.WriteString(`"` + key + `"`)
				i = j - 1
			default:
				out.WriteString(key)
				i = j - 1
			}
			expectKey = false

		default:
			if !unicode.IsSpace(ch) {
				expectKey = false
			}
			out.WriteRune(ch)
		}
	}
	return out.String()
}

func skipSpace(in []rune, i int) int {
	for i < len(in) && unicode.IsSpace(in[i]) {
		i++
	}
	return i
}
