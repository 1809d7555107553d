package core

import "strings"

// LabelSeparator joins synonyms inside a single classifier label, e.g. "cat, tabby".
const LabelSeparator = ", "

// SplitLabels splits a classifier label into its individual label tokens.
// Empty tokens are dropped; order is preserved.
func SplitLabels(label string) []string {
	parts := strings.Split(label, LabelSeparator)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
