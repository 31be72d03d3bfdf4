package live

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxQuote bounds how much changed text a summary quotes.
const maxQuote = 200

// Summarize describes how next differs from prev by trimming their
// common prefix and suffix. The result is passed to the classifier so
// it can focus on what the learner just wrote.
func Summarize(prev, next string) string {
	if prev == next {
		return "no change"
	}
	if prev == "" {
		return fmt.Sprintf("initial text (%d chars)", utf8.RuneCountInString(next))
	}

	p := []rune(prev)
	n := []rune(next)

	start := 0
	for start < len(p) && start < len(n) && p[start] == n[start] {
		start++
	}
	endP, endN := len(p), len(n)
	for endP > start && endN > start && p[endP-1] == n[endN-1] {
		endP--
		endN--
	}

	removed := string(p[start:endP])
	added := string(n[start:endN])

	var parts []string
	if removed != "" {
		parts = append(parts, fmt.Sprintf("removed %d chars: %q", len(p[start:endP]), quote(removed)))
	}
	if added != "" {
		parts = append(parts, fmt.Sprintf("added %d chars: %q", len(n[start:endN]), quote(added)))
	}
	return strings.Join(parts, "; ")
}

func quote(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxQuote {
		return s
	}
	return string(r[:maxQuote]) + "..."
}
