package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// #region denylist

// parenthesized matches model meta-commentary such as "(модель)" or "(complexity 7)".
var parenthesized = regexp.MustCompile(`\(.*?\)`)

// DefaultLabelWords are scoring artifacts the generation oracle tends to leak into
// its answer. Matched case-insensitively, anywhere in the text.
var DefaultLabelWords = []string{
	"сложность", "параметры", "значение", "баллы", "одобряемость",
	"complexity", "parameters", "value",
}

var defaultNormalizer = New(DefaultLabelWords)

// #endregion denylist

// #region normalizer

// Normalizer canonicalizes raw oracle output into comparable, storable text.
type Normalizer struct {
	labels *regexp.Regexp
}

// New builds a Normalizer that strips the given label words (optionally followed
// by digits). An empty list disables label stripping.
func New(labelWords []string) *Normalizer {
	n := &Normalizer{}
	if len(labelWords) == 0 {
		return n
	}
	quoted := make([]string, len(labelWords))
	for i, w := range labelWords {
		quoted[i] = regexp.QuoteMeta(w)
	}
	n.labels = regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)\s*\d*`)
	return n
}

// Clean runs the normalization pass until the text stops changing, so the result
// is always a fixed point: Clean(Clean(x)) == Clean(x).
func (n *Normalizer) Clean(raw string) string {
	cur := n.cleanOnce(raw)
	for {
		next := n.cleanOnce(cur)
		if next == cur {
			return cur
		}
		cur = next
	}
}

// cleanOnce strips parentheses, label words, non-letters, then collapses
// whitespace and lowercases.
func (n *Normalizer) cleanOnce(s string) string {
	s = parenthesized.ReplaceAllString(s, "")
	if n.labels != nil {
		s = n.labels.ReplaceAllString(s, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// #endregion normalizer

// #region helpers

// Clean normalizes raw text with the default label denylist.
func Clean(raw string) string {
	return defaultNormalizer.Clean(raw)
}

// TokenCount returns the number of space-separated tokens in s.
func TokenCount(s string) int {
	return len(strings.Fields(s))
}

// DedupKey is the identity used for duplicate detection: lowercase,
// whitespace-collapsed and trimmed.
func DedupKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// #endregion helpers
