package service

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultPassThreshold is the minimal similarity accepted as a correct answer.
const DefaultPassThreshold = 0.75

// punctuation lists the characters dropped before comparison.
const punctuation = ".,!?;:\"'()[]{}«»—–-‘’“”"

// AnswerValidator grades candidate answers with fuzzy matching.
type AnswerValidator struct {
	threshold float64 // Similarity threshold (0.0 - 1.0]
}

// NewAnswerValidator creates a new AnswerValidator.
// A threshold outside (0, 1] falls back to DefaultPassThreshold.
func NewAnswerValidator(threshold float64) *AnswerValidator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultPassThreshold
	}
	return &AnswerValidator{threshold: threshold}
}

// Threshold returns the configured pass threshold.
func (v *AnswerValidator) Threshold() float64 {
	return v.threshold
}

// Accept reports whether score passes the threshold. The boundary is inclusive.
func (v *AnswerValidator) Accept(score float64) bool {
	return score >= v.threshold
}

// Validate scores candidate against expected and applies the threshold.
func (v *AnswerValidator) Validate(expected, candidate string) (float64, bool) {
	score := Similarity(expected, candidate)
	return score, v.Accept(score)
}

// Normalize canonicalizes text for comparison: lower case, no punctuation,
// single spaces, no leading or trailing whitespace.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)

	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, s)

	// Remove extra whitespace
	return strings.Join(strings.Fields(s), " ")
}

// Similarity returns the Ratcliff/Obershelp ratio of the normalized strings.
// It is 0 when either side normalizes to an empty string.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	m := difflib.NewMatcher(runeStrings(na), runeStrings(nb))
	return m.Ratio()
}

// runeStrings splits s into one element per character so that multi-byte
// letters are compared as single units.
func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
