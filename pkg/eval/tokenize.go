package eval

import (
	"strings"
	"unicode"
)

// tokenize lower-cases text, replaces punctuation with spaces, and keeps
// words longer than two characters. All metric formulas share this
// tokenizer; changing it changes every score.
func tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, t := range strings.Fields(b.String()) {
		if len(t) > 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenize(text) {
		set[t] = true
	}
	return set
}

func intersectionSize(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}

// splitSentences breaks text at runs of sentence-ending punctuation,
// dropping empty fragments.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			flush()
			continue
		}
		b.WriteRune(r)
	}
	flush()
	return sentences
}

func truncateChars(text string, n int) string {
	if len(text) > n {
		return text[:n]
	}
	return text
}
