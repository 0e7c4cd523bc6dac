// Package tokenize turns raw document text into comparable word tokens:
// lowercase runs of ASCII letters, with very short words dropped.
package tokenize

import "strings"

// DefaultMinLength keeps words of two letters or more.
const DefaultMinLength = 2

// Tokenizer splits text into word tokens. The zero value uses
// DefaultMinLength.
type Tokenizer struct {
	// MinLength is the shortest word kept. Values below 1 mean DefaultMinLength.
	MinLength int
}

// New returns a tokenizer that discards words shorter than minLength.
func New(minLength int) Tokenizer {
	return Tokenizer{MinLength: minLength}
}

// Tokenize lowercases text and returns every maximal run of ASCII letters
// that is at least MinLength long, in document order. Digits, punctuation,
// whitespace and non-ASCII characters all act as separators.
func (t Tokenizer) Tokenize(text string) []string {
	minLen := t.MinLength
	if minLen < 1 {
		minLen = DefaultMinLength
	}

	text = strings.ToLower(text)

	var tokens []string
	start := -1
	for i := 0; i <= len(text); i++ {
		if i < len(text) && isLetter(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if i-start >= minLen {
				tokens = append(tokens, text[start:i])
			}
			start = -1
		}
	}
	return tokens
}

// Tokenize splits text with the default tokenizer.
func Tokenize(text string) []string {
	return Tokenizer{}.Tokenize(text)
}

// Normalize prepares a single query word for lookup: lowercased and trimmed.
// No length filter is applied, so a one-letter query is still a valid
// (never matching) lookup key.
func Normalize(word string) string {
	return strings.TrimSpace(strings.ToLower(word))
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}
