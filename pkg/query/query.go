// Package query answers single-word frequency lookups against two
// already-built frequency maps.
package query

import (
	"errors"
	"fmt"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/frequency"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/tokenize"
)

// ErrInvalidQuery is returned for an empty or malformed search term.
// Callers may retry with corrected input.
var ErrInvalidQuery = errors.New("invalid query")

// Error describes a rejected search term.
type Error struct {
	Input  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("query: %s %q: %s", ErrInvalidQuery, e.Input, e.Reason)
}

func (e *Error) Unwrap() error { return ErrInvalidQuery }

// Result is the outcome of a lookup.
type Result struct {
	Word   string `json:"word"`
	CountA int    `json:"count_a"`
	CountB int    `json:"count_b"`
	Found  bool   `json:"found"`
}

// Lookup reports how often word occurs in each document. The word is
// lowercased and trimmed first; it is not length-filtered, so a one-letter
// query is accepted and simply never matches.
func Lookup(word string, a, b frequency.Map) (Result, error) {
	if word == "" {
		return Result{}, &Error{Input: word, Reason: "empty"}
	}
	w := tokenize.Normalize(word)
	if w == "" {
		return Result{}, &Error{Input: word, Reason: "blank"}
	}

	ca, cb := a.Get(w), b.Get(w)
	return Result{
		Word:   w,
		CountA: ca,
		CountB: cb,
		Found:  ca > 0 || cb > 0,
	}, nil
}

// LookupValue accepts an arbitrary decoded value (for example a field from
// a JSON request) and rejects anything that is not a string.
func LookupValue(v any, a, b frequency.Map) (Result, error) {
	switch w := v.(type) {
	case string:
		return Lookup(w, a, b)
	case []byte:
		return Lookup(string(w), a, b)
	case fmt.Stringer:
		return Lookup(w.String(), a, b)
	default:
		return Result{}, &Error{Input: fmt.Sprint(v), Reason: fmt.Sprintf("not a string (%T)", v)}
	}
}
