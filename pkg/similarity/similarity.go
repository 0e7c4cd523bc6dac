// Package similarity scores two documents by vocabulary overlap.
//
// The score is the Jaccard index of the two vocabularies expressed as a
// percentage. Word frequency and word order never affect the score; they
// only show up in the common-word table.
package similarity

import "github.com/nostalgicskinco/plagiarism-detector/pkg/frequency"

// DefaultThreshold is the percentage at or above which two documents are
// flagged as plagiarised.
const DefaultThreshold = 50.0

// CommonWord is one row of the common-word table.
type CommonWord struct {
	Word   string `json:"word"`
	CountA int    `json:"count_a"`
	CountB int    `json:"count_b"`
}

// Result holds the set statistics behind a similarity score.
type Result struct {
	Intersection frequency.Set `json:"-"`
	Union        frequency.Set `json:"-"`
	Percentage   float64       `json:"percentage"`
}

// Compare computes the vocabulary intersection and union of a and b and
// the Jaccard percentage derived from them.
func Compare(a, b frequency.Map) Result {
	va, vb := a.Vocabulary(), b.Vocabulary()
	inter := va.Intersect(vb)
	union := va.Union(vb)
	return Result{
		Intersection: inter,
		Union:        union,
		Percentage:   jaccardPercentage(inter.Len(), union.Len()),
	}
}

// Percentage returns 100 × |A∩B| / |A∪B| over the two vocabularies,
// or 0 when both are empty.
func Percentage(a, b frequency.Map) float64 {
	return Compare(a, b).Percentage
}

// CommonWords lists every token present in both vocabularies with its count
// in each document, sorted by token.
func CommonWords(a, b frequency.Map) []CommonWord {
	return Table(a.Vocabulary().Intersect(b.Vocabulary()), a, b)
}

// Table builds the common-word rows for an already computed intersection.
func Table(inter frequency.Set, a, b frequency.Map) []CommonWord {
	words := inter.Sorted()
	rows := make([]CommonWord, 0, len(words))
	for _, w := range words {
		rows = append(rows, CommonWord{Word: w, CountA: a.Get(w), CountB: b.Get(w)})
	}
	return rows
}

// IsAboveThreshold reports whether percentage reaches threshold.
func IsAboveThreshold(percentage, threshold float64) bool {
	return percentage >= threshold
}

// IntersectionSize returns |A∩B|.
func (r Result) IntersectionSize() int { return r.Intersection.Len() }

// UnionSize returns |A∪B|.
func (r Result) UnionSize() int { return r.Union.Len() }

func jaccardPercentage(intersection, union int) float64 {
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union) * 100
}
