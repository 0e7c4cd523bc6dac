// Package frequency counts token occurrences for a single document and
// exposes the document's vocabulary as a set.
package frequency

import "sort"

// Map is an immutable token → occurrence count mapping. Every stored count
// is at least 1 and the counts sum to the length of the token sequence the
// map was built from. The zero value is an empty map.
type Map struct {
	counts map[string]int
	total  int
	vocab  Set
}

// Build counts each distinct token in tokens.
func Build(tokens []string) Map {
	counts := make(map[string]int)
	for _, tok := range tokens {
		counts[tok]++
	}

	words := make(map[string]struct{}, len(counts))
	for w := range counts {
		words[w] = struct{}{}
	}

	return Map{
		counts: counts,
		total:  len(tokens),
		vocab:  Set{words: words},
	}
}

// Get returns the count for token, or 0 if it never occurred.
func (m Map) Get(token string) int {
	return m.counts[token]
}

// Total returns the sum of all counts.
func (m Map) Total() int {
	return m.total
}

// Unique returns the number of distinct tokens.
func (m Map) Unique() int {
	return len(m.counts)
}

// Vocabulary returns the set of distinct tokens. It is computed once at
// build time and shared by every caller.
func (m Map) Vocabulary() Set {
	return m.vocab
}

// Counts returns a copy of the underlying mapping.
func (m Map) Counts() map[string]int {
	out := make(map[string]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

// Set is an immutable set of tokens.
type Set struct {
	words map[string]struct{}
}

// NewSet builds a set from words, ignoring duplicates.
func NewSet(words ...string) Set {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return Set{words: m}
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.words)
}

// Contains reports whether word is a member.
func (s Set) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members present in both s and other.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	out := make(map[string]struct{})
	for w := range small.words {
		if large.Contains(w) {
			out[w] = struct{}{}
		}
	}
	return Set{words: out}
}

// Union returns the members present in either s or other.
func (s Set) Union(other Set) Set {
	out := make(map[string]struct{}, s.Len()+other.Len())
	for w := range s.words {
		out[w] = struct{}{}
	}
	for w := range other.words {
		out[w] = struct{}{}
	}
	return Set{words: out}
}
