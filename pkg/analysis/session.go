package analysis

import (
	"fmt"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/query"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/similarity"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/tokenize"
)

// Options are the policy knobs of a comparison.
type Options struct {
	Threshold     float64 // percentage at or above which the pair is flagged
	MinWordLength int     // shortest token kept when indexing
}

// DefaultOptions returns the stock policy: flag at 50%, drop one-letter words.
func DefaultOptions() Options {
	return Options{
		Threshold:     similarity.DefaultThreshold,
		MinWordLength: tokenize.DefaultMinLength,
	}
}

// Tokenizer returns the tokenizer matching o.
func (o Options) Tokenizer() tokenize.Tokenizer {
	return tokenize.New(o.MinWordLength)
}

// Session compares two documents. Set statistics are computed once in
// NewSession and reused by every method; a Session is read-only afterwards.
type Session struct {
	A, B   *Document
	opts   Options
	result similarity.Result
	common []similarity.CommonWord
}

// NewSession builds a session over a and b.
func NewSession(a, b *Document, opts Options) (*Session, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("analysis: session needs two documents")
	}
	if t := opts.Threshold; !(t >= 0 && t <= 100) {
		return nil, fmt.Errorf("analysis: threshold %.2f outside [0,100]", opts.Threshold)
	}
	res := similarity.Compare(a.Freq, b.Freq)
	return &Session{
		A:      a,
		B:      b,
		opts:   opts,
		result: res,
		common: similarity.Table(res.Intersection, a.Freq, b.Freq),
	}, nil
}

// Options returns the options the session was built with.
func (s *Session) Options() Options { return s.opts }

// CommonWords returns the sorted common-word table.
func (s *Session) CommonWords() []similarity.CommonWord {
	out := make([]similarity.CommonWord, len(s.common))
	copy(out, s.common)
	return out
}

// Similarity returns the set statistics and percentage.
func (s *Session) Similarity() similarity.Result { return s.result }

// Flagged reports whether the pair reaches the plagiarism threshold.
func (s *Session) Flagged() bool {
	return similarity.IsAboveThreshold(s.result.Percentage, s.opts.Threshold)
}

// Lookup counts word in both documents.
func (s *Session) Lookup(word string) (query.Result, error) {
	return query.Lookup(word, s.A.Freq, s.B.Freq)
}

// Report is the structured outcome handed to presentation layers.
type Report struct {
	DocumentA    Summary                 `json:"document_a"`
	DocumentB    Summary                 `json:"document_b"`
	CommonWords  []similarity.CommonWord `json:"common_words"`
	Intersection int                     `json:"intersection"`
	Union        int                     `json:"union"`
	Percentage   float64                 `json:"percentage"`
	Threshold    float64                 `json:"threshold"`
	Flagged      bool                    `json:"flagged"`
}

// Report assembles the full analysis.
func (s *Session) Report() Report {
	return Report{
		DocumentA:    s.A.Summary(),
		DocumentB:    s.B.Summary(),
		CommonWords:  s.CommonWords(),
		Intersection: s.result.IntersectionSize(),
		Union:        s.result.UnionSize(),
		Percentage:   s.result.Percentage,
		Threshold:    s.opts.Threshold,
		Flagged:      s.Flagged(),
	}
}
