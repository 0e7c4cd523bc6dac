// Package recheck re-runs a recorded comparison against the stored
// documents and reports whether the outcome drifted.
package recheck

import (
	"context"
	"fmt"
	"math"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/loader"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/recorder"
)

// tolerance absorbs float formatting differences in stored percentages.
const tolerance = 1e-6

// Result holds the outcome of a recheck.
type Result struct {
	RunID              string  `json:"run_id"`
	OriginalPercentage float64 `json:"original_percentage"`
	RecheckPercentage  float64 `json:"recheck_percentage"`
	OriginalFlagged    bool    `json:"original_flagged"`
	RecheckFlagged     bool    `json:"recheck_flagged"`
	Drift              bool    `json:"drift"`
	DriftSummary       string  `json:"drift_summary,omitempty"`
}

// Options configures a recheck.
type Options struct {
	Loader *loader.Loader // reads the documents named by the record refs
}

// Run loads both documents referenced by rec, verifies their checksums,
// and recomputes the comparison with the recorded policy.
func Run(ctx context.Context, rec recorder.Record, opts Options) (Result, error) {
	result := Result{
		RunID:              rec.RunID,
		OriginalPercentage: rec.Percentage,
		OriginalFlagged:    rec.Flagged,
	}
	if opts.Loader == nil {
		return result, fmt.Errorf("recheck: no loader configured")
	}

	l := *opts.Loader
	l.Tokenizer = analysis.Options{MinWordLength: rec.MinWordLen}.Tokenizer()

	a, err := fetch(ctx, &l, "document_a", rec.DocumentA)
	if err != nil {
		return result, err
	}
	b, err := fetch(ctx, &l, "document_b", rec.DocumentB)
	if err != nil {
		return result, err
	}

	s, err := analysis.NewSession(a, b, analysis.Options{
		Threshold:     rec.Threshold,
		MinWordLength: rec.MinWordLen,
	})
	if err != nil {
		return result, fmt.Errorf("recheck: %w", err)
	}

	rep := s.Report()
	result.RecheckPercentage = rep.Percentage
	result.RecheckFlagged = rep.Flagged

	switch {
	case rep.Flagged != rec.Flagged:
		result.Drift = true
		result.DriftSummary = fmt.Sprintf("verdict changed: flagged=%v, recorded flagged=%v (threshold=%.2f)",
			rep.Flagged, rec.Flagged, rec.Threshold)
	case math.Abs(rep.Percentage-rec.Percentage) > tolerance:
		result.Drift = true
		result.DriftSummary = fmt.Sprintf("percentage=%.2f, recorded=%.2f; intersection=%d/%d, union=%d/%d",
			rep.Percentage, rec.Percentage, rep.Intersection, rec.Intersection, rep.Union, rec.Union)
	}

	return result, nil
}

func fetch(ctx context.Context, l *loader.Loader, side string, d recorder.Document) (*analysis.Document, error) {
	if d.Ref == "" {
		return nil, fmt.Errorf("recheck: no ref for %s in report", side)
	}
	doc, err := l.Load(ctx, d.Ref)
	if err != nil {
		return nil, fmt.Errorf("recheck: load %s: %w", side, err)
	}
	if d.Checksum != "" && doc.Checksum != d.Checksum {
		return nil, fmt.Errorf("recheck: %s checksum mismatch (tampered?)", side)
	}
	return doc, nil
}
