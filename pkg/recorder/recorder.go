// Package recorder writes comparison reports: one JSON file per run,
// holding the scores and enough document references to re-run it.
package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/similarity"
)

// Version of the report file format.
const Version = "1.0.0"

// Suffix is appended to the run id to form the report file name.
const Suffix = ".report.json"

// Record is the report file format, one per comparison.
type Record struct {
	Version      string                  `json:"version"`
	RunID        string                  `json:"run_id"`
	TraceID      string                  `json:"trace_id,omitempty"`
	Timestamp    time.Time               `json:"timestamp"`
	DocumentA    Document                `json:"document_a"`
	DocumentB    Document                `json:"document_b"`
	CommonWords  []similarity.CommonWord `json:"common_words"`
	Intersection int                     `json:"intersection"`
	Union        int                     `json:"union"`
	Percentage   float64                 `json:"percentage"`
	Threshold    float64                 `json:"threshold"`
	MinWordLen   int                     `json:"min_word_length"`
	Flagged      bool                    `json:"flagged"`
	DurationMS   int64                   `json:"duration_ms"`
}

// Document describes one side of a comparison.
type Document struct {
	Name        string `json:"name"`
	Ref         string `json:"ref,omitempty"` // local path or vault:// URI
	Checksum    string `json:"checksum"`
	TotalWords  int    `json:"total_words"`
	UniqueWords int    `json:"unique_words"`
}

// FromReport fills a record from an analysis report. refA and refB say
// where the documents can be fetched again.
func FromReport(runID string, rep analysis.Report, opts analysis.Options, refA, refB string) Record {
	return Record{
		RunID:        runID,
		Timestamp:    time.Now().UTC(),
		DocumentA:    document(rep.DocumentA, refA),
		DocumentB:    document(rep.DocumentB, refB),
		CommonWords:  rep.CommonWords,
		Intersection: rep.Intersection,
		Union:        rep.Union,
		Percentage:   rep.Percentage,
		Threshold:    rep.Threshold,
		MinWordLen:   opts.MinWordLength,
		Flagged:      rep.Flagged,
	}
}

func document(s analysis.Summary, ref string) Document {
	return Document{
		Name:        s.Name,
		Ref:         ref,
		Checksum:    s.Checksum,
		TotalWords:  s.TotalWords,
		UniqueWords: s.UniqueWords,
	}
}

// Writer writes report records to a directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer that saves reports to dir.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("recorder: create dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Marshal stamps the format version on r and encodes it.
func Marshal(r Record) ([]byte, error) {
	r.Version = Version
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("recorder: marshal: %w", err)
	}
	return data, nil
}

// Write persists a record as <run_id>.report.json and returns the encoded
// bytes that were written.
func (w *Writer) Write(r Record) ([]byte, error) {
	data, err := Marshal(r)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(w.dir, r.RunID+Suffix)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("recorder: write %s: %w", path, err)
	}
	return data, nil
}

// Load reads a report record from a file path.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("recorder: read %s: %w", path, err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("recorder: parse %s: %w", path, err)
	}
	return r, nil
}
