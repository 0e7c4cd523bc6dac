package recheck

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/loader"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/recorder"
	"github.com/nostalgicskinco/plagiarism-detector/testdata"
)

// recordFixture writes both texts to disk, analyses them and returns the
// resulting record.
func recordFixture(t *testing.T, fix testdata.Fixture, opts analysis.Options) recorder.Record {
	t.Helper()
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(pathA, []byte(fix.TextA), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathB, []byte(fix.TextB), 0644); err != nil {
		t.Fatal(err)
	}

	l := &loader.Loader{Tokenizer: opts.Tokenizer()}
	a, err := l.Load(context.Background(), pathA)
	if err != nil {
		t.Fatal(err)
	}
	b, err := l.Load(context.Background(), pathB)
	if err != nil {
		t.Fatal(err)
	}
	s, err := analysis.NewSession(a, b, opts)
	if err != nil {
		t.Fatal(err)
	}
	return recorder.FromReport("run-recheck", s.Report(), opts, pathA, pathB)
}

func TestRunNoDrift(t *testing.T) {
	for _, fix := range testdata.AllFixtures() {
		t.Run(fix.Name, func(t *testing.T) {
			rec := recordFixture(t, fix, analysis.DefaultOptions())
			res, err := Run(context.Background(), rec, Options{Loader: &loader.Loader{}})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.Drift {
				t.Errorf("unexpected drift: %s", res.DriftSummary)
			}
			if res.RecheckPercentage != rec.Percentage {
				t.Errorf("recheck = %f, recorded %f", res.RecheckPercentage, rec.Percentage)
			}
		})
	}
}

func TestRunUsesRecordedPolicy(t *testing.T) {
	fix := testdata.CatAndDog()
	// Dropping two-letter words leaves 2 shared of 6 words: 33.33%.
	rec := recordFixture(t, fix, analysis.Options{Threshold: 30, MinWordLength: 3})

	// The loader passed in uses default tokenization; the recorded minimum
	// length must still win.
	res, err := Run(context.Background(), rec, Options{Loader: &loader.Loader{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Drift {
		t.Errorf("unexpected drift: %s", res.DriftSummary)
	}
	if !res.RecheckFlagged {
		t.Error("recorded 30% threshold not applied")
	}
}

func TestRunDetectsVerdictDrift(t *testing.T) {
	rec := recordFixture(t, testdata.CatAndDog(), analysis.DefaultOptions())
	rec.Flagged = true

	res, err := Run(context.Background(), rec, Options{Loader: &loader.Loader{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Drift || !strings.Contains(res.DriftSummary, "verdict changed") {
		t.Errorf("drift = %v, summary = %q", res.Drift, res.DriftSummary)
	}
}

func TestRunDetectsPercentageDrift(t *testing.T) {
	rec := recordFixture(t, testdata.CatAndDog(), analysis.DefaultOptions())
	rec.Percentage = 30

	res, err := Run(context.Background(), rec, Options{Loader: &loader.Loader{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Drift || !strings.Contains(res.DriftSummary, "recorded=30.00") {
		t.Errorf("drift = %v, summary = %q", res.Drift, res.DriftSummary)
	}
}

func TestRunChecksumMismatch(t *testing.T) {
	rec := recordFixture(t, testdata.CatAndDog(), analysis.DefaultOptions())
	if err := os.WriteFile(rec.DocumentB.Ref, []byte("The dog sat on the rug, edited"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), rec, Options{Loader: &loader.Loader{}})
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("err = %v, want checksum mismatch", err)
	}
}

func TestRunMissingRef(t *testing.T) {
	rec := recorder.Record{RunID: "no-refs", Threshold: 50, MinWordLen: 2}
	if _, err := Run(context.Background(), rec, Options{Loader: &loader.Loader{}}); err == nil {
		t.Fatal("expected error for record without refs")
	}
	if _, err := Run(context.Background(), rec, Options{}); err == nil {
		t.Fatal("expected error without loader")
	}
}
