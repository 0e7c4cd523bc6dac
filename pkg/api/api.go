// Package api serves the detector over HTTP: compare two documents, look
// up a word in both, and export the report audit trail.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/alert"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/loader"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/query"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/recorder"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/trust"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/vault"
)

var tracer = otel.Tracer("plagiarism-detector")

// maxBodyBytes caps request bodies independently of the document limit so
// two maximum-size documents plus JSON overhead still fit.
const maxBodyBytes = 64 << 20

// Storer persists submitted documents. *vault.Client implements it.
type Storer interface {
	Store(ctx context.Context, key, contentType string, data []byte) (vault.Ref, error)
}

// Config holds API dependencies. A nil Loader is replaced by one built
// from Options.
type Config struct {
	Options     analysis.Options
	Loader      *loader.Loader
	Vault       Storer            // stores submitted documents for later rechecks
	Recorder    *recorder.Writer  // report file writer
	Chain       *trust.AuditChain // report audit chain
	Alerts      *alert.Notifier   // webhook for flagged comparisons
	AuditSecret string            // signs evidence packages
	DetectorID  string
	Limiter     *rate.Limiter
}

// Handler returns an http.Handler serving the detector API.
func Handler(cfg Config) http.Handler {
	if cfg.Loader == nil {
		cfg.Loader = &loader.Loader{Tokenizer: cfg.Options.Tokenizer()}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/compare", func(w http.ResponseWriter, r *http.Request) {
		handleCompare(w, r, cfg)
	})

	mux.HandleFunc("POST /v1/lookup", func(w http.ResponseWriter, r *http.Request) {
		handleLookup(w, r, cfg)
	})

	mux.HandleFunc("GET /v1/audit", func(w http.ResponseWriter, r *http.Request) {
		handleAudit(w, r, cfg)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Limiter == nil {
		return mux
	}
	return limit(mux, cfg.Limiter)
}

// DocumentInput is one side of a request: inline text, raw bytes
// (base64 in JSON) or a vault:// reference.
type DocumentInput struct {
	Name    string  `json:"name,omitempty"`
	Text    *string `json:"text,omitempty"`
	Content []byte  `json:"content,omitempty"`
	Ref     string  `json:"ref,omitempty"`
}

// CompareRequest is the body of POST /v1/compare.
type CompareRequest struct {
	A         DocumentInput `json:"a"`
	B         DocumentInput `json:"b"`
	Threshold *float64      `json:"threshold,omitempty"`
}

// CompareResponse is the body returned by POST /v1/compare.
type CompareResponse struct {
	RunID string `json:"run_id"`
	analysis.Report
}

// LookupRequest is the body of POST /v1/lookup. Word is kept raw so a
// non-string value can be rejected as an invalid query.
type LookupRequest struct {
	A    DocumentInput   `json:"a"`
	B    DocumentInput   `json:"b"`
	Word json.RawMessage `json:"word"`
}

func handleCompare(w http.ResponseWriter, r *http.Request, cfg Config) {
	start := time.Now()
	runID := uuid.New().String()

	ctx, span := tracer.Start(r.Context(), "plagiarism.compare",
		trace.WithAttributes(attribute.String("plagiarism.run.id", runID)))
	defer span.End()

	var req CompareRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, span, http.StatusBadRequest, err)
		return
	}

	opts := cfg.Options
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}

	a, refA, err := resolve(ctx, cfg, runID, "document_a", req.A)
	if err != nil {
		writeError(w, span, statusFor(err), err)
		return
	}
	b, refB, err := resolve(ctx, cfg, runID, "document_b", req.B)
	if err != nil {
		writeError(w, span, statusFor(err), err)
		return
	}

	s, err := analysis.NewSession(a, b, opts)
	if err != nil {
		writeError(w, span, http.StatusBadRequest, err)
		return
	}
	rep := s.Report()

	span.SetAttributes(
		attribute.Int("plagiarism.vocabulary.intersection", rep.Intersection),
		attribute.Int("plagiarism.vocabulary.union", rep.Union),
		attribute.Float64("plagiarism.percentage", rep.Percentage),
		attribute.Bool("plagiarism.flagged", rep.Flagged),
	)

	duration := time.Since(start)
	record(cfg, runID, span, rep, opts, refA, refB, duration)

	w.Header().Set("x-run-id", runID)
	writeJSON(w, http.StatusOK, CompareResponse{RunID: runID, Report: rep})

	log.Printf("[%s] compare a=%s b=%s percentage=%.2f flagged=%v duration=%dms",
		runID, a.Name, b.Name, rep.Percentage, rep.Flagged, duration.Milliseconds())
}

func handleLookup(w http.ResponseWriter, r *http.Request, cfg Config) {
	ctx, span := tracer.Start(r.Context(), "plagiarism.lookup")
	defer span.End()

	var req LookupRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, span, http.StatusBadRequest, err)
		return
	}

	var word any
	if len(req.Word) > 0 {
		if err := json.Unmarshal(req.Word, &word); err != nil {
			writeError(w, span, http.StatusBadRequest, err)
			return
		}
	}

	a, _, err := resolve(ctx, cfg, "", "document_a", req.A)
	if err != nil {
		writeError(w, span, statusFor(err), err)
		return
	}
	b, _, err := resolve(ctx, cfg, "", "document_b", req.B)
	if err != nil {
		writeError(w, span, statusFor(err), err)
		return
	}

	res, err := query.LookupValue(word, a.Freq, b.Freq)
	if err != nil {
		writeError(w, span, statusFor(err), err)
		return
	}
	span.SetAttributes(
		attribute.String("plagiarism.query.word", res.Word),
		attribute.Bool("plagiarism.query.found", res.Found),
	)
	writeJSON(w, http.StatusOK, res)
}

func handleAudit(w http.ResponseWriter, _ *http.Request, cfg Config) {
	if cfg.Chain == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "audit chain disabled"})
		return
	}
	writeJSON(w, http.StatusOK, trust.GenerateEvidencePackage(cfg.Chain, cfg.DetectorID, cfg.AuditSecret))
}

// resolve turns a request document into an indexed document and the ref it
// can be fetched from later. Inline documents are stored in the vault when
// one is configured and a run id is given.
func resolve(ctx context.Context, cfg Config, runID, side string, in DocumentInput) (*analysis.Document, string, error) {
	name := in.Name
	if name == "" {
		name = side
	}

	sources := 0
	for _, set := range []bool{in.Ref != "", in.Content != nil, in.Text != nil} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return nil, "", fmt.Errorf("%s: %w: give only one of text, content or ref", side, errBadInput)
	}

	var raw []byte
	switch {
	case in.Ref != "":
		if !vault.IsURI(in.Ref) {
			return nil, "", fmt.Errorf("%s: %w: only vault:// refs are accepted", side, errBadInput)
		}
		doc, err := cfg.Loader.Load(ctx, in.Ref)
		if err != nil {
			return nil, "", err
		}
		return doc, in.Ref, nil
	case in.Content != nil:
		raw = in.Content
	case in.Text != nil:
		raw = []byte(*in.Text)
	default:
		return nil, "", fmt.Errorf("%s: %w: one of text, content or ref is required", side, errBadInput)
	}

	doc, err := cfg.Loader.Parse(name, raw)
	if err != nil {
		return nil, "", err
	}

	ref := ""
	if cfg.Vault != nil && runID != "" {
		vr, err := cfg.Vault.Store(ctx, runID+"/"+side, "text/plain; charset=utf-8", raw)
		if err != nil {
			log.Printf("[%s] vault %s: %v", runID, side, err)
		} else {
			ref = vr.URI
		}
	}
	return doc, ref, nil
}

func record(cfg Config, runID string, span trace.Span, rep analysis.Report, opts analysis.Options,
	refA, refB string, duration time.Duration) {

	if cfg.Recorder == nil && cfg.Chain == nil && cfg.Alerts == nil {
		return
	}

	rec := recorder.FromReport(runID, rep, opts, refA, refB)
	rec.DurationMS = duration.Milliseconds()
	if sc := span.SpanContext(); sc.HasTraceID() {
		rec.TraceID = sc.TraceID().String()
	}

	var data []byte
	var err error
	if cfg.Recorder != nil {
		data, err = cfg.Recorder.Write(rec)
	} else {
		data, err = recorder.Marshal(rec)
	}
	if err != nil {
		log.Printf("[%s] write report: %v", runID, err)
		return
	}

	if cfg.Chain != nil {
		entry := cfg.Chain.Append(runID, rep.Flagged, data)
		span.SetAttributes(attribute.Int64("plagiarism.audit.sequence", entry.Sequence))
	}

	cfg.Alerts.Flagged(rec, nil)
}

var errBadInput = errors.New("bad input")

func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidQuery), errors.Is(err, errBadInput), errors.Is(err, loader.ErrNoVault),
		errors.Is(err, vault.ErrForeignBucket):
		return http.StatusBadRequest
	case errors.Is(err, loader.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loader.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, span trace.Span, status int, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// limit rejects requests once lim is exhausted.
func limit(next http.Handler, lim *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
