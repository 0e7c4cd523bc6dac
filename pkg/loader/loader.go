// Package loader reads raw documents from local files or the vault and
// turns them into indexed analysis documents.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/tokenize"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/vault"
)

var tracer = otel.Tracer("plagiarism-detector/loader")

var (
	// ErrNotFound is returned when a local document path does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrTooLarge is returned when a document exceeds the size cap.
	ErrTooLarge = errors.New("document too large")
	// ErrNoVault is returned for vault:// refs when no vault is configured.
	ErrNoVault = errors.New("vault storage not configured")
)

// Format selects how raw bytes are interpreted.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// Fetcher retrieves stored objects by key from a single bucket.
// *vault.Client implements it.
type Fetcher interface {
	Bucket() string
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Loader reads and indexes documents.
type Loader struct {
	Vault     Fetcher // optional; required for vault:// refs
	Format    Format
	MaxBytes  int64 // 0 means unlimited
	Tokenizer tokenize.Tokenizer
}

// Load reads ref (a local path or vault://bucket/key) and indexes it.
func (l *Loader) Load(ctx context.Context, ref string) (*analysis.Document, error) {
	ctx, span := tracer.Start(ctx, "document.load",
		trace.WithAttributes(attribute.String("document.ref", ref)))
	defer span.End()

	raw, err := l.read(ctx, ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("document.bytes", len(raw)))

	doc, err := l.Parse(ref, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("document.words.total", doc.Freq.Total()),
		attribute.Int("document.words.unique", doc.Freq.Unique()),
	)
	return doc, nil
}

// Parse decodes raw bytes, reduces HTML to text when the format calls for
// it, and indexes the result. The checksum always covers the raw bytes.
func (l *Loader) Parse(name string, raw []byte) (*analysis.Document, error) {
	if l.MaxBytes > 0 && int64(len(raw)) > l.MaxBytes {
		return nil, fmt.Errorf("loader: %s: %w (%d > %d bytes)", name, ErrTooLarge, len(raw), l.MaxBytes)
	}

	text, err := analysis.Decode(name, raw)
	if err != nil {
		return nil, err
	}

	if l.isHTML(name, raw) {
		text, err = ExtractText(text)
		if err != nil {
			return nil, fmt.Errorf("loader: parse html %s: %w", name, err)
		}
	}

	return analysis.FromText(name, text, analysis.Checksum(raw), l.Tokenizer), nil
}

func (l *Loader) isHTML(name string, raw []byte) bool {
	switch l.Format {
	case FormatHTML:
		return true
	case FormatText:
		return false
	default:
		return looksLikeHTML(name, raw)
	}
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	if vault.IsURI(ref) {
		if l.Vault == nil {
			return nil, fmt.Errorf("loader: %s: %w", ref, ErrNoVault)
		}
		key, err := vault.KeyFor(ref, l.Vault.Bucket())
		if err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
		data, err := l.Vault.Fetch(ctx, key)
		if errors.Is(err, vault.ErrNotFound) {
			return nil, fmt.Errorf("loader: %s: %w", ref, ErrNotFound)
		}
		return data, err
	}
	return l.readFile(ref)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loader: file '%s': %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if l.MaxBytes > 0 {
		// One extra byte lets Parse detect the overflow.
		r = io.LimitReader(f, l.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return data, nil
}
