// Package analysis holds the two-document comparison session: documents
// are decoded and indexed once, then every query runs against those
// read-only results.
package analysis

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/frequency"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/tokenize"
)

// ErrDecode matches every DecodeError.
var ErrDecode = errors.New("document is not valid UTF-8 text")

// DecodeError reports raw document bytes that could not be decoded as text.
type DecodeError struct {
	Name   string
	Offset int // byte offset of the first invalid sequence
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("analysis: decode %s: invalid UTF-8 at byte %d", e.Name, e.Offset)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Document is one loaded text together with its derived tokens and counts.
type Document struct {
	Name     string
	Text     string
	Checksum string // sha256:hex of the raw bytes
	Tokens   []string
	Freq     frequency.Map
}

// Decode returns raw as text, or a *DecodeError if it is not valid UTF-8.
func Decode(name string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", &DecodeError{Name: name, Offset: invalidOffset(raw)}
	}
	return string(raw), nil
}

// NewDocument decodes raw as UTF-8 and indexes it with tok.
func NewDocument(name string, raw []byte, tok tokenize.Tokenizer) (*Document, error) {
	text, err := Decode(name, raw)
	if err != nil {
		return nil, err
	}
	return FromText(name, text, Checksum(raw), tok), nil
}

// FromText indexes already-decoded text.
func FromText(name, text, checksum string, tok tokenize.Tokenizer) *Document {
	tokens := tok.Tokenize(text)
	return &Document{
		Name:     name,
		Text:     text,
		Checksum: checksum,
		Tokens:   tokens,
		Freq:     frequency.Build(tokens),
	}
}

// Summary is the per-document part of a report.
type Summary struct {
	Name        string `json:"name"`
	Checksum    string `json:"checksum,omitempty"`
	TotalWords  int    `json:"total_words"`
	UniqueWords int    `json:"unique_words"`
}

// Summary returns the word totals for d.
func (d *Document) Summary() Summary {
	return Summary{
		Name:        d.Name,
		Checksum:    d.Checksum,
		TotalWords:  d.Freq.Total(),
		UniqueWords: d.Freq.Unique(),
	}
}

// Checksum returns the sha256 checksum of data as "sha256:<hex>".
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", h)
}

func invalidOffset(raw []byte) int {
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(raw)
}
