// Package trust keeps a signed, append-only audit trail of comparison
// reports and exports it as a verifiable evidence package.
package trust

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// ChainEntry is one signed link in the audit chain. Each entry carries the
// hash of the previous entry, so editing or dropping any report breaks
// every later link.
type ChainEntry struct {
	Sequence   int64     `json:"sequence"`    // monotonic counter (1-based)
	RunID      string    `json:"run_id"`      // the report this signs
	ReportHash string    `json:"report_hash"` // sha256 of the report JSON
	Flagged    bool      `json:"flagged"`     // verdict recorded in the report
	PrevHash   string    `json:"prev_hash"`   // hash of the previous ChainEntry (empty for first)
	Signature  string    `json:"signature"`   // HMAC-SHA256(sequence|run_id|report_hash|flagged|prev_hash, secret)
	Timestamp  time.Time `json:"timestamp"`
}

// AuditChain maintains an ordered, signed sequence of report hashes.
// It is safe for concurrent use.
type AuditChain struct {
	mu      sync.Mutex
	secret  []byte
	entries []ChainEntry
	last    string // hash of last entry (for chaining)
	seq     int64
}

// NewAuditChain creates a new audit chain with the given HMAC signing key.
func NewAuditChain(secret string) *AuditChain {
	return &AuditChain{
		secret:  []byte(secret),
		entries: make([]ChainEntry, 0),
	}
}

// Append hashes reportJSON, links it to the previous entry, signs it and
// returns the new entry.
func (ac *AuditChain) Append(runID string, flagged bool, reportJSON []byte) ChainEntry {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.seq++

	entry := ChainEntry{
		Sequence:   ac.seq,
		RunID:      runID,
		ReportHash: sha256Hex(reportJSON),
		Flagged:    flagged,
		PrevHash:   ac.last,
		Timestamp:  time.Now().UTC(),
	}
	entry.Signature = ac.sign(entry)

	entryJSON, _ := json.Marshal(entry)
	ac.last = sha256Hex(entryJSON)

	ac.entries = append(ac.entries, entry)
	return entry
}

// Verify walks the chain and checks every signature and prev_hash link.
// Returns (true, 0, nil) if valid, or (false, brokenAt, err) if tampered.
func (ac *AuditChain) Verify() (valid bool, brokenAt int64, err error) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	prevHash := ""
	for _, entry := range ac.entries {
		if entry.PrevHash != prevHash {
			return false, entry.Sequence, fmt.Errorf(
				"trust: chain broken at sequence %d: prev_hash mismatch", entry.Sequence)
		}

		if !hmac.Equal([]byte(entry.Signature), []byte(ac.sign(entry))) {
			return false, entry.Sequence, fmt.Errorf(
				"trust: chain broken at sequence %d: signature mismatch", entry.Sequence)
		}

		entryJSON, _ := json.Marshal(entry)
		prevHash = sha256Hex(entryJSON)
	}

	return true, 0, nil
}

// VerifyReport reports whether reportJSON is the report signed by the entry
// for runID.
func (ac *AuditChain) VerifyReport(runID string, reportJSON []byte) bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	for _, e := range ac.entries {
		if e.RunID == runID {
			return e.ReportHash == sha256Hex(reportJSON)
		}
	}
	return false
}

// Entries returns a copy of all chain entries.
func (ac *AuditChain) Entries() []ChainEntry {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	out := make([]ChainEntry, len(ac.entries))
	copy(out, ac.entries)
	return out
}

// Len returns the number of entries in the chain.
func (ac *AuditChain) Len() int64 {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.seq
}

func (ac *AuditChain) sign(e ChainEntry) string {
	msg := fmt.Sprintf("%d|%s|%s|%s|%s",
		e.Sequence, e.RunID, e.ReportHash, strconv.FormatBool(e.Flagged), e.PrevHash)
	mac := hmac.New(sha256.New, ac.secret)
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func sha256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
