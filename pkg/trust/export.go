package trust

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// EvidencePackage bundles the audit chain, its verification result and a
// verdict tally into one signed JSON document.
type EvidencePackage struct {
	ExportedAt    time.Time    `json:"exported_at"`
	DetectorID    string       `json:"detector_id"`
	ChainLength   int64        `json:"chain_length"`
	ChainValid    bool         `json:"chain_valid"`
	ChainBrokenAt int64        `json:"chain_broken_at,omitempty"`
	AuditEntries  []ChainEntry `json:"audit_entries"`
	Verdicts      Verdicts     `json:"verdicts"`
	TimeRange     TimeRange    `json:"time_range"`
	Attestation   string       `json:"attestation"` // HMAC of package contents
}

// Verdicts counts the comparisons on each side of the threshold.
type Verdicts struct {
	Flagged int `json:"flagged"`
	Clear   int `json:"clear"`
}

// TimeRange captures the earliest and latest timestamps in the audit chain.
type TimeRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// GenerateEvidencePackage exports the chain and signs the export with
// HMAC-SHA256 so it can be checked independently of the running detector.
func GenerateEvidencePackage(chain *AuditChain, detectorID, secret string) *EvidencePackage {
	entries := chain.Entries()
	valid, brokenAt, _ := chain.Verify()

	tr := TimeRange{}
	var v Verdicts
	for i, e := range entries {
		if i == 0 {
			tr.Earliest = e.Timestamp
		}
		tr.Latest = e.Timestamp
		if e.Flagged {
			v.Flagged++
		} else {
			v.Clear++
		}
	}

	pkg := &EvidencePackage{
		ExportedAt:    time.Now().UTC(),
		DetectorID:    detectorID,
		ChainLength:   chain.Len(),
		ChainValid:    valid,
		ChainBrokenAt: brokenAt,
		AuditEntries:  entries,
		Verdicts:      v,
		TimeRange:     tr,
	}
	pkg.Attestation = signPackage(pkg, secret)
	return pkg
}

// VerifyAttestation checks that an evidence package's attestation matches
// its contents.
func VerifyAttestation(pkg *EvidencePackage, secret string) bool {
	saved := pkg.Attestation
	pkg.Attestation = ""
	expected := signPackage(pkg, secret)
	pkg.Attestation = saved
	return hmac.Equal([]byte(saved), []byte(expected))
}

// signPackage computes the HMAC-SHA256 of the package with an empty
// attestation field.
func signPackage(pkg *EvidencePackage, secret string) string {
	data, _ := json.Marshal(pkg)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}
