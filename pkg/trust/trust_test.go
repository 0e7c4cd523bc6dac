package trust

import (
	"encoding/json"
	"sync"
	"testing"
)

const testSecret = "test-signing-key-2025"

// --- Chain tests ---

func TestChainAppend(t *testing.T) {
	chain := NewAuditChain(testSecret)
	e1 := chain.Append("run-1", false, []byte(`{"percentage":42.8}`))
	e2 := chain.Append("run-2", true, []byte(`{"percentage":100}`))

	if e1.Sequence != 1 {
		t.Errorf("first entry sequence = %d, want 1", e1.Sequence)
	}
	if e2.Sequence != 2 {
		t.Errorf("second entry sequence = %d, want 2", e2.Sequence)
	}
	if !e2.Flagged || e1.Flagged {
		t.Errorf("flags = %v/%v, want false/true", e1.Flagged, e2.Flagged)
	}
	if chain.Len() != 2 {
		t.Errorf("chain length = %d, want 2", chain.Len())
	}
}

func TestChainVerifyValid(t *testing.T) {
	chain := NewAuditChain(testSecret)
	chain.Append("run-1", false, []byte(`{"test":"data1"}`))
	chain.Append("run-2", true, []byte(`{"test":"data2"}`))
	chain.Append("run-3", false, []byte(`{"test":"data3"}`))

	valid, brokenAt, err := chain.Verify()
	if !valid {
		t.Errorf("valid chain reported as broken at %d: %v", brokenAt, err)
	}
}

func TestChainVerifyTampered(t *testing.T) {
	chain := NewAuditChain(testSecret)
	chain.Append("run-1", false, []byte(`{"test":"data1"}`))
	chain.Append("run-2", true, []byte(`{"test":"data2"}`))
	chain.Append("run-3", false, []byte(`{"test":"data3"}`))

	// Flip the recorded verdict of the second report.
	chain.mu.Lock()
	chain.entries[1].Flagged = false
	chain.mu.Unlock()

	valid, brokenAt, err := chain.Verify()
	if valid {
		t.Error("tampered chain reported as valid")
	}
	if brokenAt != 2 {
		t.Errorf("brokenAt = %d, want 2", brokenAt)
	}
	if err == nil {
		t.Error("expected error for tampered chain")
	}
}

func TestChainPrevHash(t *testing.T) {
	chain := NewAuditChain(testSecret)
	chain.Append("run-1", false, []byte(`{"test":"first"}`))
	chain.Append("run-2", false, []byte(`{"test":"second"}`))

	entries := chain.Entries()
	if entries[0].PrevHash != "" {
		t.Errorf("first entry prev_hash = %q, want empty", entries[0].PrevHash)
	}
	if entries[1].PrevHash == "" {
		t.Error("second entry prev_hash is empty, want hash of first entry")
	}
}

func TestChainSignatureDependsOnSecret(t *testing.T) {
	a := NewAuditChain("key-a").Append("run-1", false, []byte(`{}`))
	b := NewAuditChain("key-b").Append("run-1", false, []byte(`{}`))
	if a.Signature == b.Signature {
		t.Error("different secrets produced the same signature")
	}
	if len(a.Signature) != 64 {
		t.Errorf("signature length = %d, want 64 hex chars", len(a.Signature))
	}
}

func TestChainVerifyReport(t *testing.T) {
	chain := NewAuditChain(testSecret)
	report := []byte(`{"run_id":"run-1","percentage":42.86}`)
	chain.Append("run-1", false, report)

	if !chain.VerifyReport("run-1", report) {
		t.Error("original report did not verify")
	}
	if chain.VerifyReport("run-1", []byte(`{"run_id":"run-1","percentage":12}`)) {
		t.Error("edited report verified")
	}
	if chain.VerifyReport("run-unknown", report) {
		t.Error("unknown run verified")
	}
}

func TestChainEmpty(t *testing.T) {
	chain := NewAuditChain(testSecret)
	valid, _, err := chain.Verify()
	if !valid || err != nil {
		t.Errorf("empty chain: valid=%v err=%v", valid, err)
	}
	if chain.Len() != 0 || len(chain.Entries()) != 0 {
		t.Error("empty chain has entries")
	}
}

func TestChainConcurrent(t *testing.T) {
	chain := NewAuditChain(testSecret)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chain.Append("run", i%2 == 0, []byte(`{"n":1}`))
		}(i)
	}
	wg.Wait()

	if chain.Len() != 50 {
		t.Errorf("chain length = %d, want 50", chain.Len())
	}
	if valid, brokenAt, err := chain.Verify(); !valid {
		t.Errorf("concurrent chain broken at %d: %v", brokenAt, err)
	}
}

// --- Evidence package tests ---

func TestEvidencePackageGeneration(t *testing.T) {
	chain := NewAuditChain(testSecret)
	chain.Append("run-1", true, []byte(`{"a":1}`))
	chain.Append("run-2", false, []byte(`{"a":2}`))
	chain.Append("run-3", true, []byte(`{"a":3}`))

	pkg := GenerateEvidencePackage(chain, "detector-test", testSecret)

	if pkg.DetectorID != "detector-test" {
		t.Errorf("detector_id = %q", pkg.DetectorID)
	}
	if pkg.ChainLength != 3 || !pkg.ChainValid {
		t.Errorf("chain length/valid = %d/%v", pkg.ChainLength, pkg.ChainValid)
	}
	if pkg.Verdicts.Flagged != 2 || pkg.Verdicts.Clear != 1 {
		t.Errorf("verdicts = %+v, want 2 flagged 1 clear", pkg.Verdicts)
	}
	if pkg.Attestation == "" {
		t.Error("attestation missing")
	}
	if pkg.TimeRange.Earliest.After(pkg.TimeRange.Latest) {
		t.Error("time range inverted")
	}
}

func TestEvidencePackageAttestation(t *testing.T) {
	chain := NewAuditChain(testSecret)
	chain.Append("run-1", false, []byte(`{"a":1}`))
	pkg := GenerateEvidencePackage(chain, "detector-test", testSecret)

	if !VerifyAttestation(pkg, testSecret) {
		t.Error("fresh package failed attestation")
	}
	if VerifyAttestation(pkg, "wrong-secret") {
		t.Error("attestation verified with wrong secret")
	}
}

func TestEvidencePackageTamperedAttestation(t *testing.T) {
	chain := NewAuditChain(testSecret)
	chain.Append("run-1", true, []byte(`{"a":1}`))
	pkg := GenerateEvidencePackage(chain, "detector-test", testSecret)

	pkg.Verdicts.Flagged = 0
	pkg.Verdicts.Clear = 1
	if VerifyAttestation(pkg, testSecret) {
		t.Error("tampered package passed attestation")
	}
}

func TestEvidencePackageEmptyChain(t *testing.T) {
	pkg := GenerateEvidencePackage(NewAuditChain(testSecret), "detector-test", testSecret)
	if pkg.ChainLength != 0 || !pkg.ChainValid {
		t.Errorf("empty chain package: %+v", pkg)
	}
	if !pkg.TimeRange.Earliest.IsZero() {
		t.Error("empty chain has a time range")
	}
}

func TestEvidencePackageJSON(t *testing.T) {
	chain := NewAuditChain(testSecret)
	chain.Append("run-1", false, []byte(`{"a":1}`))
	pkg := GenerateEvidencePackage(chain, "detector-test", testSecret)

	data, err := json.Marshal(pkg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded EvidencePackage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !VerifyAttestation(&decoded, testSecret) {
		t.Error("round-tripped package failed attestation")
	}
}
