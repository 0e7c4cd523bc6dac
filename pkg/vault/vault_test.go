package vault

import (
	"errors"
	"testing"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		key    string
		ok     bool
	}{
		{"vault://essays/run-1/a.txt", "essays", "run-1/a.txt", true},
		{"vault://essays/b.txt", "essays", "b.txt", true},
		{"vault://mybucket/deep/nested/key.html", "mybucket", "deep/nested/key.html", true},
		{"vault://essays/", "", "", false},
		{"vault://essays", "", "", false},
		{"essays/a.txt", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		bucket, key, ok := ParseURI(tt.uri)
		if bucket != tt.bucket || key != tt.key || ok != tt.ok {
			t.Errorf("ParseURI(%q) = %q, %q, %v; want %q, %q, %v",
				tt.uri, bucket, key, ok, tt.bucket, tt.key, tt.ok)
		}
	}
}

func TestURIRoundTrip(t *testing.T) {
	uri := URI("essays", "run-7/document_a.txt")
	if uri != "vault://essays/run-7/document_a.txt" {
		t.Fatalf("URI = %q", uri)
	}
	if !IsURI(uri) {
		t.Fatal("IsURI = false")
	}
	_, key, ok := ParseURI(uri)
	if !ok || key != "run-7/document_a.txt" {
		t.Fatalf("ParseURI key = %q, ok = %v", key, ok)
	}
}

func TestKeyFor(t *testing.T) {
	key, err := KeyFor("vault://essays/run-1/document_a", "essays")
	if err != nil || key != "run-1/document_a" {
		t.Fatalf("KeyFor = %q, %v", key, err)
	}

	if _, err := KeyFor("vault://archive/run-1/document_a", "essays"); !errors.Is(err, ErrForeignBucket) {
		t.Errorf("foreign bucket err = %v, want ErrForeignBucket", err)
	}
	if _, err := KeyFor("vault://essays", "essays"); err == nil || errors.Is(err, ErrForeignBucket) {
		t.Errorf("malformed ref err = %v", err)
	}
}
