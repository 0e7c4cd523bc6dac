// Package vault provides S3-compatible blob storage for submitted documents
// and comparison reports. Reports reference stored documents by URI so a
// comparison can be re-run later against the exact bytes it scored.
package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
)

// Scheme prefixes every vault URI.
const Scheme = "vault://"

var (
	// ErrNotFound is returned when no object is stored under a key.
	ErrNotFound = errors.New("vault: object not found")
	// ErrForeignBucket is returned for refs naming a bucket other than the
	// one the client serves.
	ErrForeignBucket = errors.New("vault: ref names another bucket")
)

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client wraps an S3-compatible object store.
type Client struct {
	mc     *minio.Client
	bucket string
}

// Ref is a vault reference returned after storing content.
type Ref struct {
	URI      string // vault://bucket/key
	Checksum string // sha256:hex
	Size     int64
}

// New connects to the store and creates the document bucket on first use.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("vault: no bucket configured")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("vault: connect %s: %w", cfg.Endpoint, err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("vault: bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("vault: create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &Client{mc: mc, bucket: cfg.Bucket}, nil
}

// Bucket returns the bucket the client writes to.
func (c *Client) Bucket() string { return c.bucket }

// Store writes data under key and returns a reference with checksum.
func (c *Client) Store(ctx context.Context, key, contentType string, data []byte) (Ref, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Ref{}, fmt.Errorf("vault: store %s: %w", key, err)
	}

	return Ref{
		URI:      URI(c.bucket, key),
		Checksum: analysis.Checksum(data),
		Size:     info.Size,
	}, nil
}

// Fetch returns the document stored under key in the client's bucket.
// A missing object yields ErrNotFound.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("vault: fetch %s: %w", URI(c.bucket, key), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, URI(c.bucket, key))
		}
		return nil, fmt.Errorf("vault: read %s: %w", URI(c.bucket, key), err)
	}
	return data, nil
}

// URI builds a vault://bucket/key reference.
func URI(bucket, key string) string {
	return Scheme + bucket + "/" + key
}

// IsURI reports whether s is a vault reference.
func IsURI(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// ParseURI splits "vault://bucket/key" into bucket and key.
func ParseURI(uri string) (bucket, key string, ok bool) {
	if !IsURI(uri) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, Scheme)
	idx := strings.Index(rest, "/")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}

// KeyFor returns the object key of ref after checking that ref names
// bucket. Documents are only ever read from the bucket they were stored in.
func KeyFor(ref, bucket string) (string, error) {
	b, key, ok := ParseURI(ref)
	if !ok {
		return "", fmt.Errorf("vault: malformed ref %q", ref)
	}
	if b != bucket {
		return "", fmt.Errorf("%w: %q is in %q, serving %q", ErrForeignBucket, key, b, bucket)
	}
	return key, nil
}
