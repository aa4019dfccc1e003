package blobstore

import (
	"context"
)

// BlobStore is the byte-storage abstraction used by the signature pipeline.
// Keys are caller-chosen; Put returns the public URL the stored blob is
// reachable at, and Get resolves such a URL back to the stored bytes.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Get(ctx context.Context, url string) ([]byte, error)
}
