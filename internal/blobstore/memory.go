package blobstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Keys sit in the URL path so callers that parse blob URLs see the key as
// the final path segment.
const memoryURLPrefix = "memory:///"

type memoryBlob struct {
	contentType string
	data        []byte
}

// Memory is an in-memory BlobStore used in tests and local development.
type Memory struct {
	mu    sync.Mutex
	blobs map[string]memoryBlob
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: map[string]memoryBlob{}}
}

// Put stores data under key and returns a memory:// URL for it.
func (m *Memory) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("blob key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = memoryBlob{contentType: contentType, data: append([]byte(nil), data...)}
	return memoryURLPrefix + key, nil
}

// Get resolves a memory:// URL produced by Put.
func (m *Memory) Get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, ok := strings.CutPrefix(strings.TrimSpace(url), memoryURLPrefix)
	if !ok {
		return nil, fmt.Errorf("invalid blob url")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	return append([]byte(nil), blob.data...), nil
}

// Bytes returns the stored content for key, if any.
func (m *Memory) Bytes(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), blob.data...), true
}

// ContentType returns the stored content type for key, if any.
func (m *Memory) ContentType(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return "", false
	}
	return blob.contentType, true
}

// Len returns the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// Keys returns the stored keys in no particular order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.blobs))
	for key := range m.blobs {
		out = append(out, key)
	}
	return out
}
