package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBlobBytes bounds a single downloaded blob. Signature images and
// generated documents are well under this.
const maxBlobBytes = 32 << 20

// Remote stores blobs in a remote key-addressed HTTPS store guarded by a
// bearer credential. Uploads overwrite silently; there is no versioning.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemote creates a Remote rooted at baseURL. A zero timeout leaves each
// call bounded only by the transport and the caller's context.
func NewRemote(baseURL, token string, timeout time.Duration) (*Remote, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("blob store base url is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("blob store token is required")
	}
	return &Remote{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Put uploads data under key and returns the store-assigned public URL.
// One attempt, no retries; a same-key upload overwrites the earlier blob.
func (r *Remote) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if r == nil {
		return "", fmt.Errorf("blob store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("blob key is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.baseURL+"/"+key, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload %s: unexpected status %s", key, resp.Status)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBlobBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("upload %s: decode response: %w", key, err)
	}
	if strings.TrimSpace(payload.URL) == "" {
		return "", fmt.Errorf("upload %s: response did not contain a url", key)
	}
	return payload.URL, nil
}

// Get downloads the blob at publicURL.
func (r *Remote) Get(ctx context.Context, publicURL string) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	publicURL = strings.TrimSpace(publicURL)
	u, err := url.Parse(publicURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid blob url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("blob url must use http or https")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, publicURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch blob: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch blob: %w", err)
	}
	if len(data) > maxBlobBytes {
		return nil, fmt.Errorf("fetch blob: larger than %d bytes", maxBlobBytes)
	}
	return data, nil
}
