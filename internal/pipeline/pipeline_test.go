package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gsign/internal/blobstore"
	"gsign/internal/document"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
}

func signatureDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(2, 2, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// stubRenderer records its last input and returns canned PDF bytes.
type stubRenderer struct {
	lastInput document.Input
	err       error
}

func (r *stubRenderer) Render(in document.Input) ([]byte, error) {
	r.lastInput = in
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.7 stub"), nil
}

// countingStore wraps a BlobStore and can fail puts selectively.
type countingStore struct {
	inner      blobstore.BlobStore
	puts, gets int
	failPut    func(key string) bool
}

func (s *countingStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	s.puts++
	if s.failPut != nil && s.failPut(key) {
		return "", fmt.Errorf("induced put failure for %s", key)
	}
	return s.inner.Put(ctx, key, contentType, data)
}

func (s *countingStore) Get(ctx context.Context, url string) ([]byte, error) {
	s.gets++
	return s.inner.Get(ctx, url)
}

func testClauses() []document.Clause {
	return []document.Clause{{Num: "１", Text: "確認事項"}}
}

func newTestPipeline(store blobstore.BlobStore, renderer Renderer) *Pipeline {
	return New(store, renderer, testClauses(), "最終確認の段落", Options{
		Clock:  fixedClock(),
		Logger: quietLogger(),
	})
}

func TestSubmitEmptyPayload(t *testing.T) {
	store := &countingStore{inner: blobstore.NewMemory()}
	p := newTestPipeline(store, &stubRenderer{})

	for _, raw := range []string{"", "   "} {
		if _, err := p.Submit(context.Background(), raw); !errors.Is(err, ErrNoSignature) {
			t.Fatalf("expected ErrNoSignature for %q, got %v", raw, err)
		}
	}
	if store.puts != 0 {
		t.Fatalf("empty submissions must not touch the store, got %d puts", store.puts)
	}
}

func TestSubmitMalformedPayload(t *testing.T) {
	store := &countingStore{inner: blobstore.NewMemory()}
	p := newTestPipeline(store, &stubRenderer{})

	_, err := p.Submit(context.Background(), "data:image/png;base64,@@not-base64@@")
	if KindOf(err) != KindMalformedSignature {
		t.Fatalf("expected KindMalformedSignature, got %v", err)
	}
	if store.puts != 0 {
		t.Fatal("malformed submissions must not touch the store")
	}
}

func TestSubmitStoresTimestampedKey(t *testing.T) {
	mem := blobstore.NewMemory()
	p := newTestPipeline(mem, &stubRenderer{})

	url, err := p.Submit(context.Background(), signatureDataURL(t))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	const wantKey = "signature_20250314_092653.png"
	if !strings.HasSuffix(url, wantKey) {
		t.Fatalf("url %q does not end in %q", url, wantKey)
	}
	if ct, ok := mem.ContentType(wantKey); !ok || ct != "image/png" {
		t.Fatalf("stored blob has content type %q, ok=%v", ct, ok)
	}
}

func TestSubmitUploadFailure(t *testing.T) {
	store := &countingStore{
		inner:   blobstore.NewMemory(),
		failPut: func(string) bool { return true },
	}
	p := newTestPipeline(store, &stubRenderer{})

	_, err := p.Submit(context.Background(), signatureDataURL(t))
	if KindOf(err) != KindUploadFailed {
		t.Fatalf("expected KindUploadFailed, got %v", err)
	}
}

func TestGenerateMissingParameters(t *testing.T) {
	store := &countingStore{inner: blobstore.NewMemory()}
	p := newTestPipeline(store, &stubRenderer{})

	cases := []struct{ url, name string }{
		{"", "田中 太郎"},
		{"memory:///signature_x.png", ""},
		{"   ", "   "},
	}
	for _, tc := range cases {
		_, err := p.Generate(context.Background(), tc.url, tc.name)
		if KindOf(err) != KindMissingParameters {
			t.Fatalf("url=%q name=%q: expected KindMissingParameters, got %v", tc.url, tc.name, err)
		}
	}
	if store.gets != 0 || store.puts != 0 {
		t.Fatal("parameter validation must run before any store call")
	}
}

func TestGenerateRetrievalFailure(t *testing.T) {
	p := newTestPipeline(blobstore.NewMemory(), &stubRenderer{})

	_, err := p.Generate(context.Background(), "memory:///nonexistent.png", "田中 太郎")
	if KindOf(err) != KindRetrievalFailed {
		t.Fatalf("expected KindRetrievalFailed, got %v", err)
	}
}

func TestGenerateUndecodableImage(t *testing.T) {
	mem := blobstore.NewMemory()
	url, err := mem.Put(context.Background(), "signature_bad.png", "image/png", []byte("not an image"))
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	p := newTestPipeline(mem, &stubRenderer{})

	_, err = p.Generate(context.Background(), url, "田中 太郎")
	if KindOf(err) != KindRetrievalFailed {
		t.Fatalf("expected KindRetrievalFailed, got %v", err)
	}
}

func TestGenerateRendersAndArchives(t *testing.T) {
	mem := blobstore.NewMemory()
	p := newTestPipeline(mem, &stubRenderer{})

	sigURL, err := p.Submit(context.Background(), signatureDataURL(t))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	renderer := &stubRenderer{}
	p = newTestPipeline(mem, renderer)
	data, err := p.Generate(context.Background(), sigURL, "田中 太郎")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("returned bytes are not the rendered pdf")
	}
	if renderer.lastInput.ExplainerName != "田中 太郎" {
		t.Fatalf("renderer saw explainer %q", renderer.lastInput.ExplainerName)
	}
	if len(renderer.lastInput.Clauses) != 1 {
		t.Fatalf("renderer saw %d clauses", len(renderer.lastInput.Clauses))
	}

	const archiveKey = "signature_20250314_092653.pdf"
	if ct, ok := mem.ContentType(archiveKey); !ok || ct != "application/pdf" {
		t.Fatalf("archived pdf content type %q, ok=%v", ct, ok)
	}
	archived, _ := mem.Bytes(archiveKey)
	if !bytes.Equal(archived, data) {
		t.Fatal("archived pdf differs from the returned bytes")
	}
}

func TestGenerateArchiveFailureIsSwallowed(t *testing.T) {
	mem := blobstore.NewMemory()
	p := newTestPipeline(mem, &stubRenderer{})
	sigURL, err := p.Submit(context.Background(), signatureDataURL(t))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	store := &countingStore{
		inner:   mem,
		failPut: func(key string) bool { return strings.HasSuffix(key, ".pdf") },
	}
	p = newTestPipeline(store, &stubRenderer{})
	data, err := p.Generate(context.Background(), sigURL, "田中 太郎")
	if err != nil {
		t.Fatalf("Generate must succeed when only archival fails: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("returned bytes are not the rendered pdf")
	}
}

func TestGenerateImageEmbedFailure(t *testing.T) {
	mem := blobstore.NewMemory()
	p := newTestPipeline(mem, &stubRenderer{})
	sigURL, err := p.Submit(context.Background(), signatureDataURL(t))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	p = newTestPipeline(mem, &stubRenderer{err: fmt.Errorf("place image: %w", document.ErrImageEmbed)})
	_, err = p.Generate(context.Background(), sigURL, "田中 太郎")
	if KindOf(err) != KindImageEmbed {
		t.Fatalf("expected KindImageEmbed, got %v", err)
	}
}

func TestPDFKeyFromSignatureURL(t *testing.T) {
	key, err := pdfKeyFromSignatureURL("https://example.com/store/signature_20250314_092653.png?x=1")
	if err != nil {
		t.Fatalf("pdfKeyFromSignatureURL failed: %v", err)
	}
	if key != "signature_20250314_092653.pdf" {
		t.Fatalf("unexpected key %q", key)
	}

	if _, err := pdfKeyFromSignatureURL("https://example.com/"); err == nil {
		t.Fatal("expected an error for a url without a file name")
	}
}
