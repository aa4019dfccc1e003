// Package pipeline orchestrates the signature flow: decode the submitted
// data URL, store the image, and later fetch it back to render and archive
// the confirmation PDF. It holds no server-side state between the two steps;
// everything travels in the signature URL the client carries.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"gsign/internal/blobstore"
	"gsign/internal/document"
	"gsign/internal/imaging"
)

const (
	signatureKeyPrefix = "signature_"
	signatureKeyFormat = "20060102_150405"
)

// Renderer turns a layout input into finished PDF bytes.
type Renderer interface {
	Render(in document.Input) ([]byte, error)
}

// Pipeline wires the blob store and the layout engine together.
type Pipeline struct {
	store             blobstore.BlobStore
	renderer          Renderer
	clauses           []document.Clause
	finalConfirmation string
	now               func() time.Time
	logger            *slog.Logger
}

// Options tunes optional Pipeline collaborators.
type Options struct {
	// Clock overrides the wall clock used for keys and document dates.
	Clock func() time.Time
	// Logger receives pipeline diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// New creates a Pipeline over store and renderer. The clause list and final
// confirmation paragraph are fixed for the Pipeline's lifetime.
func New(store blobstore.BlobStore, renderer Renderer, clauses []document.Clause, finalConfirmation string, opts Options) *Pipeline {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:             store,
		renderer:          renderer,
		clauses:           clauses,
		finalConfirmation: finalConfirmation,
		now:               now,
		logger:            logger,
	}
}

// Submit decodes the signature data URL and uploads the image, returning the
// public URL the stored image is reachable at. An empty payload returns
// ErrNoSignature. Keys carry a second-resolution timestamp; a same-second
// submission overwrites the earlier blob.
func (p *Pipeline) Submit(ctx context.Context, dataURL string) (string, error) {
	if strings.TrimSpace(dataURL) == "" {
		return "", ErrNoSignature
	}

	data, err := imaging.DecodeDataURL(dataURL)
	if err != nil {
		return "", malformedSignature(err)
	}

	key := signatureKeyPrefix + p.now().Format(signatureKeyFormat) + ".png"
	publicURL, err := p.store.Put(ctx, key, "image/png", data)
	if err != nil {
		p.logger.Error("signature upload failed", "key", key, "error", err)
		return "", uploadFailed(err)
	}
	p.logger.Info("signature stored", "key", key)
	return publicURL, nil
}

// Generate fetches the stored signature image, renders the confirmation PDF
// for explainerName, archives the PDF next to the image, and returns the PDF
// bytes. Archival is best effort; its failure is logged and swallowed.
func (p *Pipeline) Generate(ctx context.Context, signatureURL, explainerName string) ([]byte, error) {
	signatureURL = strings.TrimSpace(signatureURL)
	explainerName = strings.TrimSpace(explainerName)
	if signatureURL == "" || explainerName == "" {
		return nil, missingParameters(fmt.Errorf("signature url and explainer name are required"))
	}

	imageData, err := p.store.Get(ctx, signatureURL)
	if err != nil {
		p.logger.Error("signature fetch failed", "url", signatureURL, "error", err)
		return nil, retrievalFailed(err)
	}

	imagePath, cleanup, err := imaging.NormalizeToTemp(imageData)
	if err != nil {
		p.logger.Error("signature image unusable", "url", signatureURL, "error", err)
		return nil, retrievalFailed(err)
	}
	defer cleanup()

	pdfData, err := p.renderer.Render(document.Input{
		ExplainerName:      explainerName,
		Date:               p.now(),
		SignatureImagePath: imagePath,
		Clauses:            p.clauses,
		FinalConfirmation:  p.finalConfirmation,
	})
	if err != nil {
		if errors.Is(err, document.ErrImageEmbed) {
			return nil, imageEmbed(err)
		}
		return nil, fmt.Errorf("render confirmation: %w", err)
	}

	p.archivePDF(ctx, signatureURL, pdfData)
	return pdfData, nil
}

// archivePDF uploads the finished PDF under a key derived from the signature
// URL. The download already holds the bytes, so failures only get logged.
func (p *Pipeline) archivePDF(ctx context.Context, signatureURL string, pdfData []byte) {
	key, err := pdfKeyFromSignatureURL(signatureURL)
	if err != nil {
		p.logger.Warn("pdf archive skipped", "url", signatureURL, "error", err)
		return
	}
	if _, err := p.store.Put(ctx, key, "application/pdf", pdfData); err != nil {
		p.logger.Warn("pdf archive failed", "key", key, "error", err)
		return
	}
	p.logger.Info("pdf archived", "key", key)
}

// pdfKeyFromSignatureURL derives the archive key from the signature URL's
// last path segment, swapping its extension for ".pdf".
func pdfKeyFromSignatureURL(signatureURL string) (string, error) {
	parsed, err := url.Parse(signatureURL)
	if err != nil {
		return "", fmt.Errorf("parse signature url: %w", err)
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("signature url has no file name")
	}
	return strings.TrimSuffix(base, path.Ext(base)) + ".pdf", nil
}
