// Package server exposes the guidance confirmation flow over HTTP: language
// selection, the guidance text, signature capture, and PDF download. All
// flow state travels in query parameters and hidden form fields; the server
// keeps nothing between requests.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	allowRemoteEnvKey = "GSIGN_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
)

// SignaturePipeline is the flow logic behind the HTTP surface.
type SignaturePipeline interface {
	Submit(ctx context.Context, dataURL string) (string, error)
	Generate(ctx context.Context, signatureURL, explainerName string) ([]byte, error)
}

// Server wraps HTTP handlers for the confirmation flow.
type Server struct {
	addr        string
	secretToken string
	pipeline    SignaturePipeline
	logger      *slog.Logger
}

// New creates a new server instance. secretToken is the shared access secret
// gating every page of the flow.
func New(addr, secretToken string, pipeline SignaturePipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:        addr,
		secretToken: strings.TrimSpace(secretToken),
		pipeline:    pipeline,
		logger:      logger,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr validates a listen address. Non-loopback hosts require
// GSIGN_ALLOW_REMOTE=true.
func ListenAddr(addr string) (string, error) {
	if addr == "" {
		return "", fmt.Errorf("listen address is required")
	}
	host, _, err := net.SplitHostPort(addr)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}
	return addr, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
