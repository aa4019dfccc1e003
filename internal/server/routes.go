package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Confirmation flow, in page order.
	mux.HandleFunc("GET /{$}", s.handleLanguageSelect)
	mux.HandleFunc("POST /guidance", s.handleGuidance)
	mux.HandleFunc("POST /sign", s.handleSign)
	mux.HandleFunc("GET /download", s.handleDownload)
	mux.HandleFunc("POST /generate-pdf", s.handleGeneratePDF)

	return s.withRequestLogging(mux)
}
