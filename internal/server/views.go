package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"gsign/internal/content"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type languageSelectData struct {
	Token     string
	Languages []languageChoice
}

type guidanceData struct {
	Token       string
	Lang        string
	Translation content.Translation
	Japanese    content.JapaneseText
}

type downloadData struct {
	SignatureURL string
	Explainers   []string
}

// render executes the named template into a buffer first so a mid-render
// failure never leaks a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.log().Error("render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
