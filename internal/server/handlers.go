package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"gsign/internal/content"
	"gsign/internal/pipeline"
)

// User-facing messages. The flow is presented to signers in Japanese
// alongside their chosen language, so errors stay in Japanese.
const (
	msgForbidden         = "アクセス権がありません。"
	msgForbiddenSign     = "不正なアクセスです。"
	msgLanguageRequired  = "言語が選択されていません。"
	msgMissingParameters = "必要な情報が不足しています。"
	msgUploadFailed      = "署名画像のアップロードに失敗しました。"
	msgRetrievalFailed   = "署名画像の取得に失敗しました。"
	msgGenerateFailed    = "確認書の作成に失敗しました。"
)

const downloadFilename = "guidance_confirmation.pdf"

// authorized reports whether the request carries the shared access secret.
// An unconfigured secret matches nothing. The attempted value is never
// logged.
func (s *Server) authorized(r *http.Request) bool {
	if s.secretToken == "" {
		return false
	}
	return strings.TrimSpace(r.FormValue("token")) == s.secretToken
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleLanguageSelect(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.writeError(w, r, http.StatusForbidden, msgForbidden)
		return
	}
	s.render(w, r, "language_select.html", languageSelectData{
		Token:     r.FormValue("token"),
		Languages: languageChoices(),
	})
}

func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.writeError(w, r, http.StatusForbidden, msgForbidden)
		return
	}

	lang := strings.TrimSpace(r.FormValue("lang"))
	translation, ok := content.TranslationFor(lang)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, msgLanguageRequired)
		return
	}

	s.render(w, r, "guidance.html", guidanceData{
		Token:       r.FormValue("token"),
		Lang:        lang,
		Translation: translation,
		Japanese:    content.Japanese(),
	})
}

func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.writeError(w, r, http.StatusForbidden, msgForbiddenSign)
		return
	}

	token := strings.TrimSpace(r.FormValue("token"))
	lang := strings.TrimSpace(r.FormValue("lang"))

	publicURL, err := s.pipeline.Submit(r.Context(), r.FormValue("signature_data"))
	if errors.Is(err, pipeline.ErrNoSignature) {
		http.Redirect(w, r, "/?token="+url.QueryEscape(token), http.StatusSeeOther)
		return
	}
	if err != nil {
		// Malformed payloads and store failures both present as an
		// upload failure to the signer.
		s.writeError(w, r, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	next := "/download?signature_url=" + url.QueryEscape(publicURL) + "&lang=" + url.QueryEscape(lang)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	signatureURL := strings.TrimSpace(r.URL.Query().Get("signature_url"))
	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if signatureURL == "" || lang == "" {
		s.writeError(w, r, http.StatusBadRequest, msgMissingParameters)
		return
	}

	s.render(w, r, "download.html", downloadData{
		SignatureURL: signatureURL,
		Explainers:   content.ExplainersFor(lang),
	})
}

func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	signatureURL := r.FormValue("signature_url")
	explainerName := r.FormValue("explainer_name")

	data, err := s.pipeline.Generate(r.Context(), signatureURL, explainerName)
	if err != nil {
		switch pipeline.KindOf(err) {
		case pipeline.KindMissingParameters:
			s.writeError(w, r, http.StatusBadRequest, msgMissingParameters)
		case pipeline.KindRetrievalFailed:
			s.writeError(w, r, http.StatusNotFound, msgRetrievalFailed)
		default:
			s.writeError(w, r, http.StatusInternalServerError, msgGenerateFailed)
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadFilename+`"`)
	_, _ = w.Write(data)
}

// writeError sends a plain-text message and logs the failure class. Client
// mistakes stay quiet; server-side failures are loud.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	fields := []any{"method", r.Method, "path", r.URL.Path, "status", status}
	switch {
	case status >= 500:
		s.log().Error("request failed", fields...)
	case status == http.StatusForbidden:
		s.log().Warn("request rejected", fields...)
	default:
		s.log().Debug("request rejected", fields...)
	}
	http.Error(w, msg, status)
}

type languageChoice struct {
	Code string
	Name string
}

var languageNames = map[string]string{
	"en": "English",
	"id": "Bahasa Indonesia",
	"my": "မြန်မာဘာသာ",
	"vi": "Tiếng Việt",
	"th": "ภาษาไทย",
}

func languageChoices() []languageChoice {
	choices := make([]languageChoice, 0, len(languageNames))
	for _, code := range content.Languages() {
		name := languageNames[code]
		if name == "" {
			name = code
		}
		choices = append(choices, languageChoice{Code: code, Name: name})
	}
	return choices
}
