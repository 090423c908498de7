package view

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// Responder renders pages with the per-request session data and issues flash redirects.
type Responder struct {
	engine *Engine
	csrf   *shared.CSRFManager
	logger *slog.Logger
}

// NewResponder builds a Responder.
func NewResponder(engine *Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{engine: engine, csrf: csrf, logger: logger}
}

// Render writes page with status. Template failures become a plain 500.
func (r *Responder) Render(w http.ResponseWriter, req *http.Request, page, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(req.Context())
	var (
		token string
		flash *shared.FlashMessage
	)
	if sess != nil {
		token, _ = r.csrf.EnsureToken(sess)
		flash = sess.PopFlash()
	}
	if data == nil {
		data = map[string]any{}
	}
	viewData := TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flash:       flash,
		CurrentPath: req.URL.Path,
		User:        shared.PrincipalFromContext(req.Context()),
		Data:        data,
	}
	var buf bytes.Buffer
	if err := r.engine.Execute(&buf, page, viewData); err != nil {
		r.logger.Error("render template", slog.Any("error", err), slog.String("template", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RedirectWithFlash queues a flash message and redirects with 303.
func (r *Responder) RedirectWithFlash(w http.ResponseWriter, req *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(req.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, req, location, http.StatusSeeOther)
}

