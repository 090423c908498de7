package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// Middleware guards routes by login state and role.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireLogin loads the signed-in user into the request context. Anonymous page requests are
// sent to the login form; anonymous API requests get 401.
func (m Middleware) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == 0 {
			m.deny(w, r)
			return
		}
		user, err := m.Service.CurrentUser(r.Context(), sess.User())
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("session user not loadable", slog.Int64("user_id", sess.User()), slog.Any("error", err))
			}
			sess.SetUser(0)
			m.deny(w, r)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), user.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin refuses readonly users. Must run after RequireLogin.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		if p.IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		if m.Logger != nil && p != nil {
			m.Logger.Warn("readonly user blocked", slog.Int64("user_id", p.ID), slog.String("path", r.URL.Path))
		}
		if r.Method == http.MethodGet || isAPI(r) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: shared.UserSafeMessage(shared.ErrForbidden)})
		}
		http.Redirect(w, r, backTarget(r), http.StatusSeeOther)
	})
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	target := "/auth/login"
	if r.Method == http.MethodGet && r.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func backTarget(r *http.Request) string {
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		return ref.Path
	}
	return "/"
}
