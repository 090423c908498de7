package masterdata

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/platform/httpx"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

// Handler manages the settings page and the master-data API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   *view.Responder
	guard   auth.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder, guard auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, pages: pages, guard: guard}
}

// MountRoutes registers the settings routes. Reading is open to every signed-in user.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings", h.showSettings)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)
		r.Post("/settings/{kind}", h.create)
		r.Post("/settings/{kind}/{id}", h.update)
		r.Post("/settings/{kind}/{id}/delete", h.delete)
	})
}

// MountAPI registers the read-only JSON endpoints.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/master-data/{kind}", h.apiList)
}

type section struct {
	Kind  Kind
	Label string
	Items []Item
}

func (h *Handler) showSettings(w http.ResponseWriter, r *http.Request) {
	sections := make([]section, 0, len(Kinds))
	cat, err := h.service.Catalog(r.Context())
	if err != nil {
		h.logger.Error("load master data", slog.Any("error", err))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: "Não foi possível carregar os cadastros."})
		}
	}
	for _, k := range Kinds {
		var items []Item
		switch k {
		case KindCompanies:
			items = cat.Companies
		case KindBankAccounts:
			items = cat.BankAccounts
		case KindPaymentMethods:
			items = cat.PaymentMethods
		}
		sections = append(sections, section{Kind: k, Label: k.Label(), Items: items})
	}
	h.pages.Render(w, r, "settings.html", "Configurações", map[string]any{
		"Sections": sections,
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	kind, ok := ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, err := h.service.Create(r.Context(), kind, r.PostFormValue("nome")); err != nil {
		h.fail(w, r, "create", kind, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/settings", shared.FlashSuccess, "Cadastro incluído.")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.target(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.Update(r.Context(), kind, id, r.PostFormValue("nome")); err != nil {
		h.fail(w, r, "update", kind, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/settings", shared.FlashSuccess, "Cadastro atualizado.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.target(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.service.Delete(r.Context(), kind, id); err != nil {
		h.fail(w, r, "delete", kind, err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/settings", shared.FlashSuccess, "Cadastro excluído.")
}

func (h *Handler) apiList(w http.ResponseWriter, r *http.Request) {
	kind, ok := ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	items, err := h.service.List(r.Context(), kind)
	if err != nil {
		h.logger.Error("list master data", slog.String("kind", string(kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) target(r *http.Request) (Kind, int64, bool) {
	kind, ok := ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return kind, id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, kind Kind, err error) {
	h.logger.Warn("master data "+op+" failed", slog.String("kind", string(kind)), slog.Any("error", err))
	h.pages.RedirectWithFlash(w, r, "/settings", shared.FlashError, shared.UserSafeMessage(err))
}
