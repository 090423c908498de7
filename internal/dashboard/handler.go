package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/masterdata"
	"github.com/djr-reciclagem/recebiveis/internal/platform/httpx"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

// Lister supplies the full transaction list.
type Lister interface {
	List(ctx context.Context) ([]ledger.Transaction, error)
}

// CompanyLister supplies the registered company names.
type CompanyLister interface {
	List(ctx context.Context, kind masterdata.Kind) ([]masterdata.Item, error)
}

// Handler serves the dashboard.
type Handler struct {
	logger    *slog.Logger
	source    Lister
	companies CompanyLister
	pages     *view.Responder
}

// NewHandler builds Handler. companies may be nil, in which case the select lists the
// companies found in the ledger.
func NewHandler(logger *slog.Logger, source Lister, companies CompanyLister, pages *view.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, source: source, companies: companies, pages: pages}
}

// MountRoutes registers the dashboard pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.page)
	r.Get("/dashboard", h.page)
}

// MountAPI registers the JSON overview.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/dashboard", h.api)
}

func companyParam(r *http.Request) string {
	c := strings.TrimSpace(r.URL.Query().Get("company"))
	if c == "all" {
		return ""
	}
	return c
}

// load fetches the ledger and the registered companies concurrently. A master-data failure
// only shortens the company select.
func (h *Handler) load(ctx context.Context) ([]ledger.Transaction, []string, error) {
	var (
		list       []ledger.Transaction
		registered []masterdata.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = h.source.List(gctx)
		return err
	})
	if h.companies != nil {
		g.Go(func() error {
			items, err := h.companies.List(gctx, masterdata.KindCompanies)
			if err != nil {
				h.logger.Warn("load companies", slog.Any("error", err))
				return nil
			}
			registered = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return list, mergeCompanies(masterdata.Names(registered), ledger.Companies(list)), nil
}

func mergeCompanies(groups ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, names := range groups {
		for _, n := range names {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	company := companyParam(r)
	list, companies, err := h.load(r.Context())
	if err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: "Não foi possível carregar o painel."})
		}
	}
	ov := Build(list, company)
	charts, err := RenderCharts(ov)
	if err != nil {
		h.logger.Warn("render dashboard charts", slog.Any("error", err))
	}
	h.pages.Render(w, r, "dashboard.html", "Dashboard", map[string]any{
		"Overview":  ov,
		"Charts":    charts,
		"Company":   company,
		"Companies": companies,
	}, http.StatusOK)
}

func (h *Handler) api(w http.ResponseWriter, r *http.Request) {
	list, err := h.source.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Build(list, companyParam(r)))
}
