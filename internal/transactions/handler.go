package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/locale"
	"github.com/djr-reciclagem/recebiveis/internal/masterdata"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

const paymentModule = "receivables.payment"

// CatalogLoader supplies the master-data lists behind the form selects.
type CatalogLoader interface {
	Catalog(ctx context.Context) (masterdata.Catalog, error)
}

// IdempotencyGuard claims one-shot form keys.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Handler serves the ledger and receivables pages and the transactions API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	catalog CatalogLoader
	pages   *view.Responder
	idem    IdempotencyGuard
	guard   auth.Middleware
}

// NewHandler builds Handler. catalog and idem may be nil.
func NewHandler(logger *slog.Logger, service *Service, catalog CatalogLoader, pages *view.Responder, idem IdempotencyGuard, guard auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, catalog: catalog, pages: pages, idem: idem, guard: guard}
}

// MountRoutes registers the page routes. Every POST requires an admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions", h.list)
	r.Get("/transactions/{id}/edit", h.edit)
	r.Get("/receivables", h.receivables)
	r.Get("/receivables/{id}/pay", h.paymentPage)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)
		r.Post("/transactions", h.create)
		r.Post("/transactions/bulk-delete", h.bulkDelete)
		r.Post("/transactions/{id}", h.update)
		r.Post("/transactions/{id}/delete", h.delete)
		r.Post("/receivables/{id}/pay", h.pay)
	})
}

// load fetches the transactions and the master-data catalog concurrently. A catalog failure
// only empties the selects.
func (h *Handler) load(ctx context.Context) ([]ledger.Transaction, masterdata.Catalog, error) {
	var (
		list []ledger.Transaction
		cat  masterdata.Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = h.service.List(gctx)
		return err
	})
	if h.catalog != nil {
		g.Go(func() error {
			c, err := h.catalog.Catalog(gctx)
			if err != nil {
				h.logger.Warn("load catalog", slog.Any("error", err))
				return nil
			}
			cat = c
			return nil
		})
	}
	err := g.Wait()
	return list, cat, err
}

func (h *Handler) flashError(r *http.Request, msg string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: msg})
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, transactionForm{SaleDate: time.Now().Format("2006-01-02")}, nil, http.StatusOK)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form transactionForm, errs map[string]string, status int) {
	list, cat, err := h.load(r.Context())
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		h.flashError(r, "Não foi possível carregar as vendas.")
		list = nil
	}
	filter := ledger.FilterFromQuery(r.URL.Query())
	if errs == nil {
		errs = map[string]string{}
	}
	h.pages.Render(w, r, "transactions.html", "Vendas", map[string]any{
		"Items":     filter.Apply(list),
		"Total":     len(list),
		"Filter":    filter,
		"Companies": ledger.Companies(list),
		"Catalog":   cat,
		"Form":      form,
		"Errors":    errs,
	}, status)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	in, formErr := form.input()
	if formErr != nil {
		h.renderList(w, r, form, formErr.Fields, http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			h.renderList(w, r, form, verr.Fields, http.StatusBadRequest)
			return
		}
		h.logger.Error("create transaction", slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError, "Não foi possível salvar a venda.")
		return
	}
	h.logger.Info("transaction created", slog.String("id", created.ID), slog.String("status", string(created.Status)))
	h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashSuccess, "Venda cadastrada.")
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tx, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.notFoundOrFail(w, r, "/transactions", err)
		return
	}
	h.renderEdit(w, r, tx, formFromTransaction(tx), nil, http.StatusOK)
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, tx ledger.Transaction, form transactionForm, errs map[string]string, status int) {
	var cat masterdata.Catalog
	if h.catalog != nil {
		c, err := h.catalog.Catalog(r.Context())
		if err != nil {
			h.logger.Warn("load catalog", slog.Any("error", err))
		}
		cat = c
	}
	if errs == nil {
		errs = map[string]string{}
	}
	h.pages.Render(w, r, "transaction_edit.html", "Editar venda", map[string]any{
		"Transaction": tx,
		"Form":        form,
		"Errors":      errs,
		"Catalog":     cat,
	}, status)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	current, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.notFoundOrFail(w, r, "/transactions", err)
		return
	}
	form := formFromRequest(r)
	in, formErr := form.input()
	if formErr != nil {
		h.renderEdit(w, r, current, form, formErr.Fields, http.StatusBadRequest)
		return
	}
	if _, err := h.service.Update(r.Context(), id, in); err != nil {
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			h.renderEdit(w, r, current, form, verr.Fields, http.StatusBadRequest)
			return
		}
		h.notFoundOrFail(w, r, "/transactions", err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashSuccess, "Venda atualizada.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.notFoundOrFail(w, r, "/transactions", err)
		return
	}
	h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashSuccess, "Venda excluída.")
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ids := r.PostForm["ids"]
	if len(ids) == 0 {
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashInfo, "Nenhuma venda selecionada.")
		return
	}
	res := h.service.BulkDelete(r.Context(), ids)
	if res.Failed > 0 {
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError,
			fmt.Sprintf("%d venda(s) excluída(s), %d falha(s).", res.Deleted, res.Failed))
		return
	}
	h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashSuccess,
		fmt.Sprintf("%d venda(s) excluída(s).", res.Deleted))
}

func (h *Handler) receivables(w http.ResponseWriter, r *http.Request) {
	filter := ledger.FilterFromQuery(r.URL.Query())
	pv, err := h.service.Pending(r.Context(), filter)
	if err != nil {
		h.logger.Error("load receivables", slog.Any("error", err))
		h.flashError(r, "Não foi possível carregar os recebimentos pendentes.")
	}
	h.pages.Render(w, r, "receivables.html", "Recebimentos pendentes", map[string]any{
		"View":      pv,
		"Filter":    filter,
		"Companies": pv.Companies,
	}, http.StatusOK)
}

func (h *Handler) paymentPage(w http.ResponseWriter, r *http.Request) {
	tx, err := h.receivable(r)
	if err != nil {
		h.notFoundOrFail(w, r, "/receivables", err)
		return
	}
	h.renderPayment(w, r, tx, paymentForm{}, "", http.StatusOK)
}

func (h *Handler) receivable(r *http.Request) (ledger.Transaction, error) {
	tx, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return ledger.Transaction{}, err
	}
	if !tx.Status.Receivable() {
		return tx, ErrNotReceivable
	}
	return tx, nil
}

func (h *Handler) renderPayment(w http.ResponseWriter, r *http.Request, tx ledger.Transaction, form paymentForm, msg string, status int) {
	var cat masterdata.Catalog
	if h.catalog != nil {
		if c, err := h.catalog.Catalog(r.Context()); err == nil {
			cat = c
		}
	}
	h.pages.Render(w, r, "payment.html", "Registrar recebimento", map[string]any{
		"Transaction":    tx,
		"Pending":        ledger.PendingAmount(tx),
		"FullPayment":    ledger.FullPaymentAmount(tx),
		"Form":           form,
		"Error":          msg,
		"Catalog":        cat,
		"IdempotencyKey": uuid.NewString(),
	}, status)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	key := r.PostFormValue(shared.IdempotencyFormField)
	if h.idem != nil && key != "" {
		if err := h.idem.CheckAndInsert(r.Context(), key, paymentModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				h.pages.RedirectWithFlash(w, r, "/receivables", shared.FlashInfo, shared.UserSafeMessage(err))
				return
			}
			h.logger.Error("claim idempotency key", slog.Any("error", err))
			h.pages.RedirectWithFlash(w, r, "/receivables", shared.FlashError, "Não foi possível registrar o recebimento.")
			return
		}
	}
	release := func() {
		if h.idem != nil && key != "" {
			if err := h.idem.Delete(r.Context(), key); err != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", err))
			}
		}
	}

	form := paymentFromRequest(r)
	res, err := h.service.RecordPayment(r.Context(), id, form.payment())
	if err != nil {
		release()
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrAmountExceedsPending):
			h.renderPayment(w, r, res.Transaction, form, paymentMessage(err, res), http.StatusBadRequest)
		default:
			h.notFoundOrFail(w, r, "/receivables", err)
		}
		return
	}

	switch res.Phase {
	case ledger.PhasePartialDifferenceDetected:
		release()
		h.pages.Render(w, r, "discount_decision.html", "Diferença no recebimento", map[string]any{
			"Transaction":    res.Transaction,
			"Form":           form,
			"Amount":         form.payment().Amount,
			"Difference":     res.Difference,
			"Pending":        res.Pending,
			"IdempotencyKey": uuid.NewString(),
		}, http.StatusOK)
	case ledger.PhaseFullSettlement:
		h.pages.RedirectWithFlash(w, r, "/receivables", shared.FlashSuccess, "Recebimento registrado. Venda quitada.")
	default:
		msg := "Recebimento parcial registrado. Restam " + locale.FormatBRL(ledger.PendingAmount(res.Transaction)) + " pendentes."
		if form.payment().Decision == ledger.DecisionApplyDiscount {
			msg = "Recebimento registrado com desconto de " + locale.FormatBRL(res.Difference) + "."
		}
		h.pages.RedirectWithFlash(w, r, "/receivables", shared.FlashSuccess, msg)
	}
}

func paymentMessage(err error, res ledger.Result) string {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "Informe um valor maior que zero."
	case errors.Is(err, ledger.ErrAmountExceedsPending):
		return "O valor informado é maior que o valor pendente (" + locale.FormatBRL(res.Pending) + ")."
	case errors.Is(err, ErrNotReceivable):
		return "Esta venda não está aguardando recebimento."
	default:
		return shared.UserSafeMessage(err)
	}
}

func (h *Handler) notFoundOrFail(w http.ResponseWriter, r *http.Request, back string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		h.pages.RedirectWithFlash(w, r, back, shared.FlashError, shared.UserSafeMessage(err))
	case errors.Is(err, ErrNotReceivable):
		h.pages.RedirectWithFlash(w, r, back, shared.FlashInfo, paymentMessage(err, ledger.Result{}))
	default:
		h.logger.Error("transaction request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, back, shared.FlashError, "Não foi possível concluir a operação.")
	}
}
