package audithttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/djr-reciclagem/recebiveis/internal/audit"
	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/masterdata"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

const (
	defaultDateRange  = 30 * 24 * time.Hour
	maxDateRangeHours = 24 * 366
	dateLayout        = "2006-01-02"
)

// TimelineService is the read side of the activity log.
type TimelineService interface {
	Timeline(ctx context.Context, filters audit.Filters) (audit.Result, error)
	Export(ctx context.Context, filters audit.Filters) ([]audit.Row, error)
}

// Handler serves the activity log to administrators.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
	pages   *view.Responder
	guard   auth.Middleware
	now     func() time.Time
}

// NewHandler builds the activity log handler.
func NewHandler(logger *slog.Logger, service TimelineService, pages *view.Responder, guard auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger,
		service: service,
		pages:   pages,
		guard:   guard,
		now:     time.Now,
	}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.pages.RedirectWithFlash(w, r, "/audit", shared.FlashError, filterMessage(err))
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("load audit timeline", slog.Any("error", err))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: "Não foi possível carregar o histórico."})
		}
		result = audit.Result{Paging: audit.Paging{Page: 1}}
	}
	h.pages.Render(w, r, "audit.html", "Histórico", map[string]any{
		"Rows":      result.Rows,
		"Paging":    result.Paging,
		"Filters":   filters,
		"From":      filters.From.Format(dateLayout),
		"To":        filters.To.Format(dateLayout),
		"Query":     filters.Query(),
		"PrevQuery": pageQuery(filters, result.Paging.PrevPage),
		"NextQuery": pageQuery(filters, result.Paging.NextPage),
		"Actions":   actionOptions,
		"Entities":  entityOptions,
	}, http.StatusOK)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.pages.RedirectWithFlash(w, r, "/audit", shared.FlashError, filterMessage(err))
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("export audit timeline", slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, "/audit", shared.FlashError, "Não foi possível gerar a exportação.")
		return
	}
	csvBytes, err := audit.WriteCSV(rows)
	if err != nil {
		h.logger.Error("encode audit csv", slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, "/audit", shared.FlashError, "Não foi possível gerar a exportação.")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="historico-`+h.now().Format(dateLayout)+`.csv"`)
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) parseFilters(r *http.Request) (audit.Filters, error) {
	q := r.URL.Query()
	now := h.now()
	toStr := strings.TrimSpace(q.Get("to"))
	if toStr == "" {
		toStr = now.Format(dateLayout)
	}
	toTime, err := time.Parse(dateLayout, toStr)
	if err != nil {
		return audit.Filters{}, validationError{field: "to"}
	}
	fromStr := strings.TrimSpace(q.Get("from"))
	if fromStr == "" {
		fromStr = toTime.Add(-defaultDateRange).Format(dateLayout)
	}
	fromTime, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return audit.Filters{}, validationError{field: "from"}
	}
	if fromTime.After(toTime) || toTime.Sub(fromTime) > maxDateRangeHours*time.Hour {
		return audit.Filters{}, validationError{field: "range"}
	}

	page := 1
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.Filters{}, validationError{field: "page"}
		}
		page = parsed
	}
	pageSize := audit.DefaultPageSize
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.Filters{}, validationError{field: "page_size"}
		}
		pageSize = min(parsed, audit.MaxPageSize)
	}

	entity := strings.TrimSpace(q.Get("entity"))
	if entity == "all" {
		entity = ""
	}
	action := strings.TrimSpace(q.Get("action"))
	if action == "all" {
		action = ""
	}
	return audit.Filters{
		From:     fromTime,
		To:       toTime,
		Actor:    strings.TrimSpace(q.Get("actor")),
		Entity:   entity,
		Action:   action,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func pageQuery(f audit.Filters, page int) url.Values {
	if page <= 0 {
		return nil
	}
	q := f.Query()
	q.Set("page", strconv.Itoa(page))
	return q
}

type option struct {
	Value string
	Label string
}

var entityOptions = []option{
	{"transaction", "Lançamentos"},
	{string(masterdata.KindCompanies), "Empresas"},
	{string(masterdata.KindBankAccounts), "Contas bancárias"},
	{string(masterdata.KindPaymentMethods), "Formas de recebimento"},
}

var actionOptions = []option{
	{"transaction.create", "Lançamento criado"},
	{"transaction.update", "Lançamento alterado"},
	{"transaction.delete", "Lançamento excluído"},
	{"transaction.payment", "Recebimento registrado"},
	{"masterdata.create", "Cadastro criado"},
	{"masterdata.update", "Cadastro alterado"},
	{"masterdata.delete", "Cadastro excluído"},
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return "invalid filter: " + v.field
}

func filterMessage(err error) string {
	var v validationError
	if errors.As(err, &v) && v.field == "range" {
		return "Período inválido: a data inicial deve ser anterior à final e o intervalo de no máximo um ano."
	}
	return "Filtro inválido."
}
