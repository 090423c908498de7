package reports

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/platform/httpx"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// Printer renders a page without the interactive layout.
type Printer interface {
	Print(w io.Writer, name string, data view.TemplateData) error
}

// PDFRenderer converts HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Handler serves the reports page and its exports.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   *view.Responder
	printer Printer
	pdf     PDFRenderer
	now     func() time.Time
}

// NewHandler builds Handler. When printer or pdf is nil the PDF export is unavailable.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder, printer Printer, pdf PDFRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, pages: pages, printer: printer, pdf: pdf, now: time.Now}
}

// MountRoutes registers the reports page and export downloads.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports", h.page)
	r.Get("/reports/export.csv", h.exportCSV)
	r.Get("/reports/export.xlsx", h.exportXLSX)
	r.Get("/reports/export.pdf", h.exportPDF)
}

// MountAPI registers the JSON report.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/reports", h.apiReport)
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	filter := ledger.FilterFromQuery(r.URL.Query())
	rep, err := h.service.Build(r.Context(), filter)
	if err != nil {
		h.logger.Error("build report", slog.Any("error", err))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: "Não foi possível carregar o relatório."})
		}
	}
	h.pages.Render(w, r, "reports.html", "Relatórios", map[string]any{
		"Report":    rep,
		"Filter":    filter,
		"Companies": rep.Companies,
		"Query":     filter.Query(),
		"HasPDF":    h.pdf != nil && h.printer != nil,
		"Columns":   Columns,
	}, http.StatusOK)
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (Report, bool) {
	rep, err := h.service.Build(r.Context(), ledger.FilterFromQuery(r.URL.Query()))
	if err != nil {
		h.logger.Error("build report export", slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, "/reports", shared.FlashError, "Não foi possível gerar a exportação.")
		return Report{}, false
	}
	return rep, true
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rep.Items); err != nil {
		h.logger.Error("write csv export", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.attachment(w, contentTypeCSV, "csv", buf.Bytes())
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rep.Items); err != nil {
		h.logger.Error("write xlsx export", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.attachment(w, contentTypeXLSX, "xlsx", buf.Bytes())
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil || h.printer == nil {
		h.pages.RedirectWithFlash(w, r, "/reports", shared.FlashError, "Exportação em PDF indisponível.")
		return
	}
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	var html bytes.Buffer
	err := h.printer.Print(&html, "report_print.html", view.TemplateData{
		Title: "Relatório de vendas",
		Data: map[string]any{
			"Report":    rep,
			"Filter":    rep.Filter,
			"Query":     rep.Filter.Query(),
			"Columns":   Columns,
			"Generated": h.now(),
		},
	})
	if err != nil {
		h.logger.Error("print report", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), html.String())
	if err != nil {
		h.logger.Error("render report pdf", slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, "/reports?"+rep.Filter.Query().Encode(), shared.FlashError, "Não foi possível gerar o PDF.")
		return
	}
	h.attachment(w, contentTypePDF, "pdf", pdf)
}

func (h *Handler) attachment(w http.ResponseWriter, contentType, ext string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+Filename(h.now(), ext)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) apiReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Build(r.Context(), ledger.FilterFromQuery(r.URL.Query()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}
