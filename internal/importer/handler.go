package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

// Job is the payload of an asynchronous import.
type Job struct {
	Text     string `json:"text"`
	Source   Source `json:"source"`
	FileName string `json:"fileName,omitempty"`
	ActorID  int64  `json:"actorId"`
}

// JobRef locates a queued import.
type JobRef struct {
	Queue string
	ID    string
}

// JobStatus is what the status page shows for a queued import.
type JobStatus struct {
	State  string
	Done   bool
	Failed bool
	Error  string
	Report *Report
}

// Enqueuer hands large imports to the background worker.
type Enqueuer interface {
	EnqueueImport(ctx context.Context, job Job) (JobRef, error)
}

// StatusReader looks up queued imports.
type StatusReader interface {
	ImportStatus(ctx context.Context, queue, id string) (JobStatus, error)
}

// HandlerConfig tunes the upload endpoints.
type HandlerConfig struct {
	// AsyncRows is the line count above which imports go to the queue. Zero disables the queue.
	AsyncRows      int
	MaxUploadBytes int64
}

// Handler serves the import endpoints.
type Handler struct {
	logger   *slog.Logger
	importer *Importer
	pages    *view.Responder
	guard    auth.Middleware
	queue    Enqueuer
	status   StatusReader
	cfg      HandlerConfig
}

// NewHandler builds Handler. queue and status may be nil, in which case every import runs inline.
func NewHandler(logger *slog.Logger, importer *Importer, pages *view.Responder, guard auth.Middleware, queue Enqueuer, status StatusReader, cfg HandlerConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &Handler{logger: logger, importer: importer, pages: pages, guard: guard, queue: queue, status: status, cfg: cfg}
}

// MountRoutes registers the import routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions/import/template", h.template)
	r.Get("/transactions/imports/{queue}/{id}", h.showStatus)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)
		r.Post("/transactions/import", h.upload)
		r.Post("/transactions/import/paste", h.paste)
	})
}

func (h *Handler) template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="template-importacao.csv"`)
	_, _ = w.Write(TemplateCSV())
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError, "Arquivo inválido ou muito grande.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError, "Selecione um arquivo para importar.")
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		h.logger.Warn("read upload", slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError, "Não foi possível ler o arquivo.")
		return
	}

	src, err := ParseSource(r.FormValue("layout"))
	if err != nil || src == SourcePaste {
		src = SourceCSV
	}
	var text string
	if IsXLSX(header.Filename, raw) {
		text, err = XLSXToText(bytes.NewReader(raw))
	} else {
		text, err = Decode(raw)
	}
	if err != nil {
		h.logger.Warn("decode upload", slog.String("file", header.Filename), slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError, "Formato de arquivo não reconhecido.")
		return
	}
	h.dispatch(w, r, Job{Text: text, Source: src, FileName: header.Filename, ActorID: shared.ActorID(r.Context())})
}

func (h *Handler) paste(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	src := SourcePaste
	if r.PostFormValue("layout") == string(SourceKlabin) {
		src = SourceKlabin
	}
	h.dispatch(w, r, Job{Text: r.PostFormValue("data"), Source: src, ActorID: shared.ActorID(r.Context())})
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, job Job) {
	if strings.TrimSpace(job.Text) == "" {
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError, "Nenhum dado para importar.")
		return
	}
	lines := CountLines(job.Text, job.Source)
	if h.queue != nil && h.cfg.AsyncRows > 0 && lines > h.cfg.AsyncRows {
		ref, err := h.queue.EnqueueImport(r.Context(), job)
		if err == nil {
			h.logger.Info("import queued", slog.String("task_id", ref.ID), slog.Int("lines", lines))
			h.pages.RedirectWithFlash(w, r, fmt.Sprintf("/transactions/imports/%s/%s", ref.Queue, ref.ID),
				shared.FlashInfo, fmt.Sprintf("Importação de %d linha(s) enviada para processamento.", lines))
			return
		}
		h.logger.Warn("enqueue import, running inline", slog.Any("error", err))
	}

	report, err := h.importer.Run(r.Context(), job.Text, NewOptions(job.Source))
	if err != nil {
		h.logger.Warn("import interrupted", slog.Any("error", err))
	}
	kind := shared.FlashSuccess
	if report.ErrorCount > 0 {
		kind = shared.FlashError
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: report.Summary()})
	}
	h.pages.Render(w, r, "import_status.html", "Importação", map[string]any{
		"Source": job.Source,
		"Status": JobStatus{State: "completed", Done: true, Report: &report},
	}, http.StatusOK)
}

func (h *Handler) showStatus(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		http.NotFound(w, r)
		return
	}
	st, err := h.status.ImportStatus(r.Context(), chi.URLParam(r, "queue"), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError, "Importação não encontrada ou expirada.")
			return
		}
		h.logger.Error("import status", slog.Any("error", err))
		h.pages.RedirectWithFlash(w, r, "/transactions", shared.FlashError, "Não foi possível consultar a importação.")
		return
	}
	h.pages.Render(w, r, "import_status.html", "Importação", map[string]any{
		"Status": st,
	}, http.StatusOK)
}
