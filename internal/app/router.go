package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/djr-reciclagem/recebiveis/internal/audit/http"
	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/dashboard"
	"github.com/djr-reciclagem/recebiveis/internal/importer"
	"github.com/djr-reciclagem/recebiveis/internal/masterdata"
	"github.com/djr-reciclagem/recebiveis/internal/observability"
	"github.com/djr-reciclagem/recebiveis/internal/reports"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/transactions"
	"github.com/djr-reciclagem/recebiveis/jobs"
	"github.com/djr-reciclagem/recebiveis/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionManager      *shared.SessionManager
	CSRFManager         *shared.CSRFManager
	Guard               auth.Middleware
	AuthHandler         *auth.Handler
	DashboardHandler    *dashboard.Handler
	TransactionsHandler *transactions.Handler
	ImportHandler       *importer.Handler
	ReportsHandler      *reports.Handler
	MasterDataHandler   *masterdata.Handler
	AuditHandler        *audithttp.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
	// Ready reports whether the backing stores answer. Nil means always ready.
	Ready func(r *http.Request) error
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	// Static files skip the session, CSRF and rate limiting layers.
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Ready != nil {
			if err := params.Ready(req); err != nil {
				logger.Warn("readiness check failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}

		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequireLogin)

			if params.DashboardHandler != nil {
				params.DashboardHandler.MountRoutes(r)
			}
			if params.TransactionsHandler != nil {
				params.TransactionsHandler.MountRoutes(r)
			}
			if params.ImportHandler != nil {
				params.ImportHandler.MountRoutes(r)
			}
			if params.ReportsHandler != nil {
				params.ReportsHandler.MountRoutes(r)
			}
			if params.MasterDataHandler != nil {
				params.MasterDataHandler.MountRoutes(r)
			}
			if params.AuditHandler != nil {
				params.AuditHandler.MountRoutes(r)
			}
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}

			r.Route("/api", func(r chi.Router) {
				if params.DashboardHandler != nil {
					params.DashboardHandler.MountAPI(r)
				}
				if params.TransactionsHandler != nil {
					params.TransactionsHandler.MountAPI(r)
				}
				if params.ReportsHandler != nil {
					params.ReportsHandler.MountAPI(r)
				}
				if params.MasterDataHandler != nil {
					params.MasterDataHandler.MountAPI(r)
				}
			})
		})
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
