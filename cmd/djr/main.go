package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/djr-reciclagem/recebiveis/internal/app"
	"github.com/djr-reciclagem/recebiveis/internal/audit"
	audithttp "github.com/djr-reciclagem/recebiveis/internal/audit/http"
	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/dashboard"
	"github.com/djr-reciclagem/recebiveis/internal/importer"
	"github.com/djr-reciclagem/recebiveis/internal/masterdata"
	"github.com/djr-reciclagem/recebiveis/internal/observability"
	"github.com/djr-reciclagem/recebiveis/internal/platform/cache"
	"github.com/djr-reciclagem/recebiveis/internal/platform/db"
	"github.com/djr-reciclagem/recebiveis/internal/reports"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/transactions"
	"github.com/djr-reciclagem/recebiveis/internal/view"
	"github.com/djr-reciclagem/recebiveis/jobs"
	"github.com/djr-reciclagem/recebiveis/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := app.EnsureSchema(ctx, pool); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	engine, err := view.NewEngine()
	if err != nil {
		logger.Error("load templates", slog.Any("error", err))
		os.Exit(1)
	}
	pages := view.NewResponder(engine, csrfManager, logger)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, pages, sessionManager)
	guard := auth.Middleware{Service: authService, Logger: logger}

	auditLogger := shared.NewAuditLogger(pool)
	idempotency := shared.NewIdempotencyStore(pool)

	masterService := masterdata.NewService(masterdata.NewRepository(pool), auditLogger, logger)
	masterHandler := masterdata.NewHandler(logger, masterService, pages, guard)

	txService := transactions.NewService(transactions.NewRepository(pool), auditLogger, metrics, logger)
	txHandler := transactions.NewHandler(logger, txService, masterService, pages, idempotency, guard)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	queue, err := jobs.NewClient(redisOpts, cfg.ImportResultTTL)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	imp := importer.New(txService, metrics, logger)
	importHandler := importer.NewHandler(logger, imp, pages, guard, queue, queue, importer.HandlerConfig{
		AsyncRows:      cfg.ImportAsyncRows,
		MaxUploadBytes: cfg.ImportMaxUploadMB << 20,
	})

	var pdf reports.PDFRenderer
	if cfg.GotenbergURL != "" {
		pdf = report.NewClient(cfg.GotenbergURL)
	}
	reportService := reports.NewService(txService, logger)
	reportsHandler := reports.NewHandler(logger, reportService, pages, engine, pdf)

	dashboardHandler := dashboard.NewHandler(logger, txService, masterService, pages)
	auditHandler := audithttp.NewHandler(logger, audit.NewService(audit.NewRepository(pool)), pages, guard)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		Guard:               guard,
		AuthHandler:         authHandler,
		DashboardHandler:    dashboardHandler,
		TransactionsHandler: txHandler,
		ImportHandler:       importHandler,
		ReportsHandler:      reportsHandler,
		MasterDataHandler:   masterHandler,
		AuditHandler:        auditHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
		Ready: func(r *http.Request) error {
			if err := pool.Ping(r.Context()); err != nil {
				return err
			}
			return redisClient.Ping(r.Context()).Err()
		},
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
