package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/observability"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/transactions"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

type noUsers struct{}

func (noUsers) FindByEmail(context.Context, string) (*auth.User, error) { return nil, shared.ErrNotFound }
func (noUsers) FindByID(context.Context, int64) (*auth.User, error)     { return nil, shared.ErrNotFound }
func (noUsers) CreateUser(context.Context, auth.User) (*auth.User, error) {
	return nil, errors.New("read only")
}
func (noUsers) CreateSession(context.Context, string, int64, time.Time, string, string) error {
	return nil
}
func (noUsers) DeleteSession(context.Context, string) error { return nil }

type emptyLedger struct{}

func (emptyLedger) List(context.Context) ([]ledger.Transaction, error) { return nil, nil }
func (emptyLedger) Get(context.Context, string) (ledger.Transaction, error) {
	return ledger.Transaction{}, shared.ErrNotFound
}
func (emptyLedger) Create(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	return tx, nil
}
func (emptyLedger) Update(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	return tx, nil
}
func (emptyLedger) Delete(context.Context, string) (bool, error) { return false, nil }

func newTestRouter(t *testing.T, ready func(*http.Request) error) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "djr_session", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	engine, err := view.NewEngine()
	require.NoError(t, err)
	pages := view.NewResponder(engine, csrf, nil)
	svc := auth.NewService(noUsers{})
	guard := auth.Middleware{Service: svc}
	txService := transactions.NewService(emptyLedger{}, nil, nil, nil)

	return NewRouter(RouterParams{
		Config:              &Config{AppEnv: "test", RateLimitPerMinute: 1000, ImportMaxUploadMB: 1},
		SessionManager:      sessions,
		CSRFManager:         csrf,
		Guard:               guard,
		AuthHandler:         auth.NewHandler(nil, svc, pages, sessions),
		TransactionsHandler: transactions.NewHandler(nil, txService, nil, pages, nil, guard),
		Metrics:             observability.NewMetrics(),
		Ready:               ready,
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())

	router = newTestRouter(t, func(*http.Request) error { return errors.New("pg down") })
	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	router := newTestRouter(t, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/receivables?company=Klabin", nil))
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login?next="+url.QueryEscape("/receivables?company=Klabin"), res.Header().Get("Location"))

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginPageSetsSessionAndSecurityHeaders(t *testing.T) {
	router := newTestRouter(t, nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "djr_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	router := newTestRouter(t, nil)
	form := url.Values{"email": {"a@djr.com.br"}, "password": {"x"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestStaticAssetsAreCached(t *testing.T) {
	router := newTestRouter(t, nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "public, max-age=3600", res.Header().Get("Cache-Control"))
	assert.Contains(t, res.Header().Get("Content-Type"), "text/css")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	warm := httptest.NewRecorder()
	router.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "djr_http_requests_total")
}
