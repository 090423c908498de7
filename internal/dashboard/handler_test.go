package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/masterdata"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

type listerFunc func(context.Context) ([]ledger.Transaction, error)

func (f listerFunc) List(ctx context.Context) ([]ledger.Transaction, error) { return f(ctx) }

type companyStub struct {
	err error
}

func (c companyStub) List(_ context.Context, kind masterdata.Kind) ([]masterdata.Item, error) {
	if c.err != nil {
		return nil, c.err
	}
	if kind != masterdata.KindCompanies {
		return nil, errors.New("unexpected kind")
	}
	return []masterdata.Item{{ID: 1, Nome: "Vale Tambau", Ativo: true}, {ID: 2, Nome: "Klabin", Ativo: true}}, nil
}

func newRouter(t *testing.T, source Lister, companies CompanyLister) chi.Router {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "s", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	engine, err := view.NewEngine()
	require.NoError(t, err)

	h := NewHandler(nil, source, companies, view.NewResponder(engine, shared.NewCSRFManager("x"), nil))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), sess)
			ctx = shared.ContextWithPrincipal(ctx, &shared.Principal{ID: 1, Name: "Ana", Role: shared.RoleAdmin})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r)
	r.Route("/api", h.MountAPI)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, target, nil))
	return res
}

func fixtureSource() Lister {
	return listerFunc(func(context.Context) ([]ledger.Transaction, error) { return ledgerFixture(), nil })
}

func TestDashboardPage(t *testing.T) {
	res := get(newRouter(t, fixtureSource(), companyStub{}), "/")

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "R$ 2.000,00")
	assert.Contains(t, body, "62,50%")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "Vale Tambau")
	assert.Contains(t, body, "Jaepel")
}

func TestDashboardCompanyFilter(t *testing.T) {
	res := get(newRouter(t, fixtureSource(), companyStub{err: errors.New("timeout")}), "/dashboard?company=Jaepel")

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "R$ 500,00")
	assert.NotContains(t, body, "R$ 2.000,00")
}

func TestDashboardDegradesOnFailure(t *testing.T) {
	failing := listerFunc(func(context.Context) ([]ledger.Transaction, error) { return nil, errors.New("db down") })
	res := get(newRouter(t, failing, nil), "/")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Não foi possível carregar o painel.")
}

func TestDashboardAPI(t *testing.T) {
	res := get(newRouter(t, fixtureSource(), nil), "/api/dashboard?company=all")

	require.Equal(t, http.StatusOK, res.Code)
	var ov struct {
		Cards struct {
			Count        int `json:"count"`
			PendingCount int `json:"pendingCount"`
		} `json:"cards"`
		Monthly []struct {
			Month string `json:"month"`
		} `json:"monthly"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &ov))
	assert.Equal(t, 4, ov.Cards.Count)
	assert.Equal(t, 2, ov.Cards.PendingCount)
	require.Len(t, ov.Monthly, 2)
	assert.Equal(t, "2025-01", ov.Monthly[0].Month)
}
