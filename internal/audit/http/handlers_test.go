package audithttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djr-reciclagem/recebiveis/internal/audit"
	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/view"
)

type stubTimelineService struct {
	result      audit.Result
	exportRows  []audit.Row
	lastFilters audit.Filters
}

func (s *stubTimelineService) Timeline(_ context.Context, filters audit.Filters) (audit.Result, error) {
	s.lastFilters = filters
	return s.result, nil
}

func (s *stubTimelineService) Export(_ context.Context, filters audit.Filters) ([]audit.Row, error) {
	s.lastFilters = filters
	return s.exportRows, nil
}

func newAuditRouter(t *testing.T, service *stubTimelineService, role string) (chi.Router, *shared.Session) {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "s", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser(7)

	engine, err := view.NewEngine()
	require.NoError(t, err)
	handler := NewHandler(nil, service, view.NewResponder(engine, shared.NewCSRFManager("x"), nil), auth.Middleware{})
	handler.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), sess)
			ctx = shared.ContextWithPrincipal(ctx, &shared.Principal{ID: 7, Name: "Ana", Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.MountRoutes(r)
	return r, sess
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestTimelineRequiresAdmin(t *testing.T) {
	r, _ := newAuditRouter(t, &stubTimelineService{}, shared.RoleReadonly)
	assert.Equal(t, http.StatusForbidden, get(r, "/audit").Code)
}

func TestTimelineRendersRows(t *testing.T) {
	rows := []audit.Row{{At: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), Actor: "auditor@djr.com.br", Action: "transaction.payment", Entity: "transaction", EntityID: "abc"}}
	service := &stubTimelineService{result: audit.Result{Rows: rows, Paging: audit.Paging{Page: 1, PageSize: 20, HasNext: true, NextPage: 2}}}
	r, _ := newAuditRouter(t, service, shared.RoleAdmin)

	rr := get(r, "/audit?from=2025-03-01&to=2025-03-15&entity=all")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "auditor@djr.com.br")
	assert.Contains(t, body, "Recebimento registrado")
	assert.Contains(t, body, "10/03/2025 10:00")
	assert.Contains(t, body, "page=2")
	assert.Equal(t, "2025-03-01", service.lastFilters.From.Format("2006-01-02"))
	assert.Empty(t, service.lastFilters.Entity)
}

func TestTimelineDefaultsToLastThirtyDays(t *testing.T) {
	service := &stubTimelineService{}
	r, _ := newAuditRouter(t, service, shared.RoleAdmin)

	require.Equal(t, http.StatusOK, get(r, "/audit").Code)
	assert.Equal(t, "2025-02-13", service.lastFilters.From.Format("2006-01-02"))
	assert.Equal(t, "2025-03-15", service.lastFilters.To.Format("2006-01-02"))
	assert.Equal(t, audit.DefaultPageSize, service.lastFilters.PageSize)
}

func TestTimelineRejectsInvertedRange(t *testing.T) {
	r, sess := newAuditRouter(t, &stubTimelineService{}, shared.RoleAdmin)

	rr := get(r, "/audit?from=2025-03-10&to=2025-03-01")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.True(t, strings.HasPrefix(flash.Message, "Período inválido"))
}

func TestExportCSV(t *testing.T) {
	service := &stubTimelineService{exportRows: []audit.Row{{Actor: "auditor@djr.com.br", Action: "masterdata.delete", Entity: "empresas", EntityID: "3"}}}
	r, _ := newAuditRouter(t, service, shared.RoleAdmin)

	rr := get(r, "/audit/export.csv?action=masterdata.delete")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="historico-2025-03-15.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Body.String(), "Cadastro excluído")
	assert.Equal(t, "masterdata.delete", service.lastFilters.Action)
}
