package view

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err, "Templates should parse without error")
	for _, page := range []string{
		"login.html", "dashboard.html", "transactions.html", "transaction_edit.html",
		"receivables.html", "payment.html", "discount_decision.html", "reports.html",
		"settings.html", "import_status.html", "audit.html", "report_print.html",
	} {
		assert.True(t, engine.Has(page), page)
	}
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/layouts/base.html":   {Data: []byte(`{{define "base"}}<title>{{.Title}}</title>{{template "content" .}}{{end}}`)},
		"templates/layouts/print.html":  {Data: []byte(`{{define "print"}}[{{template "content" .}}]{{end}}`)},
		"templates/partials/flash.html": {Data: []byte(`{{define "flash"}}{{with .Flash}}<p class="{{.Kind}}">{{.Message}}</p>{{end}}{{end}}`)},
		"templates/pages/a.html":        {Data: []byte(`{{define "content"}}{{template "flash" .}}A {{brl (index .Data "v")}}{{end}}`)},
		"templates/pages/b.html":        {Data: []byte(`{{define "content"}}B {{.CSRFToken}}{{end}}`)},
	}
}

func TestPagesDoNotShareContent(t *testing.T) {
	engine, err := newEngine(testFS())
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, engine.Execute(&a, "a.html", TemplateData{Title: "x", Data: map[string]any{"v": mustDecimal(t, "1234.5")}}))
	require.NoError(t, engine.Execute(&b, "b.html", TemplateData{Title: "y", CSRFToken: "tok"}))

	assert.Equal(t, "<title>x</title>A R$ 1.234,50", a.String())
	assert.Equal(t, "<title>y</title>B tok", b.String())
	assert.Error(t, engine.Execute(&a, "missing.html", TemplateData{}))
}

func TestPrintUsesPrintLayout(t *testing.T) {
	engine, err := newEngine(testFS())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, engine.Print(&out, "b.html", TemplateData{CSRFToken: "z"}))
	assert.Equal(t, "[B z]", out.String())
}

func TestResponderRenderPopsFlash(t *testing.T) {
	engine, err := newEngine(testFS())
	require.NoError(t, err)
	responder := NewResponder(engine, shared.NewCSRFManager("secret"), nil)

	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "s", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Salvo"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	responder.Render(res, req, "a.html", "Início", map[string]any{"v": mustDecimal(t, "10")}, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, res.Body.String(), `<p class="success">Salvo</p>`)
	assert.Nil(t, sess.PopFlash())
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))

	res = httptest.NewRecorder()
	responder.Render(res, req, "missing.html", "x", nil, http.StatusOK)
	assert.Equal(t, http.StatusInternalServerError, res.Code)
}

func mustDecimal(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}
