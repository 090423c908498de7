package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"

	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/locale"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/web"
)

// Engine renders HTML pages. Every page is parsed together with the layouts and partials.
type Engine struct {
	pages map[string]*template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *shared.Principal
	Data        map[string]any
}

// Funcs exposes the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"brl":      locale.FormatBRL,
		"date":     locale.FormatDate,
		"datetime": locale.FormatDateTime,
		"plain": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"pending":     ledger.PendingAmount,
		"settled":     ledger.IsSettled,
		"fullPayment": ledger.FullPaymentAmount,
		"percent": func(v float64) string {
			return locale.FormatNumber(decimal.NewFromFloat(v)) + "%"
		},
		"query": func(q url.Values) template.URL {
			if len(q) == 0 {
				return ""
			}
			return template.URL("?" + q.Encode())
		},
		"statuses": func() []ledger.Status {
			return ledger.Statuses
		},
	}
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	return newEngine(web.Templates)
}

func newEngine(files fs.FS) (*Engine, error) {
	base, err := template.New("root").Funcs(Funcs()).ParseFS(files, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: parse layouts: %w", err)
	}
	names, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(files, name); err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		pages[path.Base(name)] = clone
	}
	return &Engine{pages: pages}, nil
}

// Has reports whether a page template exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.pages[name]
	return ok
}

// Execute renders page name through the base layout.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	return e.execute(w, name, "base", data)
}

// Print renders page name through the print layout, which has no navigation or scripts.
func (e *Engine) Print(w io.Writer, name string, data TemplateData) error {
	return e.execute(w, name, "print", data)
}

func (e *Engine) execute(w io.Writer, name, layout string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, layout, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
