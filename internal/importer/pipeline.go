package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/transactions"
)

// MaxReportedErrors caps the error messages returned in a Report. ErrorCount still counts all.
const MaxReportedErrors = 10

const previewRunes = 50

// Creator persists one imported row.
type Creator interface {
	CreateWith(ctx context.Context, in transactions.Input, policy ledger.Policy) (ledger.Transaction, error)
}

// RowCounter counts processed rows by outcome.
type RowCounter interface {
	AddImportRows(outcome string, n int)
}

// Options tunes one import run. Use NewOptions to get the source defaults.
type Options struct {
	Source Source
	Policy ledger.Policy
	// OnRow is called after every data line with the running report.
	OnRow func(done, total int, report Report)
}

// NewOptions returns the defaults for src.
func NewOptions(src Source) Options {
	return Options{Source: src, Policy: src.DefaultPolicy()}
}

// Report is the outcome of an import run.
type Report struct {
	SuccessCount int      `json:"successCount"`
	ErrorCount   int      `json:"errorCount"`
	Skipped      int      `json:"skipped"`
	Errors       []string `json:"errors"`
}

func (r *Report) fail(line Line, err error) {
	r.ErrorCount++
	if len(r.Errors) < MaxReportedErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("Linha %d: %s... - %s", line.Number, preview(line.Text), cause(err)))
	}
}

// Summary is a one-line pt-BR description of the report.
func (r Report) Summary() string {
	msg := fmt.Sprintf("%d lançamento(s) importado(s)", r.SuccessCount)
	if r.ErrorCount > 0 {
		msg += fmt.Sprintf(", %d com erro", r.ErrorCount)
	}
	if r.Skipped > 0 {
		msg += fmt.Sprintf(", %d linha(s) ignorada(s)", r.Skipped)
	}
	return msg + "."
}

func preview(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return string(runes)
}

func cause(err error) string {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		return verr.Message()
	}
	return err.Error()
}

// Importer runs the bulk import pipeline.
type Importer struct {
	creator Creator
	counter RowCounter
	logger  *slog.Logger
}

// New builds an Importer. counter may be nil.
func New(creator Creator, counter RowCounter, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{creator: creator, counter: counter, logger: logger}
}

// Run imports text row by row. Each row is stored on its own, so a failing row never undoes
// the rows before it. A cancelled context stops before the next row and the report covers the
// rows processed so far.
func (im *Importer) Run(ctx context.Context, text string, opts Options) (Report, error) {
	if opts.Source == "" {
		opts.Source = SourceCSV
	}
	lines := SplitLines(text, opts.Source.HasHeader())
	report := Report{Errors: []string{}}
	defer im.count(&report)

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fields := SplitFields(line.Text)
		if len(fields) < opts.Source.MinFields() {
			report.Skipped++
		} else if _, err := im.creator.CreateWith(ctx, opts.Source.row(fields), opts.Policy); err != nil {
			report.fail(line, err)
			im.logger.Debug("import row failed", slog.Int("line", line.Number), slog.Any("error", err))
		} else {
			report.SuccessCount++
		}
		if opts.OnRow != nil {
			opts.OnRow(i+1, len(lines), report)
		}
	}
	im.logger.Info("import finished",
		slog.String("source", string(opts.Source)),
		slog.Int("success", report.SuccessCount),
		slog.Int("errors", report.ErrorCount),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

// RunBytes decodes raw file content before running the import.
func (im *Importer) RunBytes(ctx context.Context, raw []byte, opts Options) (Report, error) {
	text, err := Decode(raw)
	if err != nil {
		return Report{Errors: []string{}}, fmt.Errorf("importer: decode: %w", err)
	}
	return im.Run(ctx, text, opts)
}

func (im *Importer) count(r *Report) {
	if im.counter == nil {
		return
	}
	im.counter.AddImportRows("success", r.SuccessCount)
	im.counter.AddImportRows("error", r.ErrorCount)
	im.counter.AddImportRows("skipped", r.Skipped)
}

// CountLines returns the number of data lines text would produce.
func CountLines(text string, src Source) int {
	return len(SplitLines(text, src.HasHeader()))
}
