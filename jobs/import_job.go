package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/djr-reciclagem/recebiveis/internal/importer"
	jobmetrics "github.com/djr-reciclagem/recebiveis/internal/jobs"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// ImportJob runs queued imports and stores the report as the task result.
type ImportJob struct {
	Importer *importer.Importer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewImportJob wires dependencies for the import handler.
func NewImportJob(im *importer.Importer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ImportJob {
	return &ImportJob{Importer: im, Logger: logger, Metrics: metrics}
}

// Handle processes TaskImportTransactions tasks. Rows are never retried: a second run would
// duplicate the rows that already went in.
func (j *ImportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Importer == nil {
		return errors.New("import job: handler not configured")
	}
	var job importer.Job
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskImportTransactions)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("source", string(job.Source)), slog.Int64("actor_id", job.ActorID))
	logger.Info("starting import", slog.String("file", job.FileName))

	ctx = shared.ContextWithPrincipal(ctx, &shared.Principal{ID: job.ActorID})
	report, err := j.Importer.Run(ctx, job.Text, importer.NewOptions(job.Source))
	tracker.Rows("success", report.SuccessCount)
	tracker.Rows("error", report.ErrorCount)
	tracker.Rows("skipped", report.Skipped)
	if rw := t.ResultWriter(); rw != nil {
		data, merr := json.Marshal(report)
		if merr == nil {
			_, merr = rw.Write(data)
		}
		if merr != nil {
			logger.Warn("write import result", slog.Any("error", merr))
		}
	}
	if err != nil {
		resultErr = err
		logger.Error("import interrupted", slog.Any("error", err))
		return resultErr
	}
	logger.Info("completed import", slog.Int("success", report.SuccessCount), slog.Int("errors", report.ErrorCount))
	return resultErr
}

func (j *ImportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskImportTransactions))
	}
	return slog.Default().With(slog.String("job", TaskImportTransactions))
}
