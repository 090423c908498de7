package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/djr-reciclagem/recebiveis/internal/importer"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskImportTransactions imports a large CSV/paste batch.
	TaskImportTransactions = "import:transactions"
)

// DefaultResultTTL keeps finished import reports readable by the status page.
const DefaultResultTTL = 24 * time.Hour

// NewImportTask constructs an Asynq task for job.
func NewImportTask(job importer.Job, retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	if retention <= 0 {
		retention = DefaultResultTTL
	}
	return asynq.NewTask(TaskImportTransactions, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(0),
		asynq.Retention(retention),
		asynq.Timeout(30*time.Minute),
	), nil
}
