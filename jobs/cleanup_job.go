package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/djr-reciclagem/recebiveis/internal/jobs"
)

// TaskIdempotencyCleanup prunes old payment form keys.
const TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"

// DefaultKeyRetention is how long a claimed form key blocks a resubmission.
const DefaultKeyRetention = 7 * 24 * time.Hour

// KeyCleaner removes idempotency keys older than a cutoff.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

type cleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask builds the periodic cleanup task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	if retention <= 0 {
		retention = DefaultKeyRetention
	}
	data, err := json.Marshal(cleanupPayload{RetentionHours: int(retention / time.Hour)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.Queue(QueueDefault)), nil
}

// CleanupJob runs TaskIdempotencyCleanup.
type CleanupJob struct {
	Keys    KeyCleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle deletes expired keys.
func (j *CleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Keys == nil {
		return errors.New("cleanup job: handler not configured")
	}
	var payload cleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := time.Duration(payload.RetentionHours) * time.Hour
	if retention <= 0 {
		retention = DefaultKeyRetention
	}

	tracker := j.Metrics.Track(TaskIdempotencyCleanup)
	err := j.Keys.Cleanup(ctx, retention)
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err != nil {
		logger.Error("idempotency cleanup", slog.Any("error", err))
	} else {
		logger.Info("idempotency cleanup done", slog.Duration("retention", retention))
	}
	return tracker.End(err)
}
