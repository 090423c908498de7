package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djr-reciclagem/recebiveis/internal/importer"
	jobmetrics "github.com/djr-reciclagem/recebiveis/internal/jobs"
	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/transactions"
)

type recordingCreator struct {
	mu     sync.Mutex
	orders []string
	actors []int64
}

func (c *recordingCreator) CreateWith(ctx context.Context, in transactions.Input, _ ledger.Policy) (ledger.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = append(c.orders, in.OrderNumber)
	c.actors = append(c.actors, shared.ActorID(ctx))
	return ledger.Transaction{OrderNumber: in.OrderNumber}, nil
}

func TestImportJobRunsPayload(t *testing.T) {
	creator := &recordingCreator{}
	job := NewImportJob(importer.New(creator, nil, nil), nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewImportTask(importer.Job{
		Text:    "PED-1\t2025-01-10\tKlabin\tDJR\t100,00\tNF1\nPED-2\t2025-01-11\tKlabin\tDJR\t50,00\tNF2",
		Source:  importer.SourcePaste,
		ActorID: 9,
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, TaskImportTransactions, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"PED-1", "PED-2"}, creator.orders)
	assert.Equal(t, []int64{9, 9}, creator.actors)
}

func TestImportJobRejectsMalformedPayload(t *testing.T) {
	job := NewImportJob(importer.New(&recordingCreator{}, nil, nil), nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskImportTransactions, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestImportJobRequiresImporter(t *testing.T) {
	var job *ImportJob
	task, err := NewImportTask(importer.Job{Text: "x"}, 0)
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}

type fakeEnqueuer struct {
	task *asynq.Task
	err  error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.task = task
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault, Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type fakeInspector map[string]*asynq.TaskInfo

func (f fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	if queue != QueueDefault {
		return nil, asynq.ErrQueueNotFound
	}
	info, ok := f[id]
	if !ok {
		return nil, asynq.ErrTaskNotFound
	}
	return info, nil
}

func TestClientEnqueueImport(t *testing.T) {
	enq := &fakeEnqueuer{}
	client := &Client{client: enq}

	ref, err := client.EnqueueImport(context.Background(), importer.Job{Text: "a;b", Source: importer.SourceCSV, ActorID: 3})
	require.NoError(t, err)
	assert.Equal(t, importer.JobRef{Queue: QueueDefault, ID: "task-1"}, ref)

	var job importer.Job
	require.NoError(t, json.Unmarshal(enq.task.Payload(), &job))
	assert.Equal(t, "a;b", job.Text)
	assert.Equal(t, int64(3), job.ActorID)

	enq.err = errors.New("redis down")
	_, err = client.EnqueueImport(context.Background(), importer.Job{Text: "a"})
	assert.ErrorContains(t, err, "redis down")
}

func TestClientImportStatus(t *testing.T) {
	report, err := json.Marshal(importer.Report{SuccessCount: 4, ErrorCount: 1, Errors: []string{"Linha 3: x - y"}})
	require.NoError(t, err)
	client := &Client{inspector: fakeInspector{
		"done":    {Type: TaskImportTransactions, State: asynq.TaskStateCompleted, Result: report},
		"running": {Type: TaskImportTransactions, State: asynq.TaskStateActive},
		"broken":  {Type: TaskImportTransactions, State: asynq.TaskStateArchived, LastErr: "context canceled"},
		"other":   {Type: "email:send", State: asynq.TaskStateCompleted},
	}}
	ctx := context.Background()

	st, err := client.ImportStatus(ctx, QueueDefault, "done")
	require.NoError(t, err)
	assert.True(t, st.Done)
	assert.Equal(t, "completed", st.State)
	require.NotNil(t, st.Report)
	assert.Equal(t, 4, st.Report.SuccessCount)

	st, err = client.ImportStatus(ctx, QueueDefault, "running")
	require.NoError(t, err)
	assert.False(t, st.Done)
	assert.Equal(t, "active", st.State)
	assert.Nil(t, st.Report)

	st, err = client.ImportStatus(ctx, QueueDefault, "broken")
	require.NoError(t, err)
	assert.True(t, st.Failed)
	assert.Equal(t, "context canceled", st.Error)

	for _, tc := range []struct{ queue, id string }{{QueueDefault, "missing"}, {"critical", "done"}, {QueueDefault, "other"}} {
		_, err = client.ImportStatus(ctx, tc.queue, tc.id)
		assert.ErrorIs(t, err, shared.ErrNotFound, tc.id)
	}
}

func TestHealthWithoutInspector(t *testing.T) {
	h := NewHandler(nil, nil)
	rec := httptest.NewRecorder()
	h.health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}
