// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"loanmatch-workers/internal/common/metrics"
	"loanmatch-workers/internal/common/observability"
)

// HandlerFunc is the job callback shape every worker handler exposes.
// Handlers report success or failure to the broker themselves.
type HandlerFunc func(client worker.JobClient, job entities.Job)

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(
	client *Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler HandlerFunc,
	obs *observability.Observability,
	logger *zap.Logger,
) *CamundaWorker {
	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()

		handler(jobClient, job)

		elapsed := time.Since(start)
		metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
		metrics.WorkerJobsProcessed.WithLabelValues(taskType).Inc()
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		if obs != nil {
			obs.RecordJobProcessed(context.Background(), taskType)
			obs.RecordJobDuration(context.Background(), taskType, elapsed)
		}
	}

	jobWorker := client.GetClient().NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(instrumented)).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

func (w *CamundaWorker) Stop(_ context.Context) {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
