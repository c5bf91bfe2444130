// internal/workers/catalog/record-click-event/handler.go
package recordclickevent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stderrors "loanmatch-workers/internal/common/errors"
	"loanmatch-workers/internal/common/logger"
	"loanmatch-workers/internal/common/metrics"
	"loanmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "record-click-event"
)

var (
	ErrMissingProductID = errors.New("MISSING_PRODUCT_ID")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "MISSING_PRODUCT_ID", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute records the outbound click best-effort: a lost click event
// must never block the applicant's redirect, so persistence failures
// complete the job with clickRecorded=false instead of erroring.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: productId is required", ErrMissingProductID)
	}

	event := models.ClickEvent{
		ID:           uuid.New().String(),
		SubmissionID: input.SubmissionID,
		ProductID:    input.ProductID,
		Context:      input.Context,
		CreatedAt:    time.Now().UTC(),
	}

	contextJSON, err := json.Marshal(event.Context)
	if err != nil {
		contextJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO click_events (id, submission_id, product_id, context, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)`,
		event.ID,
		event.SubmissionID,
		event.ProductID,
		contextJSON,
		event.CreatedAt,
	)
	if err != nil {
		h.logger.Warn("click event insert failed", map[string]interface{}{
			"error":     err,
			"errorCode": string(stderrors.ErrCodeClickLogFailed),
			"productId": event.ProductID,
		})
		return &Output{Recorded: false}, nil
	}

	metrics.ReferralClicks.WithLabelValues(input.LenderName).Inc()

	h.logger.Info("click event recorded", map[string]interface{}{
		"clickId":      event.ID,
		"submissionId": event.SubmissionID,
		"productId":    event.ProductID,
	})

	return &Output{Recorded: true, ClickID: event.ID}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
