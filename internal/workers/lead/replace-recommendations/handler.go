// internal/workers/lead/replace-recommendations/handler.go
package replacerecommendations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stderrors "loanmatch-workers/internal/common/errors"
	"loanmatch-workers/internal/common/logger"
	"loanmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "replace-recommendations"
)

var (
	ErrMissingSubmissionID = errors.New("MISSING_SUBMISSION_ID")
)

type Handler struct {
	config       *Config
	db           *sql.DB
	logger       logger.Logger
	errorHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		db:           db,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		errorHandler: stderrors.NewErrorHandler(log),
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
		if errors.Is(err, ErrMissingSubmissionID) {
			h.failJob(client, job, "MISSING_SUBMISSION_ID", err.Error())
			return
		}
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// execute replaces the stored recommendation set atomically: re-running
// a process instance leaves exactly one set per submission, never a mix
// of old and new rows.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SubmissionID == "" {
		return nil, fmt.Errorf("%w: submissionId is required", ErrMissingSubmissionID)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, stderrors.NewRecommendationReplaceFailedError(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM recommendations WHERE submission_id = $1`,
		input.SubmissionID,
	)
	if err != nil {
		return nil, stderrors.NewRecommendationReplaceFailedError(fmt.Errorf("delete previous set: %w", err))
	}

	rows := make([]models.Recommendation, 0, len(input.Recommendations))
	for _, rec := range input.Recommendations {
		rows = append(rows, models.Recommendation{
			SubmissionID: input.SubmissionID,
			ProductID:    rec.ProductID,
			Rank:         rec.Rank,
			Score:        rec.Score,
		})
	}

	now := time.Now().UTC()
	for _, row := range rows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recommendations (id, submission_id, product_id, rank, score, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(),
			row.SubmissionID,
			row.ProductID,
			row.Rank,
			row.Score,
			now,
		)
		if err != nil {
			return nil, stderrors.NewRecommendationReplaceFailedError(
				fmt.Errorf("insert recommendation %s: %w", row.ProductID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, stderrors.NewRecommendationReplaceFailedError(fmt.Errorf("commit: %w", err))
	}

	h.logger.Info("recommendations replaced", map[string]interface{}{
		"submissionId": input.SubmissionID,
		"storedCount":  len(input.Recommendations),
	})

	return &Output{
		SubmissionID: input.SubmissionID,
		StoredCount:  len(input.Recommendations),
	}, nil
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
