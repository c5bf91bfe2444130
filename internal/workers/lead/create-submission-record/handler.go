// internal/workers/lead/create-submission-record/handler.go
package createsubmissionrecord

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
	TaskType = "create-submission-record"
)

var (
	ErrMissingContact = errors.New("MISSING_CONTACT")
)

// upsertQuery keys on (email, phone): a returning visitor refreshes
// their submission instead of creating a duplicate. xmax = 0 only on a
// freshly inserted row.
const upsertQuery = `
	INSERT INTO submissions (
		id, answers, email, phone, consent, registered_at, source, utm, user_agent, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (email, phone) DO UPDATE SET
		answers = EXCLUDED.answers,
		consent = EXCLUDED.consent,
		source = EXCLUDED.source,
		utm = EXCLUDED.utm,
		user_agent = EXCLUDED.user_agent
	RETURNING id, (xmax = 0) AS created`

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
		if errors.Is(err, ErrMissingContact) {
			h.failJob(client, job, "MISSING_CONTACT", err.Error())
			return
		}
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Email == "" || input.Phone == "" {
		return nil, fmt.Errorf("%w: email and phone are required", ErrMissingContact)
	}

	registeredAt := input.RegisteredAt
	if registeredAt == "" {
		registeredAt = time.Now().UTC().Format(time.RFC3339)
	}

	sub := models.Submission{
		ID:           uuid.New().String(),
		Answers:      input.Answers,
		Email:        input.Email,
		Phone:        input.Phone,
		Consent:      input.Consent,
		RegisteredAt: registeredAt,
		Source:       input.Source,
		UTM:          input.UTM,
		UserAgent:    input.UserAgent,
		CreatedAt:    time.Now().UTC(),
	}

	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return nil, stderrors.NewSubmissionUpsertFailedError(fmt.Errorf("marshal answers: %w", err))
	}
	utmJSON, err := json.Marshal(sub.UTM)
	if err != nil {
		return nil, stderrors.NewSubmissionUpsertFailedError(fmt.Errorf("marshal utm: %w", err))
	}

	var submissionID string
	var created bool
	err = h.db.QueryRowContext(ctx, upsertQuery,
		sub.ID,
		answersJSON,
		sub.Email,
		sub.Phone,
		sub.Consent,
		sub.RegisteredAt,
		sub.Source,
		utmJSON,
		sub.UserAgent,
		sub.CreatedAt,
	).Scan(&submissionID, &created)
	if err != nil {
		return nil, stderrors.NewSubmissionUpsertFailedError(err)
	}

	h.writeAuditLog(ctx, submissionID, input, created)

	h.logger.Info("submission stored", map[string]interface{}{
		"submissionId": submissionID,
		"created":      created,
		"source":       input.Source,
	})

	return &Output{SubmissionID: submissionID, Created: created}, nil
}

// writeAuditLog is best-effort: a failed audit entry never fails the lead.
func (h *Handler) writeAuditLog(ctx context.Context, submissionID string, input *Input, created bool) {
	eventType := "submission_created"
	if !created {
		eventType = "submission_updated"
	}

	details, err := json.Marshal(map[string]interface{}{
		"email":  input.Email,
		"source": input.Source,
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType,
		"submission",
		submissionID,
		details,
		time.Now().UTC(),
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"submissionId": submissionID,
		})
	}
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
