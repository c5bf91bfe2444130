// internal/workers/lead/build-referral-url/handler.go
package buildreferralurl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	stderrors "loanmatch-workers/internal/common/errors"
	"loanmatch-workers/internal/common/logger"
	"loanmatch-workers/internal/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "build-referral-url"
)

var (
	ErrMissingProduct = errors.New("MISSING_PRODUCT")
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
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
		if errors.Is(err, ErrMissingProduct) {
			h.failJob(client, job, "MISSING_PRODUCT", err.Error())
			return
		}
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// execute resolves the outbound URL. The product's own apply URL wins;
// the lender-level redirect is the fallback. A product with neither is a
// catalog configuration error, surfaced as a BPMN error so the process
// can route the lead to the no-referral path.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Product == nil {
		return nil, fmt.Errorf("%w: product is required", ErrMissingProduct)
	}

	base, source, params := h.resolveBase(input.Product)
	if base == "" {
		return nil, stderrors.NewReferralNotConfiguredError(input.Product.ID)
	}

	resolved, err := h.decorate(base, params, input)
	if err != nil {
		return nil, stderrors.NewReferralNotConfiguredError(input.Product.ID)
	}

	h.logger.Info("referral url resolved", map[string]interface{}{
		"productId":    input.Product.ID,
		"submissionId": input.SubmissionID,
		"source":       source,
	})

	return &Output{ReferralURL: resolved, Source: source}, nil
}

func (h *Handler) resolveBase(product *engine.Product) (string, string, map[string]interface{}) {
	if product.ExternalApplyURL != "" {
		return product.ExternalApplyURL, "product", nil
	}
	if product.Lender != nil && product.Lender.ReferralURL != "" {
		return product.Lender.ReferralURL, "lender", product.Lender.ReferralParams
	}
	return "", "", nil
}

// decorate layers query parameters onto the base URL. Parameters already
// present on the base win over everything; session UTM wins over lender
// params; lender params win over the configured defaults. Tracking ids
// are always set last.
func (h *Handler) decorate(base string, lenderParams map[string]interface{}, input *Input) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()

	for key, value := range h.config.DefaultUTM {
		if !q.Has(key) {
			q.Set(key, value)
		}
	}
	for key, value := range lenderParams {
		q.Set(key, fmt.Sprintf("%v", value))
	}
	for key, value := range input.SessionUTM {
		if value != "" {
			q.Set(key, value)
		}
	}

	// Re-apply base params so nothing above can shadow them.
	for key, values := range u.Query() {
		if len(values) > 0 {
			q.Set(key, values[0])
		}
	}

	if input.SubmissionID != "" {
		q.Set(h.config.SubmissionParam, input.SubmissionID)
	}
	q.Set(h.config.ProductParam, input.Product.ID)

	u.RawQuery = q.Encode()
	return u.String(), nil
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
