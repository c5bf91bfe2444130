// internal/workers/evaluation/evaluate-products/handler.go
package evaluateproducts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"loanmatch-workers/internal/common/logger"
	"loanmatch-workers/internal/common/metrics"
	"loanmatch-workers/internal/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-products"
)

var (
	ErrMissingProfile = errors.New("EVALUATION_FAILED")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, "EVALUATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute runs the pure evaluation pipeline. Malformed applicant data
// never errors here; only a structurally absent profile does.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Profile == nil {
		return nil, fmt.Errorf("%w: normalized profile is missing", ErrMissingProfile)
	}

	for _, p := range input.Products {
		if p != nil {
			metrics.ProductsEvaluated.WithLabelValues(p.Category).Inc()
		}
	}

	ranked := engine.Evaluate(input.Products, input.Profile, input.SelectedCategory)

	recommendations := make([]RankedProduct, 0, len(ranked))
	for i, rec := range ranked {
		metrics.ProductsEligible.WithLabelValues(rec.Product.Category).Inc()
		metrics.MatchScore.WithLabelValues(rec.Product.Category).Observe(float64(rec.Result.Score))

		rp := RankedProduct{
			ProductID:   rec.Product.ID,
			ProductName: rec.Product.Name,
			Rank:        i + 1,
			Score:       rec.Result.Score,
			Reasons:     rec.Result.Reasons,
			Product:     rec.Product,
		}
		if rec.Product.Lender != nil {
			rp.LenderID = rec.Product.Lender.ID
			rp.LenderName = rec.Product.Lender.Name
		}
		recommendations = append(recommendations, rp)
	}

	h.logger.Info("evaluation complete", map[string]interface{}{
		"evaluated": len(input.Products),
		"eligible":  len(recommendations),
		"category":  input.SelectedCategory,
	})

	return &Output{
		Recommendations: recommendations,
		EligibleCount:   len(recommendations),
		EvaluatedCount:  len(input.Products),
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
