// internal/workers/lead/validate-lead-profile/handler.go
package validateleadprofile

import (
	"context"
	"encoding/json"
	"fmt"

	"loanmatch-workers/internal/common/logger"
	"loanmatch-workers/internal/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "validate-lead-profile"
)

// profileSchema is intentionally loose on numerics: the engine normalizes
// string-formatted numbers itself. Validation only flags structural
// problems a normalizer cannot repair.
const profileSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["email", "phone", "consent"],
	"properties": {
		"email": {
			"type": "string",
			"pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$"
		},
		"phone": {
			"type": "string",
			"minLength": 7
		},
		"consent": {
			"type": "boolean",
			"const": true
		},
		"creditHistory": {
			"type": "string",
			"enum": ["", "none", "limited", "good", "excellent"]
		},
		"employmentType": {
			"type": "string"
		}
	}
}`

type Handler struct {
	config *Config
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
	if err != nil {
		return nil, fmt.Errorf("compile profile schema: %w", err)
	}
	return &Handler{
		config: config,
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
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
		h.failJob(client, job, "PROFILE_VALIDATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Profile == nil {
		return &Output{
			Valid:            false,
			ValidationErrors: []string{"profile is missing"},
		}, nil
	}

	result, err := h.schema.Validate(gojsonschema.NewGoLoader(input.Profile))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		h.logger.Info("profile rejected", map[string]interface{}{
			"errors": errs,
		})
		return &Output{Valid: false, ValidationErrors: errs}, nil
	}

	// Round-trip through JSON so FlexNumber absorbs string-formatted
	// numerics into a clean engine profile.
	raw, err := json.Marshal(input.Profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	var profile engine.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("normalize profile: %w", err)
	}

	return &Output{Valid: true, NormalizedProfile: &profile}, nil
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
