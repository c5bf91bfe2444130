// internal/workers/lead/validate-lead-profile/models.go
package validateleadprofile

import "loanmatch-workers/internal/engine"

type Input struct {
	Profile map[string]interface{} `json:"profile"`
}

type Output struct {
	Valid             bool            `json:"profileValid"`
	ValidationErrors  []string        `json:"validationErrors,omitempty"`
	NormalizedProfile *engine.Profile `json:"normalizedProfile,omitempty"`
}
