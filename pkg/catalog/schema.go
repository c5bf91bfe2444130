// pkg/catalog/schema.go
package catalog

// SeedFile is the on-disk catalog format consumed by the seeder and ops
// tooling. Lenders come first; products reference them by lender id.
type SeedFile struct {
	Version string       `json:"version"`
	Lenders []SeedLender `json:"lenders"`
}

type SeedLender struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Active         bool                   `json:"active"`
	BrandColor     string                 `json:"brand_color,omitempty"`
	Website        string                 `json:"website,omitempty"`
	ReferralURL    string                 `json:"referral_url,omitempty"`
	ReferralParams map[string]interface{} `json:"referral_params,omitempty"`
	Products       []SeedProduct          `json:"products"`
}

type SeedProduct struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description,omitempty"`
	Type             string                 `json:"type"`
	Active           bool                   `json:"active"`
	Requirements     map[string]interface{} `json:"requirements,omitempty"`
	Limits           map[string]interface{} `json:"limits,omitempty"`
	Weights          map[string]interface{} `json:"weights,omitempty"`
	ExternalApplyURL string                 `json:"external_apply_url,omitempty"`
}

// seedSchema guards the structural shape of the seed file. Requirement
// and limit values stay loosely typed: the engine tolerates string
// numerics, so the schema does too.
const seedSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["lenders"],
	"properties": {
		"version": {"type": "string"},
		"lenders": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "name", "products"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"name": {"type": "string", "minLength": 1},
					"active": {"type": "boolean"},
					"brand_color": {"type": "string"},
					"website": {"type": "string"},
					"referral_url": {"type": "string"},
					"referral_params": {"type": "object"},
					"products": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["id", "name", "type"],
							"properties": {
								"id": {"type": "string", "minLength": 1},
								"name": {"type": "string", "minLength": 1},
								"type": {"type": "string", "minLength": 1},
								"active": {"type": "boolean"},
								"requirements": {"type": "object"},
								"limits": {"type": "object"},
								"weights": {"type": "object"},
								"external_apply_url": {"type": "string"}
							}
						}
					}
				}
			}
		}
	}
}`
