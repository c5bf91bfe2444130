// internal/models/catalog.go
package models

import (
	"database/sql"
	"encoding/json"

	"loanmatch-workers/internal/engine"
)

// ProductRow is the products+lenders join row as stored in PostgreSQL.
// The jsonb columns carry the rule configuration the engine consumes.
type ProductRow struct {
	ID               string
	LenderID         string
	Name             string
	Description      sql.NullString
	Category         string
	Active           bool
	Requirements     []byte
	Limits           []byte
	Weights          []byte
	ExternalApplyURL sql.NullString

	LenderName           string
	LenderActive         bool
	LenderBrandColor     sql.NullString
	LenderWebsite        sql.NullString
	LenderReferralURL    sql.NullString
	LenderReferralParams []byte
}

// ToEngineProduct converts a database row into the engine's product shape.
// Malformed jsonb leaves the corresponding config nil, which the engine
// treats as all-defaults rather than an error.
func (r *ProductRow) ToEngineProduct() *engine.Product {
	p := &engine.Product{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description.String,
		Category:         r.Category,
		Active:           r.Active,
		ExternalApplyURL: r.ExternalApplyURL.String,
		Lender: &engine.Lender{
			ID:          r.LenderID,
			Name:        r.LenderName,
			Active:      r.LenderActive,
			BrandColor:  r.LenderBrandColor.String,
			Website:     r.LenderWebsite.String,
			ReferralURL: r.LenderReferralURL.String,
		},
	}

	if len(r.Requirements) > 0 {
		var req engine.Requirements
		if err := json.Unmarshal(r.Requirements, &req); err == nil {
			p.Requirements = &req
		}
	}
	if len(r.Limits) > 0 {
		var lim engine.Limits
		if err := json.Unmarshal(r.Limits, &lim); err == nil {
			p.Limits = &lim
		}
	}
	if len(r.Weights) > 0 {
		var w engine.Weights
		if err := json.Unmarshal(r.Weights, &w); err == nil {
			p.Weights = &w
		}
	}
	if len(r.LenderReferralParams) > 0 {
		var params map[string]interface{}
		if err := json.Unmarshal(r.LenderReferralParams, &params); err == nil {
			p.Lender.ReferralParams = params
		}
	}

	return p
}
