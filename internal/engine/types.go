// internal/engine/types.go
package engine

import "math"

// Product is one evaluable catalog entry. Requirements, Limits, and
// Weights are optional JSONB blobs on the catalog row; a nil pointer is
// an all-defaults configuration, never an error.
type Product struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	Category         string        `json:"type"`
	Active           bool          `json:"active"`
	Requirements     *Requirements `json:"requirements,omitempty"`
	Limits           *Limits       `json:"limits,omitempty"`
	Weights          *Weights      `json:"weights,omitempty"`
	ExternalApplyURL string        `json:"external_apply_url,omitempty"`
	Lender           *Lender       `json:"lender,omitempty"`
}

// Lender is the institution behind a product, carried for referral
// resolution and presentation; the engine itself never reads it.
type Lender struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Active         bool                   `json:"active"`
	BrandColor     string                 `json:"brand_color,omitempty"`
	Website        string                 `json:"website,omitempty"`
	ReferralURL    string                 `json:"referral_url,omitempty"`
	ReferralParams map[string]interface{} `json:"referral_params,omitempty"`
}

// Requirements holds the admission rules for a product. Every field is
// optional; the accessor methods apply the documented defaults so the
// gate and scorer never touch raw pointers.
type Requirements struct {
	AgeMin                         *float64            `json:"age_min,omitempty"`
	AgeMax                         *float64            `json:"age_max,omitempty"`
	IncomeMin                      *float64            `json:"income_min,omitempty"`
	IncomeMinByEmployment          map[string]float64  `json:"income_min_by_employment,omitempty"`
	DTIMax                         *float64            `json:"dti_max,omitempty"`
	HistoryMin                     *int                `json:"history_min,omitempty"`
	EmploymentAllowed              []string            `json:"employment_allowed,omitempty"`
	EmploymentDisallowedSubtype    map[string][]string `json:"employment_disallowed_subtype,omitempty"`
	MinJobTenureMonths             *float64            `json:"min_job_tenure_months,omitempty"`
	MinJobTenureMonthsByEmployment map[string]float64  `json:"min_job_tenure_months_by_employment,omitempty"`
	StatesAllowed                  []string            `json:"states_allowed,omitempty"`
	PurposeRequired                string              `json:"purpose_required,omitempty"`
}

func (r *Requirements) ageMin() float64 {
	if r == nil || r.AgeMin == nil {
		return 0
	}
	return *r.AgeMin
}

func (r *Requirements) ageMax() float64 {
	if r == nil || r.AgeMax == nil {
		return 200
	}
	return *r.AgeMax
}

// effectiveIncomeMin resolves the per-employment override, then the flat
// minimum, then 0.
func (r *Requirements) effectiveIncomeMin(employment string) float64 {
	if r == nil {
		return 0
	}
	if v, ok := r.IncomeMinByEmployment[employment]; ok {
		return v
	}
	if r.IncomeMin != nil {
		return *r.IncomeMin
	}
	return 0
}

func (r *Requirements) dtiMax() float64 {
	if r == nil || r.DTIMax == nil {
		return 1
	}
	return *r.DTIMax
}

func (r *Requirements) historyMin() int {
	if r == nil || r.HistoryMin == nil {
		return 0
	}
	return *r.HistoryMin
}

// effectiveTenureMin resolves the per-employment override, then the flat
// value, then 0 (no tenure requirement).
func (r *Requirements) effectiveTenureMin(employment string) float64 {
	if r == nil {
		return 0
	}
	if v, ok := r.MinJobTenureMonthsByEmployment[employment]; ok {
		return v
	}
	if r.MinJobTenureMonths != nil {
		return *r.MinJobTenureMonths
	}
	return 0
}

func (r *Requirements) disallowedSubtypes(employment string) []string {
	if r == nil {
		return nil
	}
	return r.EmploymentDisallowedSubtype[employment]
}

// Limits caps the requested amount and term. Absent max_amount means
// unbounded; max_term 0 means the product has no term concept (revolving).
type Limits struct {
	MaxAmount *FlexNumber `json:"max_amount,omitempty"`
	MaxTerm   *FlexNumber `json:"max_term,omitempty"`
}

func (l *Limits) maxAmount() float64 {
	if l == nil || l.MaxAmount == nil {
		return math.Inf(1)
	}
	return float64(*l.MaxAmount)
}

func (l *Limits) maxTerm() float64 {
	if l == nil || l.MaxTerm == nil {
		return 0
	}
	return float64(*l.MaxTerm)
}

// Weights carries per-purpose scoring weights in (0,1].
type Weights struct {
	Purpose map[string]float64 `json:"purpose,omitempty"`
}

const defaultPurposeWeight = 0.5

func (w *Weights) purposeWeight(purpose string) float64 {
	if w == nil || w.Purpose == nil {
		return defaultPurposeWeight
	}
	if v, ok := w.Purpose[purpose]; ok {
		return v
	}
	return defaultPurposeWeight
}

// Profile is the normalized applicant input. Numeric fields tolerate
// string-formatted or missing values (FlexNumber), so a half-filled form
// still evaluates instead of erroring.
type Profile struct {
	Age               FlexNumber `json:"age"`
	MonthlyIncome     FlexNumber `json:"monthlyIncome"`
	MonthlyDebt       FlexNumber `json:"monthlyDebt"`
	RequestedAmount   FlexNumber `json:"requestedAmount"`
	RequestedTerm     FlexNumber `json:"requestedTerm"`
	CreditHistory     string     `json:"creditHistory"`
	EmploymentType    string     `json:"employmentType"`
	EmploymentSubtype string     `json:"employmentSubtype,omitempty"`
	TenureMonths      FlexNumber `json:"tenureMonths"`
	State             string     `json:"state,omitempty"`
	Purpose           string     `json:"purpose,omitempty"`
	// CardType is collected with the form but not consumed by scoring.
	CardType string `json:"cardType,omitempty"`
}

// Result is the outcome of evaluating one product for one profile.
// Reasons holds either rejection reasons or positive highlights, never
// both, in the fixed evaluation order.
type Result struct {
	Eligible bool     `json:"eligible"`
	Score    int      `json:"score"`
	Reasons  []string `json:"reasons"`
}
