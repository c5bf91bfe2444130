// internal/engine/score_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func flex(v float64) *FlexNumber {
	n := FlexNumber(v)
	return &n
}

// referenceProduct mirrors a typical personal-loan catalog entry:
// ages 18-70, 10k minimum income, 0.5 DTI ceiling, some history required,
// 50k cap over 36 months, consumption purpose boosted.
func referenceProduct() *Product {
	return &Product{
		ID:       "loan-ref",
		Name:     "Reference Personal Loan",
		Category: "personal_loan",
		Requirements: &Requirements{
			AgeMin:     fptr(18),
			AgeMax:     fptr(70),
			IncomeMin:  fptr(10000),
			DTIMax:     fptr(0.5),
			HistoryMin: iptr(1),
		},
		Limits: &Limits{
			MaxAmount: flex(50000),
			MaxTerm:   flex(36),
		},
		Weights: &Weights{Purpose: map[string]float64{"consumo": 0.6}},
	}
}

func referenceProfile() *Profile {
	return &Profile{
		Age:             30,
		MonthlyIncome:   15000,
		MonthlyDebt:     2000,
		RequestedAmount: 40000,
		RequestedTerm:   24,
		CreditHistory:   "good",
		EmploymentType:  "payroll",
		TenureMonths:    12,
		Purpose:         "consumo",
	}
}

func TestScoreProduct_ReferenceScenario(t *testing.T) {
	result := scoreProduct(referenceProduct(), referenceProfile())

	assert.True(t, result.Eligible)
	assert.Equal(t, 81, result.Score)
	assert.Equal(t, []string{
		ReasonStrongIncome,
		ReasonHealthyDTI,
		ReasonStrongHistory,
	}, result.Reasons)
}

func TestScoreProduct_GateFailures(t *testing.T) {
	tests := []struct {
		name            string
		mutate          func(*Profile)
		expectedReasons []string
	}{
		{
			name:            "age below range",
			mutate:          func(p *Profile) { p.Age = 15 },
			expectedReasons: []string{ReasonAgeOutOfRange},
		},
		{
			name:            "age above range",
			mutate:          func(p *Profile) { p.Age = 75 },
			expectedReasons: []string{ReasonAgeOutOfRange},
		},
		{
			name:            "income below minimum",
			mutate:          func(p *Profile) { p.MonthlyIncome = 8000 },
			expectedReasons: []string{ReasonIncomeBelowMinimum},
		},
		{
			name:            "insufficient history",
			mutate:          func(p *Profile) { p.CreditHistory = "none" },
			expectedReasons: []string{ReasonInsufficientHistory},
		},
		{
			name: "multiple failures keep fixed order",
			mutate: func(p *Profile) {
				p.Age = 15
				p.MonthlyIncome = 0
				p.CreditHistory = "none"
			},
			expectedReasons: []string{ReasonAgeOutOfRange, ReasonIncomeBelowMinimum, ReasonInsufficientHistory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := referenceProfile()
			tt.mutate(profile)

			result := scoreProduct(referenceProduct(), profile)

			assert.False(t, result.Eligible)
			assert.Equal(t, 0, result.Score)
			assert.Equal(t, tt.expectedReasons, result.Reasons)
		})
	}
}

func TestScoreProduct_EmploymentGates(t *testing.T) {
	product := referenceProduct()
	product.Requirements.EmploymentAllowed = []string{"payroll", "mixed"}
	product.Requirements.EmploymentDisallowedSubtype = map[string][]string{
		"payroll": {"platform"},
	}
	product.Requirements.MinJobTenureMonths = fptr(6)
	product.Requirements.MinJobTenureMonthsByEmployment = map[string]float64{"mixed": 24}
	product.Requirements.StatesAllowed = []string{"CDMX", "JAL"}
	product.Requirements.PurposeRequired = "consumo"

	t.Run("allowed profile passes", func(t *testing.T) {
		profile := referenceProfile()
		profile.EmploymentSubtype = "traditional"
		profile.State = "CDMX"

		result := scoreProduct(product, profile)
		assert.True(t, result.Eligible)
	})

	t.Run("disallowed employment type", func(t *testing.T) {
		profile := referenceProfile()
		profile.State = "CDMX"
		profile.EmploymentType = "informal"

		result := scoreProduct(product, profile)
		assert.False(t, result.Eligible)
		// informal also misses the per-employment tenure lookup, falling
		// back to the flat 6-month floor which 12 months satisfies.
		assert.Equal(t, []string{ReasonEmploymentNotAllowed}, result.Reasons)
	})

	t.Run("disallowed subtype", func(t *testing.T) {
		profile := referenceProfile()
		profile.State = "CDMX"
		profile.EmploymentSubtype = "platform"

		result := scoreProduct(product, profile)
		assert.False(t, result.Eligible)
		assert.Equal(t, []string{ReasonSubtypeNotAllowed}, result.Reasons)
	})

	t.Run("per-employment tenure override", func(t *testing.T) {
		profile := referenceProfile()
		profile.State = "CDMX"
		profile.EmploymentType = "mixed"
		profile.TenureMonths = 12 // below the 24-month override for mixed

		result := scoreProduct(product, profile)
		assert.False(t, result.Eligible)
		assert.Equal(t, []string{ReasonInsufficientTenure}, result.Reasons)
	})

	t.Run("state not allowed", func(t *testing.T) {
		profile := referenceProfile()
		profile.State = "NL"

		result := scoreProduct(product, profile)
		assert.False(t, result.Eligible)
		assert.Equal(t, []string{ReasonStateNotEligible}, result.Reasons)
	})

	t.Run("purpose mismatch", func(t *testing.T) {
		profile := referenceProfile()
		profile.State = "CDMX"
		profile.Purpose = "auto"

		result := scoreProduct(product, profile)
		assert.False(t, result.Eligible)
		assert.Equal(t, []string{ReasonPurposeMismatch}, result.Reasons)
	})
}

func TestScoreProduct_IncomeMinByEmployment(t *testing.T) {
	product := referenceProduct()
	product.Requirements.IncomeMinByEmployment = map[string]float64{"independent": 20000}

	profile := referenceProfile()
	profile.EmploymentType = "independent"
	profile.MonthlyIncome = 15000 // above the flat 10k, below the override

	result := scoreProduct(product, profile)
	assert.False(t, result.Eligible)
	assert.Equal(t, []string{ReasonIncomeBelowMinimum}, result.Reasons)
}

// The DTI ceiling is a post-score gate: the applicant clears every hard
// predicate, gets a real score, and is rejected with the score intact.
func TestScoreProduct_DTIGatesAfterScoring(t *testing.T) {
	product := referenceProduct()
	product.Requirements.IncomeMin = fptr(0)
	product.Requirements.HistoryMin = iptr(0)

	profile := referenceProfile()
	profile.MonthlyIncome = 0
	profile.MonthlyDebt = 0
	profile.CreditHistory = "none"
	profile.Purpose = "unknown"

	result := scoreProduct(product, profile)

	// income 5 (no minimum) + purpose 15 (default 0.5 weight) + dti 0
	// (forced DTI 1 over ceiling 0.5) + history 0 + amount 10 + term 10
	assert.False(t, result.Eligible)
	assert.Equal(t, 40, result.Score)
	require.NotEmpty(t, result.Reasons)
	assert.Equal(t, ReasonHighDTI, result.Reasons[len(result.Reasons)-1])
}

func TestScoreProduct_DTISubScoreMonotonic(t *testing.T) {
	prev := 101
	for debt := 0.0; debt <= 8000; debt += 500 {
		profile := referenceProfile()
		profile.MonthlyDebt = FlexNumber(debt)

		result := scoreProduct(referenceProduct(), profile)
		assert.LessOrEqual(t, result.Score, prev, "score must not increase with debt %v", debt)
		prev = result.Score
	}
}

func TestScoreProduct_ScoreBounds(t *testing.T) {
	profiles := []*Profile{
		{},
		{Age: 30, MonthlyIncome: 1e9, CreditHistory: "excellent", Purpose: "consumo"},
		{Age: 30, MonthlyIncome: 10000, MonthlyDebt: 1e9, CreditHistory: "good"},
		{Age: 200, RequestedAmount: 1e12, RequestedTerm: 1e6},
	}
	product := &Product{ID: "defaults", Category: "personal"}

	for _, profile := range profiles {
		result := scoreProduct(product, profile)
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
	}
}

func TestScoreProduct_AmountAndTermFalloff(t *testing.T) {
	t.Run("amount inside cap earns full contribution", func(t *testing.T) {
		base := scoreProduct(referenceProduct(), referenceProfile())

		over := referenceProfile()
		over.RequestedAmount = 60000 // 20% over the 50k cap
		overshoot := scoreProduct(referenceProduct(), over)

		assert.Less(t, overshoot.Score, base.Score)
	})

	t.Run("amount well within a finite cap is highlighted", func(t *testing.T) {
		profile := referenceProfile()
		profile.RequestedAmount = 20000 // under 60% of the 50k cap

		result := scoreProduct(referenceProduct(), profile)
		assert.Contains(t, result.Reasons, ReasonAmountWithinLimit)
	})

	t.Run("unbounded amount never earns the highlight", func(t *testing.T) {
		product := referenceProduct()
		product.Limits = nil

		result := scoreProduct(product, referenceProfile())
		assert.True(t, result.Eligible)
		assert.NotContains(t, result.Reasons, ReasonAmountWithinLimit)
	})

	t.Run("revolving product takes the flat term contribution", func(t *testing.T) {
		card := referenceProduct()
		card.Category = "credit_card"
		card.Limits = &Limits{MaxAmount: flex(50000)} // no term concept

		withTerm := scoreProduct(referenceProduct(), referenceProfile())
		revolving := scoreProduct(card, referenceProfile())

		// flat 5 for the missing term vs full 10 for a term inside the cap
		assert.Equal(t, withTerm.Score-5, revolving.Score)
	})
}

func TestScoreProduct_NilConfigurationIsAllDefaults(t *testing.T) {
	product := &Product{ID: "bare", Category: "personal"}
	profile := referenceProfile()

	result := scoreProduct(product, profile)

	// Gate passes on defaults; DTI 0.133 under default ceiling 1.
	assert.True(t, result.Eligible)
	assert.GreaterOrEqual(t, result.Score, 0)
	assert.LessOrEqual(t, result.Score, 100)
}
