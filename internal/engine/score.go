// internal/engine/score.go
package engine

import "math"

// Positive highlights, emitted in sub-score order, plus the post-score
// DTI rejection appended last when the risk gate fails.
const (
	ReasonStrongIncome      = "strong income for profile"
	ReasonHealthyDTI        = "healthy debt-to-income management"
	ReasonStrongHistory     = "strong credit history"
	ReasonAmountWithinLimit = "requested amount comfortably within limit"
	ReasonHighDTI           = "high debt-to-income ratio"
)

// scoreProduct is the shared evaluation core behind every strategy:
// the hard gate first, then the 0-100 composite built from the income,
// purpose-weight, DTI, history, amount, and term contributions. The DTI
// ceiling is enforced only after the composite is computed, so a result
// can carry a real score and still be ineligible.
func scoreProduct(p *Product, profile *Profile) Result {
	r := p.Requirements

	if ok, reasons := evaluateGate(r, profile); !ok {
		return Result{Eligible: false, Score: 0, Reasons: reasons}
	}

	income := float64(profile.MonthlyIncome)
	debt := float64(profile.MonthlyDebt)
	amount := float64(profile.RequestedAmount)
	term := float64(profile.RequestedTerm)

	score := 0.0
	var reasons []string

	// Income headroom over the effective minimum, 0-10 around a midpoint
	// of 5 at exactly the minimum. No minimum configured scores flat 5.
	incomeMin := r.effectiveIncomeMin(profile.EmploymentType)
	if incomeMin > 0 {
		ratio := income / incomeMin
		score += clamp(math.Round(5+(ratio-1)*5), 0, 10)
		if ratio >= 1.5 {
			reasons = append(reasons, ReasonStrongIncome)
		}
	} else {
		score += 5
	}

	// Purpose affinity, 30 x weight, defaulting to 0.5 for unknown purposes.
	score += 30 * p.Weights.purposeWeight(profile.Purpose)

	// Debt burden relative to the product's DTI ceiling.
	dti := DebtToIncome(income, debt)
	dtiMax := r.dtiMax()
	score += math.Max(0, 25*(1-dti/dtiMax))
	if dti <= dtiMax*0.7 {
		reasons = append(reasons, ReasonHealthyDTI)
	}

	// Credit history, linear over the 0-3 rank table.
	histRatio := float64(HistoryRank(profile.CreditHistory)) / HistoryRankMax
	score += 25 * histRatio
	if histRatio >= 0.66 {
		reasons = append(reasons, ReasonStrongHistory)
	}

	// Requested amount against the cap: full 10 inside the cap, linear
	// falloff over a 50% overshoot window beyond it.
	maxAmount := p.Limits.maxAmount()
	amountScore := 10.0
	if amount > maxAmount {
		amountScore = math.Max(0, 10-((amount-maxAmount)/(maxAmount*0.5))*10)
	}
	if !math.IsNaN(amountScore) && !math.IsInf(amountScore, 0) {
		score += amountScore
	}
	if !math.IsInf(maxAmount, 1) && amount <= 0.6*maxAmount {
		reasons = append(reasons, ReasonAmountWithinLimit)
	}

	// Requested term against the cap, same shape; products without a term
	// concept (revolving credit) take a flat 5.
	maxTerm := p.Limits.maxTerm()
	if maxTerm > 0 {
		if term <= maxTerm {
			score += 10
		} else {
			score += math.Max(0, 10-((term-maxTerm)/maxTerm)*10)
		}
	} else {
		score += 5
	}

	final := int(math.Round(clamp(score, 0, 100)))

	eligible := dti <= dtiMax
	if !eligible {
		reasons = append(reasons, ReasonHighDTI)
	}
	return Result{Eligible: eligible, Score: final, Reasons: reasons}
}
