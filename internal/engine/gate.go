// internal/engine/gate.go
package engine

// Rejection reasons, one per gate predicate, emitted in predicate order.
const (
	ReasonAgeOutOfRange        = "age outside allowed range"
	ReasonIncomeBelowMinimum   = "income below required minimum"
	ReasonInsufficientHistory  = "insufficient credit history"
	ReasonEmploymentNotAllowed = "employment type not allowed"
	ReasonSubtypeNotAllowed    = "employment subtype not allowed"
	ReasonInsufficientTenure   = "insufficient job tenure"
	ReasonStateNotEligible     = "state not eligible"
	ReasonPurposeMismatch      = "purpose does not match product"
)

// evaluateGate runs the eight hard admission predicates in fixed order.
// DTI is deliberately absent here: it gates only after scoring, so
// near-miss applicants still receive a computed score.
func evaluateGate(r *Requirements, profile *Profile) (bool, []string) {
	age := float64(profile.Age)
	income := float64(profile.MonthlyIncome)
	tenure := float64(profile.TenureMonths)

	ageOk := age >= r.ageMin() && age <= r.ageMax()
	incomeOk := income >= r.effectiveIncomeMin(profile.EmploymentType)
	historyOk := HistoryRank(profile.CreditHistory) >= r.historyMin()
	employmentOk := employmentAllowed(r, profile.EmploymentType)
	subtypeOk := !contains(r.disallowedSubtypes(profile.EmploymentType), profile.EmploymentSubtype)

	tenureMin := r.effectiveTenureMin(profile.EmploymentType)
	tenureOk := tenureMin == 0 || tenure >= tenureMin

	stateOk := true
	if r != nil && len(r.StatesAllowed) > 0 {
		stateOk = contains(r.StatesAllowed, profile.State)
	}

	purposeOk := true
	if r != nil && r.PurposeRequired != "" {
		purposeOk = profile.Purpose == r.PurposeRequired
	}

	if ageOk && incomeOk && historyOk && employmentOk && subtypeOk && tenureOk && stateOk && purposeOk {
		return true, nil
	}

	var reasons []string
	appendIf := func(failed bool, reason string) {
		if failed {
			reasons = append(reasons, reason)
		}
	}
	appendIf(!ageOk, ReasonAgeOutOfRange)
	appendIf(!incomeOk, ReasonIncomeBelowMinimum)
	appendIf(!historyOk, ReasonInsufficientHistory)
	appendIf(!employmentOk, ReasonEmploymentNotAllowed)
	appendIf(!subtypeOk, ReasonSubtypeNotAllowed)
	appendIf(!tenureOk, ReasonInsufficientTenure)
	appendIf(!stateOk, ReasonStateNotEligible)
	appendIf(!purposeOk, ReasonPurposeMismatch)
	return false, reasons
}

func employmentAllowed(r *Requirements, employment string) bool {
	if r == nil || len(r.EmploymentAllowed) == 0 {
		return true
	}
	return contains(r.EmploymentAllowed, employment)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
