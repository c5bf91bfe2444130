// internal/engine/strategy.go
package engine

import "strings"

// Strategy is the per-category evaluation behavior. Both current
// variants delegate to the shared scoring core; the split is the
// extension point for category-specific rules, so adding a divergent
// category must not touch the orchestration loop.
type Strategy interface {
	Evaluate(p *Product, profile *Profile) Result
}

// PersonalLoanStrategy evaluates installment products. Default variant.
type PersonalLoanStrategy struct{}

func (PersonalLoanStrategy) Evaluate(p *Product, profile *Profile) Result {
	return scoreProduct(p, profile)
}

// CreditCardStrategy evaluates revolving products. Cards usually carry
// no rigid amount or term; the shared core already handles both shapes.
type CreditCardStrategy struct{}

func (CreditCardStrategy) Evaluate(p *Product, profile *Profile) Result {
	return scoreProduct(p, profile)
}

// StrategyFor dispatches on the product's declared category. Catalogs in
// the wild carry both English and Spanish tokens.
func StrategyFor(category string) Strategy {
	c := strings.ToLower(category)
	if strings.Contains(c, "card") || strings.Contains(c, "tarjeta") {
		return CreditCardStrategy{}
	}
	return PersonalLoanStrategy{}
}
