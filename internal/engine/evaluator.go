// internal/engine/evaluator.go
package engine

import (
	"sort"
	"strings"
)

// Recommendation pairs one catalog product with its evaluation result.
type Recommendation struct {
	Product *Product `json:"product"`
	Result  Result   `json:"result"`
}

// Evaluate runs the whole catalog for one applicant: filter by the
// selected category, dispatch each product to its strategy, drop
// ineligible results, and rank the rest by score descending. The sort is
// stable, so equal scores keep catalog order. Pure function of its
// inputs; safe to run concurrently for different profiles.
func Evaluate(catalog []*Product, profile *Profile, selectedCategory string) []Recommendation {
	var out []Recommendation
	for _, p := range catalog {
		if p == nil || !categoryMatches(p.Category, selectedCategory) {
			continue
		}
		result := StrategyFor(p.Category).Evaluate(p, profile)
		if !result.Eligible {
			continue
		}
		out = append(out, Recommendation{Product: p, Result: result})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Result.Score > out[j].Result.Score
	})
	return out
}

// categoryMatches applies the selection heuristics: a card selection
// matches card-like categories, a personal selection matches
// loan/personal/consumption categories, and no selection matches all.
func categoryMatches(category, selected string) bool {
	k := strings.ToLower(category)
	switch strings.ToLower(strings.TrimSpace(selected)) {
	case "":
		return true
	case "card", "tarjeta":
		return strings.Contains(k, "card") || strings.Contains(k, "tarjeta")
	case "personal":
		return strings.Contains(k, "loan") || strings.Contains(k, "personal") || strings.Contains(k, "consumo")
	default:
		return true
	}
}
