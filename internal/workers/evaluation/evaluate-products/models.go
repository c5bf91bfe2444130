// internal/workers/evaluation/evaluate-products/models.go
package evaluateproducts

import "loanmatch-workers/internal/engine"

type Input struct {
	Profile          *engine.Profile   `json:"normalizedProfile"`
	Products         []*engine.Product `json:"products"`
	SelectedCategory string            `json:"selectedCategory,omitempty"`
}

// RankedProduct is one eligible product in presentation order.
type RankedProduct struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	LenderID    string          `json:"lenderId,omitempty"`
	LenderName  string          `json:"lenderName,omitempty"`
	Rank        int             `json:"rank"`
	Score       int             `json:"score"`
	Reasons     []string        `json:"reasons"`
	Product     *engine.Product `json:"product"`
}

type Output struct {
	Recommendations []RankedProduct `json:"recommendations"`
	EligibleCount   int             `json:"eligibleCount"`
	EvaluatedCount  int             `json:"evaluatedCount"`
}
