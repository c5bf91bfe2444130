// internal/workers/catalog/search-products/query.go
package searchproducts

// buildSearchQuery assembles the product search body. Inactive products
// and lenders never surface on the browse index.
func buildSearchQuery(input *Input) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"active": true},
		},
		map[string]interface{}{
			"term": map[string]interface{}{"lender.active": true},
		},
	}

	if input.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  input.Keywords,
				"fields": []string{"name^3", "description^2", "lender.name^2", "type"},
				"type":   "best_fields",
			},
		})
	}

	if input.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"type": input.Category},
		})
	}

	if input.Lender != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"lender.id": input.Lender},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{
			"match_all": map[string]interface{}{},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
	}
}
