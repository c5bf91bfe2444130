// internal/workers/catalog/search-products/models.go
package searchproducts

type Input struct {
	Keywords string `json:"keywords,omitempty"`
	Category string `json:"category,omitempty"`
	Lender   string `json:"lender,omitempty"`
	From     int    `json:"from,omitempty"`
	Size     int    `json:"size,omitempty"`
}

type Hit struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"searchScore"`
	Document map[string]interface{} `json:"document"`
}

type Output struct {
	Hits      []Hit `json:"hits"`
	TotalHits int   `json:"totalHits"`
	Took      int   `json:"took"`
}
