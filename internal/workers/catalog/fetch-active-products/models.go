// internal/workers/catalog/fetch-active-products/models.go
package fetchactiveproducts

import "loanmatch-workers/internal/engine"

type Input struct {
	// BypassCache forces a database read, refreshing the cached catalog.
	BypassCache bool `json:"bypassCache,omitempty"`
}

type Output struct {
	Products  []*engine.Product `json:"products"`
	Count     int               `json:"productCount"`
	FromCache bool              `json:"fromCache"`
}
