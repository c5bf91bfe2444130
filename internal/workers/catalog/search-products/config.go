// internal/workers/catalog/search-products/config.go
package searchproducts

import "time"

type Config struct {
	Index   string
	MaxHits int
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Index:   "products",
		MaxHits: 50,
		Timeout: 10 * time.Second,
	}
}
