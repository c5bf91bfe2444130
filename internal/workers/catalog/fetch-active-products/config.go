// internal/workers/catalog/fetch-active-products/config.go
package fetchactiveproducts

import "time"

type Config struct {
	CacheKey string
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheKey: "catalog:active-products",
		CacheTTL: 5 * time.Minute,
		Timeout:  10 * time.Second,
	}
}
