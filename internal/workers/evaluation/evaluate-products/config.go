// internal/workers/evaluation/evaluate-products/config.go
package evaluateproducts

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
