// internal/workers/lead/build-referral-url/config.go
package buildreferralurl

import "time"

type Config struct {
	// SubmissionParam and ProductParam are the tracking query parameters
	// appended to every resolved referral URL.
	SubmissionParam string
	ProductParam    string
	DefaultUTM      map[string]string
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		SubmissionParam: "lm_submission_id",
		ProductParam:    "lm_product_id",
		DefaultUTM: map[string]string{
			"utm_source": "loanmatch",
			"utm_medium": "referral",
		},
		Timeout: 5 * time.Second,
	}
}
