// internal/workers/lead/send-lead-notification/config.go
package sendleadnotification

import "time"

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	OpsEmail     string
	OpsPhone     string
	AWSRegion    string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   false,
		FromEmail:    "noreply@loanmatch.mx",
		OpsEmail:     "leads@loanmatch.mx",
		AWSRegion:    "us-east-1",
		Timeout:      30 * time.Second,
	}
}
