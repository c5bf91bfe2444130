// internal/workers/lead/build-referral-url/models.go
package buildreferralurl

import "loanmatch-workers/internal/engine"

type Input struct {
	SubmissionID string            `json:"submissionId"`
	Product      *engine.Product   `json:"product"`
	SessionUTM   map[string]string `json:"utm,omitempty"`
}

type Output struct {
	ReferralURL string `json:"referralUrl"`
	// Source names which configuration produced the URL: "product" for
	// the product's own apply URL, "lender" for the lender redirect.
	Source string `json:"referralSource"`
}
