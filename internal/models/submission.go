// internal/models/submission.go
package models

import "time"

// Submission is a stored lead submission, unique on (email, phone).
type Submission struct {
	ID           string                 `json:"id"`
	Answers      map[string]interface{} `json:"answers"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Consent      bool                   `json:"consent"`
	RegisteredAt string                 `json:"registeredAt,omitempty"`
	Source       string                 `json:"source,omitempty"`
	UTM          map[string]string      `json:"utm,omitempty"`
	UserAgent    string                 `json:"userAgent,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// Recommendation is one ranked product stored for a submission.
type Recommendation struct {
	SubmissionID string `json:"submissionId"`
	ProductID    string `json:"productId"`
	Rank         int    `json:"rank"`
	Score        int    `json:"score"`
}

// ClickEvent records one outbound CTA click.
type ClickEvent struct {
	ID           string                 `json:"id"`
	SubmissionID string                 `json:"submissionId"`
	ProductID    string                 `json:"productId"`
	Context      map[string]interface{} `json:"context,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}
