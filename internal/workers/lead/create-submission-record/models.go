// internal/workers/lead/create-submission-record/models.go
package createsubmissionrecord

type Input struct {
	Answers      map[string]interface{} `json:"answers"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Consent      bool                   `json:"consent"`
	RegisteredAt string                 `json:"registeredAt,omitempty"`
	Source       string                 `json:"source,omitempty"`
	UTM          map[string]string      `json:"utm,omitempty"`
	UserAgent    string                 `json:"userAgent,omitempty"`
}

type Output struct {
	SubmissionID string `json:"submissionId"`
	Created      bool   `json:"submissionCreated"`
}
