// internal/workers/lead/send-lead-notification/models.go
package sendleadnotification

type Input struct {
	SubmissionID        string                 `json:"submissionId"`
	NotificationType    string                 `json:"notificationType"`
	LeadEmail           string                 `json:"email,omitempty"`
	RecommendationCount int                    `json:"recommendationsStored,omitempty"`
	Priority            string                 `json:"priority,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"notificationStatus"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"`             // ISO 8601
}

// Notification types
const (
	TypeNewLead   = "new_lead"
	TypeNoMatches = "no_matches"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
