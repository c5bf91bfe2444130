// internal/workers/catalog/record-click-event/models.go
package recordclickevent

type Input struct {
	SubmissionID string                 `json:"submissionId"`
	ProductID    string                 `json:"productId"`
	LenderName   string                 `json:"lenderName,omitempty"`
	Context      map[string]interface{} `json:"clickContext,omitempty"`
}

type Output struct {
	Recorded bool   `json:"clickRecorded"`
	ClickID  string `json:"clickId,omitempty"`
}
