// internal/workers/lead/replace-recommendations/models.go
package replacerecommendations

type RecommendationInput struct {
	ProductID string `json:"productId"`
	Rank      int    `json:"rank"`
	Score     int    `json:"score"`
}

type Input struct {
	SubmissionID    string                `json:"submissionId"`
	Recommendations []RecommendationInput `json:"recommendations"`
}

type Output struct {
	SubmissionID string `json:"submissionId"`
	StoredCount  int    `json:"recommendationsStored"`
}
