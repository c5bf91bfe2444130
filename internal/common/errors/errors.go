// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Catalog
	ErrCodeCatalogFetchFailed ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeCatalogEmpty       ErrorCode = "CATALOG_EMPTY"
	ErrCodeSearchQueryFailed  ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout      ErrorCode = "SEARCH_TIMEOUT"

	// Lead pipeline
	ErrCodeProfileValidationFailed     ErrorCode = "PROFILE_VALIDATION_FAILED"
	ErrCodeEvaluationFailed            ErrorCode = "EVALUATION_FAILED"
	ErrCodeSubmissionUpsertFailed      ErrorCode = "SUBMISSION_UPSERT_FAILED"
	ErrCodeRecommendationReplaceFailed ErrorCode = "RECOMMENDATION_REPLACE_FAILED"
	ErrCodeReferralNotConfigured       ErrorCode = "REFERRAL_NOT_CONFIGURED"
	ErrCodeClickLogFailed              ErrorCode = "CLICK_LOG_FAILED"
	ErrCodeNotificationSendFailed      ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Infrastructure
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeExternalService          ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout                  ErrorCode = "TIMEOUT"
	ErrCodeResourceNotFound         ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule             ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError maps a StandardError onto its workflow form.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
	}
}

// GetRetryCount returns how many times a failed job with this code should
// be retried before the error surfaces to the process.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogFetchFailed,
		ErrCodeSubmissionUpsertFailed,
		ErrCodeRecommendationReplaceFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout,
		ErrCodeSearchQueryFailed,
		ErrCodeSearchTimeout,
		ErrCodeExternalService,
		ErrCodeTimeout:
		return 3
	default:
		return 0
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeCatalogFetchFailed, ErrCodeCatalogEmpty, ErrCodeSearchQueryFailed, ErrCodeSearchTimeout:
		return "catalog"
	case ErrCodeProfileValidationFailed, ErrCodeEvaluationFailed, ErrCodeBusinessRule:
		return "business"
	case ErrCodeSubmissionUpsertFailed, ErrCodeRecommendationReplaceFailed, ErrCodeClickLogFailed,
		ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed, ErrCodeQueryTimeout:
		return "persistence"
	case ErrCodeReferralNotConfigured, ErrCodeResourceNotFound:
		return "resolution"
	case ErrCodeNotificationSendFailed, ErrCodeExternalService, ErrCodeTimeout:
		return "external"
	default:
		return "internal"
	}
}

// --- Constructors ---

// NewCatalogFetchFailedError creates a retryable catalog retrieval error.
// Callers must be able to tell this apart from an empty catalog, which is
// a valid non-error outcome.
func NewCatalogFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Catalog could not be retrieved",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileValidationFailedError creates a non-retryable validation error.
func NewProfileValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileValidationFailed,
		Message:   "Applicant profile failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEvaluationFailedError creates a non-retryable evaluation error.
// The engine itself never fails on applicant data; this covers malformed
// job variables only.
func NewEvaluationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluationFailed,
		Message:   "Product evaluation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionUpsertFailedError creates a retryable persistence error.
func NewSubmissionUpsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionUpsertFailed,
		Message:   "Submission upsert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecommendationReplaceFailedError creates a retryable persistence error.
func NewRecommendationReplaceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecommendationReplaceFailed,
		Message:   "Recommendation replace failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReferralNotConfiguredError creates a non-retryable resolution error:
// neither the product nor its lender carries an outbound URL.
func NewReferralNotConfiguredError(productID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferralNotConfigured,
		Message:   "No referral URL configured for product",
		Details:   fmt.Sprintf("productId: %s", productID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Lead notification send failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Product search query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalServiceError creates a retryable external dependency error.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service %s failed", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Operation %s timed out", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResourceNotFoundError creates a non-retryable lookup error.
func NewResourceNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBusinessRuleError creates a non-retryable business rule violation.
func NewBusinessRuleError(details, rule string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBusinessRule,
		Message:   rule,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
