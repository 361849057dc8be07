package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypePlanSync     JobType = "plan_sync"
	JobTypePackageSync  JobType = "package_sync"
	JobTypeBillingEmail JobType = "billing_email"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// PlanSyncJobPayload contains the payload for catalog plan sync jobs
type PlanSyncJobPayload struct {
	PlanID uint `json:"plan_id"`
}

// ToMap converts the payload to a map for storage
func (p PlanSyncJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"plan_id": p.PlanID,
	}
}

// FromMap creates a payload from a map
func PlanSyncJobPayloadFromMap(data map[string]interface{}) (*PlanSyncJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload PlanSyncJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// PackageSyncJobPayload contains the payload for credit package sync jobs
type PackageSyncJobPayload struct {
	PackageID uint `json:"package_id"`
}

// ToMap converts the payload to a map for storage
func (p PackageSyncJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"package_id": p.PackageID,
	}
}

// FromMap creates a payload from a map
func PackageSyncJobPayloadFromMap(data map[string]interface{}) (*PackageSyncJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload PackageSyncJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// BillingEmailJobPayload contains the payload for billing notification emails
type BillingEmailJobPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ToMap converts the payload to a map for storage
func (p BillingEmailJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"to":      p.To,
		"subject": p.Subject,
		"body":    p.Body,
	}
}

// FromMap creates a payload from a map
func BillingEmailJobPayloadFromMap(data map[string]interface{}) (*BillingEmailJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload BillingEmailJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
