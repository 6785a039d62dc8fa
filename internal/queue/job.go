package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeAnswerFeedback is a job for generating feedback on a recorded answer
	JobTypeAnswerFeedback JobType = "answer_feedback"
	// JobTypeReprocessInterview is a job for regenerating feedback on every
	// answer recorded for one interview
	JobTypeReprocessInterview JobType = "reprocess_interview"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	AnswerID   int64          `json:"answer_id,omitempty"` // Set for answer feedback jobs
	MockID     string         `json:"mock_id,omitempty"`   // Set for interview-wide jobs
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`   // Job-specific data
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewFeedbackJob creates a job that generates feedback for one answer
func NewFeedbackJob(answerID int64) *Job {
	return newJob(JobTypeAnswerFeedback, answerID, "")
}

// NewReprocessJob creates a job that regenerates feedback for every answer
// of one interview
func NewReprocessJob(mockID string) *Job {
	return newJob(JobTypeReprocessInterview, 0, mockID)
}

func newJob(jobType JobType, answerID int64, mockID string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		AnswerID:   answerID,
		MockID:     mockID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
