package models

import "time"

// AnswerFeedbackStatus tracks whether AI feedback has been generated for an answer
type AnswerFeedbackStatus string

const (
	FeedbackStatusPending   AnswerFeedbackStatus = "pending"
	FeedbackStatusCompleted AnswerFeedbackStatus = "completed"
	FeedbackStatusFailed    AnswerFeedbackStatus = "failed"
)

// UserAnswer represents a recorded answer to one interview question,
// together with the AI-generated feedback and rating
type UserAnswer struct {
	ID             int64                `json:"id"`
	MockID         string               `json:"mock_id"`
	Question       string               `json:"question"`
	CorrectAns     string               `json:"correct_ans,omitempty"`
	UserAns        string               `json:"user_ans"`
	Feedback       string               `json:"feedback,omitempty"`
	Rating         string               `json:"rating,omitempty"`
	UserEmail      string               `json:"user_email"`
	FeedbackStatus AnswerFeedbackStatus `json:"feedback_status"`
	CreatedAt      time.Time            `json:"created_at"`
}
