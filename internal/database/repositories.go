package database

import (
	"context"

	"github.com/kashishkhatter/interviewer-cw/internal/models"
)

// InterviewRepositoryInterface defines the interview repository operations
// handlers depend on. The interface enables mock implementations in tests.
type InterviewRepositoryInterface interface {
	Create(ctx context.Context, interview *models.Interview) error
	GetByMockID(ctx context.Context, mockID string) (*models.Interview, error)
	ListByOwner(ctx context.Context, managedEmail, tokenEmail string) ([]*models.Interview, error)
}

// QuestionSetRepositoryInterface defines the question-bank repository operations
type QuestionSetRepositoryInterface interface {
	Create(ctx context.Context, set *models.QuestionSet) error
	GetByMockID(ctx context.Context, mockID string) (*models.QuestionSet, error)
	ListByOwner(ctx context.Context, managedEmail, tokenEmail string) ([]*models.QuestionSet, error)
}

// AnswerRepositoryInterface defines the answer repository operations
type AnswerRepositoryInterface interface {
	Create(ctx context.Context, answer *models.UserAnswer) error
	GetByID(ctx context.Context, id int64) (*models.UserAnswer, error)
	ListByMockID(ctx context.Context, mockID string) ([]*models.UserAnswer, error)
	SetFeedback(ctx context.Context, id int64, feedback, rating string, status models.AnswerFeedbackStatus) error
}

// Ensure concrete types implement the interfaces
var (
	_ InterviewRepositoryInterface   = (*InterviewRepository)(nil)
	_ QuestionSetRepositoryInterface = (*QuestionSetRepository)(nil)
	_ AnswerRepositoryInterface      = (*AnswerRepository)(nil)
)
