package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kashishkhatter/interviewer-cw/internal/models"
)

// AnswerRepository handles user-answer database operations
type AnswerRepository struct {
	db *DB
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(db *DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Create inserts a recorded answer
func (r *AnswerRepository) Create(ctx context.Context, answer *models.UserAnswer) error {
	query := `
		INSERT INTO user_answers (mock_id, question, correct_ans, user_ans, feedback, rating, user_email, feedback_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	if answer.FeedbackStatus == "" {
		answer.FeedbackStatus = models.FeedbackStatusPending
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		answer.MockID,
		answer.Question,
		answer.CorrectAns,
		answer.UserAns,
		answer.Feedback,
		answer.Rating,
		answer.UserEmail,
		answer.FeedbackStatus,
		now,
	).Scan(&answer.ID, &answer.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}

	return nil
}

// GetByID retrieves a single answer
func (r *AnswerRepository) GetByID(ctx context.Context, id int64) (*models.UserAnswer, error) {
	answer := &models.UserAnswer{}
	query := `
		SELECT id, mock_id, question, correct_ans, user_ans, feedback, rating, user_email, feedback_status, created_at
		FROM user_answers
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&answer.ID,
		&answer.MockID,
		&answer.Question,
		&answer.CorrectAns,
		&answer.UserAns,
		&answer.Feedback,
		&answer.Rating,
		&answer.UserEmail,
		&answer.FeedbackStatus,
		&answer.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("answer not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	return answer, nil
}

// ListByMockID retrieves all answers recorded for one interview
func (r *AnswerRepository) ListByMockID(ctx context.Context, mockID string) ([]*models.UserAnswer, error) {
	query := `
		SELECT id, mock_id, question, correct_ans, user_ans, feedback, rating, user_email, feedback_status, created_at
		FROM user_answers
		WHERE mock_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, mockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []*models.UserAnswer
	for rows.Next() {
		answer := &models.UserAnswer{}
		err := rows.Scan(
			&answer.ID,
			&answer.MockID,
			&answer.Question,
			&answer.CorrectAns,
			&answer.UserAns,
			&answer.Feedback,
			&answer.Rating,
			&answer.UserEmail,
			&answer.FeedbackStatus,
			&answer.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answers: %w", err)
	}

	return answers, nil
}

// SetFeedback records generated feedback and rating for an answer
func (r *AnswerRepository) SetFeedback(ctx context.Context, id int64, feedback, rating string, status models.AnswerFeedbackStatus) error {
	query := `
		UPDATE user_answers
		SET feedback = $2, rating = $3, feedback_status = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, feedback, rating, status)
	if err != nil {
		return fmt.Errorf("failed to set feedback: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check feedback update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("answer not found")
	}

	return nil
}
