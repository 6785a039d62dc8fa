package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kashishkhatter/interviewer-cw/internal/models"
)

// InterviewRepository handles mock-interview database operations
type InterviewRepository struct {
	db *DB
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

// Create inserts a new interview
func (r *InterviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	query := `
		INSERT INTO mock_interviews (mock_id, questions_json, job_position, job_desc, job_experience, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		interview.MockID,
		interview.QuestionsJSON,
		interview.JobPosition,
		interview.JobDesc,
		interview.JobExperience,
		interview.CreatedBy,
		now,
	).Scan(&interview.ID, &interview.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	return nil
}

// GetByMockID retrieves a single interview by its mock ID
func (r *InterviewRepository) GetByMockID(ctx context.Context, mockID string) (*models.Interview, error) {
	interview := &models.Interview{}
	query := `
		SELECT id, mock_id, questions_json, job_position, job_desc, job_experience, created_by, created_at
		FROM mock_interviews
		WHERE mock_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, mockID).Scan(
		&interview.ID,
		&interview.MockID,
		&interview.QuestionsJSON,
		&interview.JobPosition,
		&interview.JobDesc,
		&interview.JobExperience,
		&interview.CreatedBy,
		&interview.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("interview not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	return interview, nil
}

// ListByOwner retrieves all interviews owned by either candidate email.
// A record was authored under exactly one of the two identity sources, so
// the owner column is matched against both values with exact equality.
func (r *InterviewRepository) ListByOwner(ctx context.Context, managedEmail, tokenEmail string) ([]*models.Interview, error) {
	if managedEmail == "" && tokenEmail == "" {
		return nil, nil
	}

	query := `
		SELECT id, mock_id, questions_json, job_position, job_desc, job_experience, created_by, created_at
		FROM mock_interviews
		WHERE created_by = $1 OR created_by = $2
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, managedEmail, tokenEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	var interviews []*models.Interview
	for rows.Next() {
		interview := &models.Interview{}
		err := rows.Scan(
			&interview.ID,
			&interview.MockID,
			&interview.QuestionsJSON,
			&interview.JobPosition,
			&interview.JobDesc,
			&interview.JobExperience,
			&interview.CreatedBy,
			&interview.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, interview)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interviews: %w", err)
	}

	return interviews, nil
}
