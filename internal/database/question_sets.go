package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kashishkhatter/interviewer-cw/internal/models"
)

// QuestionSetRepository handles question-bank database operations
type QuestionSetRepository struct {
	db *DB
}

// NewQuestionSetRepository creates a new question set repository
func NewQuestionSetRepository(db *DB) *QuestionSetRepository {
	return &QuestionSetRepository{db: db}
}

// Create inserts a new question set
func (r *QuestionSetRepository) Create(ctx context.Context, set *models.QuestionSet) error {
	query := `
		INSERT INTO question_sets (mock_id, questions_json, job_position, job_desc, job_experience, type_question, company, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		set.MockID,
		set.QuestionsJSON,
		set.JobPosition,
		set.JobDesc,
		set.JobExperience,
		set.TypeQuestion,
		set.Company,
		set.CreatedBy,
		now,
	).Scan(&set.ID, &set.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create question set: %w", err)
	}

	return nil
}

// GetByMockID retrieves a single question set by its mock ID
func (r *QuestionSetRepository) GetByMockID(ctx context.Context, mockID string) (*models.QuestionSet, error) {
	set := &models.QuestionSet{}
	query := `
		SELECT id, mock_id, questions_json, job_position, job_desc, job_experience, type_question, company, created_by, created_at
		FROM question_sets
		WHERE mock_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, mockID).Scan(
		&set.ID,
		&set.MockID,
		&set.QuestionsJSON,
		&set.JobPosition,
		&set.JobDesc,
		&set.JobExperience,
		&set.TypeQuestion,
		&set.Company,
		&set.CreatedBy,
		&set.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("question set not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question set: %w", err)
	}

	return set, nil
}

// ListByOwner retrieves all question sets owned by either candidate email
func (r *QuestionSetRepository) ListByOwner(ctx context.Context, managedEmail, tokenEmail string) ([]*models.QuestionSet, error) {
	if managedEmail == "" && tokenEmail == "" {
		return nil, nil
	}

	query := `
		SELECT id, mock_id, questions_json, job_position, job_desc, job_experience, type_question, company, created_by, created_at
		FROM question_sets
		WHERE created_by = $1 OR created_by = $2
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, managedEmail, tokenEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to query question sets: %w", err)
	}
	defer rows.Close()

	var sets []*models.QuestionSet
	for rows.Next() {
		set := &models.QuestionSet{}
		err := rows.Scan(
			&set.ID,
			&set.MockID,
			&set.QuestionsJSON,
			&set.JobPosition,
			&set.JobDesc,
			&set.JobExperience,
			&set.TypeQuestion,
			&set.Company,
			&set.CreatedBy,
			&set.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question set: %w", err)
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate question sets: %w", err)
	}

	return sets, nil
}
