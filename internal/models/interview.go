package models

import "time"

// Interview represents a generated mock interview session
type Interview struct {
	ID            int64     `json:"id"`
	MockID        string    `json:"mock_id"`
	QuestionsJSON string    `json:"questions_json"`
	JobPosition   string    `json:"job_position"`
	JobDesc       string    `json:"job_desc"`
	JobExperience string    `json:"job_experience"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// InterviewQuestion is a single question/answer pair inside an interview's
// generated question set
type InterviewQuestion struct {
	Question string `json:"Question"`
	Answer   string `json:"Answer"`
}
