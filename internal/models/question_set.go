package models

import "time"

// QuestionSet represents a previous-year question collection in the
// question bank, scoped to a company and question type
type QuestionSet struct {
	ID            int64     `json:"id"`
	MockID        string    `json:"mock_id"`
	QuestionsJSON string    `json:"questions_json"`
	JobPosition   string    `json:"job_position"`
	JobDesc       string    `json:"job_desc"`
	JobExperience string    `json:"job_experience"`
	TypeQuestion  string    `json:"type_question"`
	Company       string    `json:"company"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
