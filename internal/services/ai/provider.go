package ai

import "context"

// GeneratedQuestion is a single question/answer pair produced for an
// interview session.
type GeneratedQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Feedback is the evaluation produced for a recorded answer.
type Feedback struct {
	Rating   string `json:"rating"`
	Feedback string `json:"feedback"`
}

// Provider defines the interface for AI generation backends
type Provider interface {
	// GenerateQuestions produces count interview questions with reference
	// answers for the given role.
	GenerateQuestions(ctx context.Context, jobPosition, jobDescription, jobExperience string, count int) ([]GeneratedQuestion, error)
	// GenerateFeedback rates a recorded answer against the reference answer.
	GenerateFeedback(ctx context.Context, question, correctAnswer, userAnswer string) (*Feedback, error)
}
