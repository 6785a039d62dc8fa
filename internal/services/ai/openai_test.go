package ai

import (
	"errors"
	"strings"
	"testing"
)

func TestParseQuestionResponse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError bool
		wantCount   int
	}{
		{
			name:      "wrapped object",
			content:   `{"questions": [{"question": "What is a goroutine?", "answer": "A lightweight thread."}, {"question": "What is a channel?", "answer": "A typed conduit."}]}`,
			wantCount: 2,
		},
		{
			name:      "bare array",
			content:   `[{"question": "What is REST?", "answer": "An architectural style."}]`,
			wantCount: 1,
		},
		{
			name:      "prose around JSON",
			content:   "Here are your questions:\n{\"questions\": [{\"question\": \"Q1\", \"answer\": \"A1\"}]}\nGood luck!",
			wantCount: 1,
		},
		{
			name:        "not JSON",
			content:     "sorry, I cannot do that",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := parseQuestionResponse(tt.content)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseQuestionResponse() error = %v", err)
			}
			if len(questions) != tt.wantCount {
				t.Errorf("got %d questions, want %d", len(questions), tt.wantCount)
			}
			for i, q := range questions {
				if q.Question == "" {
					t.Errorf("question %d has empty question text", i)
				}
			}
		})
	}
}

func TestParseFeedbackResponse(t *testing.T) {
	fb, err := parseFeedbackResponse(`{"rating": "7", "feedback": "Good structure, mention trade-offs next time."}`)
	if err != nil {
		t.Fatalf("parseFeedbackResponse() error = %v", err)
	}
	if fb.Rating != "7" {
		t.Errorf("Rating = %q, want 7", fb.Rating)
	}
	if fb.Feedback == "" {
		t.Error("Feedback is empty")
	}

	if _, err := parseFeedbackResponse(`{"rating": "7"}`); err == nil {
		t.Error("expected error for missing feedback field")
	}

	fb, err = parseFeedbackResponse("Sure!\n{\"rating\": \"4\", \"feedback\": \"Too vague.\"}")
	if err != nil {
		t.Fatalf("parseFeedbackResponse() with prose error = %v", err)
	}
	if fb.Rating != "4" {
		t.Errorf("Rating = %q, want 4", fb.Rating)
	}
}



func TestBuildQuestionPromptIncludesRole(t *testing.T) {
	prompt := buildQuestionPrompt("Backend Engineer", "Go, Postgres", "3", 5)
	for _, want := range []string{"Backend Engineer", "Go, Postgres", "5 interview questions"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestExtractAPIError(t *testing.T) {
	apiErr := ExtractAPIError(errors.New("429 Too Many Requests: rate limit reached"))
	if apiErr == nil {
		t.Fatal("expected APIError for 429")
	}
	if apiErr.IsPermanent {
		t.Error("rate limit should not be permanent")
	}
	if !IsRateLimitError(apiErr) {
		t.Error("IsRateLimitError = false")
	}

	quotaErr := ExtractAPIError(errors.New("insufficient_quota: please check your billing"))
	if quotaErr == nil || !quotaErr.IsPermanent {
		t.Error("expected permanent APIError for quota exhaustion")
	}
	if !IsQuotaError(quotaErr) {
		t.Error("IsQuotaError = false")
	}

	if ExtractAPIError(errors.New("connection refused")) != nil {
		t.Error("expected nil for non-API error")
	}
}
