package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// DefaultQuestionCount is the number of questions generated when the
	// caller does not specify one.
	DefaultQuestionCount = 5
	// MaxQuestionCount bounds a single generation request
	MaxQuestionCount = 15

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the Provider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GenerateQuestions produces interview questions with reference answers
func (p *OpenAIProvider) GenerateQuestions(ctx context.Context, jobPosition, jobDescription, jobExperience string, count int) ([]GeneratedQuestion, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if count > MaxQuestionCount {
		count = MaxQuestionCount
	}

	prompt := buildQuestionPrompt(jobPosition, jobDescription, jobExperience, count)
	content, err := p.sendJSONRequest(ctx,
		"You are an experienced technical interviewer. Respond with valid JSON only.",
		prompt)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestionResponse(content)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in response")
	}

	return questions, nil
}

// GenerateFeedback rates a recorded answer against the reference answer
func (p *OpenAIProvider) GenerateFeedback(ctx context.Context, question, correctAnswer, userAnswer string) (*Feedback, error) {
	prompt := buildFeedbackPrompt(question, correctAnswer, userAnswer)
	content, err := p.sendJSONRequest(ctx,
		"You are an interview coach evaluating candidate answers. Respond with valid JSON only.",
		prompt)
	if err != nil {
		return nil, err
	}

	return parseFeedbackResponse(content)
}

// sendJSONRequest performs a chat completion constrained to JSON output and
// returns the raw response content.
func (p *OpenAIProvider) sendJSONRequest(ctx context.Context, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil {
			p.logger.Warn("chat completion failed",
				zap.String("model", p.model),
				zap.Duration("latency", latency),
				zap.Error(err))
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", apiErr
		}
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s", ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("chat completion succeeded",
			zap.String("model", p.model),
			zap.Duration("latency", latency),
			zap.Int("response_length", len(content)))
	}

	return content, nil
}

func buildQuestionPrompt(jobPosition, jobDescription, jobExperience string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job position: %s\n", jobPosition)
	fmt.Fprintf(&b, "Job description / tech stack: %s\n", jobDescription)
	fmt.Fprintf(&b, "Years of experience: %s\n", jobExperience)
	fmt.Fprintf(&b, "Based on the above, generate %d interview questions with a concise reference answer for each.\n", count)
	b.WriteString(`Respond with JSON of the form {"questions": [{"question": "...", "answer": "..."}]}.`)
	return b.String()
}

func buildFeedbackPrompt(question, correctAnswer, userAnswer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview question: %s\n", question)
	fmt.Fprintf(&b, "Reference answer: %s\n", correctAnswer)
	fmt.Fprintf(&b, "Candidate answer: %s\n", userAnswer)
	b.WriteString("Rate the candidate answer from 1 to 10 and give 3 to 5 lines of feedback naming areas of improvement.\n")
	b.WriteString(`Respond with JSON of the form {"rating": "7", "feedback": "..."}.`)
	return b.String()
}

// extractJSON trims any prose the model wrapped around the JSON object.
func extractJSON(raw string) string {
	if len(raw) > 0 && raw[0] != '{' {
		start := bytes.Index([]byte(raw), []byte("{"))
		end := bytes.LastIndex([]byte(raw), []byte("}"))
		if start != -1 && end != -1 && end > start {
			return raw[start : end+1]
		}
	}
	return raw
}

func parseQuestionResponse(content string) ([]GeneratedQuestion, error) {
	raw := extractJSON(content)

	var wrapped struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && len(wrapped.Questions) > 0 {
		return wrapped.Questions, nil
	}

	// Some models return a bare array instead of the wrapper object.
	var list []GeneratedQuestion
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list, nil
	}

	return nil, fmt.Errorf("failed to parse question response")
}

func parseFeedbackResponse(content string) (*Feedback, error) {
	raw := extractJSON(content)

	var fb Feedback
	if err := json.Unmarshal([]byte(raw), &fb); err != nil {
		return nil, fmt.Errorf("failed to parse feedback response: %w", err)
	}
	if fb.Feedback == "" {
		return nil, fmt.Errorf("feedback response missing feedback field")
	}

	return &fb, nil
}
