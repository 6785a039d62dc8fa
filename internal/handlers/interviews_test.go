package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/kashishkhatter/interviewer-cw/internal/identity"
	"github.com/kashishkhatter/interviewer-cw/internal/models"
	"github.com/kashishkhatter/interviewer-cw/internal/request"
	"github.com/kashishkhatter/interviewer-cw/internal/services/ai"
)

type fakeInterviewRepo struct {
	created    []*models.Interview
	byMockID   map[string]*models.Interview
	listResult []*models.Interview
	listErr    error
	lastOwner  [2]string
}

func (r *fakeInterviewRepo) Create(ctx context.Context, interview *models.Interview) error {
	interview.ID = int64(len(r.created) + 1)
	r.created = append(r.created, interview)
	return nil
}

func (r *fakeInterviewRepo) GetByMockID(ctx context.Context, mockID string) (*models.Interview, error) {
	if iv, ok := r.byMockID[mockID]; ok {
		return iv, nil
	}
	return nil, errors.New("interview not found")
}

func (r *fakeInterviewRepo) ListByOwner(ctx context.Context, managedEmail, tokenEmail string) ([]*models.Interview, error) {
	r.lastOwner = [2]string{managedEmail, tokenEmail}
	return r.listResult, r.listErr
}

type stubAIProvider struct {
	questions []ai.GeneratedQuestion
	err       error
}

func (p *stubAIProvider) GenerateQuestions(ctx context.Context, jobPosition, jobDescription, jobExperience string, count int) ([]ai.GeneratedQuestion, error) {
	return p.questions, p.err
}

func (p *stubAIProvider) GenerateFeedback(ctx context.Context, question, correctAnswer, userAnswer string) (*ai.Feedback, error) {
	return &ai.Feedback{Rating: "5", Feedback: "ok"}, nil
}

func withIdentity(r *http.Request, id identity.Identity) *http.Request {
	return r.WithContext(request.WithIdentity(r.Context(), id))
}

func newInterviewRouter(repo *fakeInterviewRepo, provider ai.Provider) *mux.Router {
	r := mux.NewRouter()
	sub := r.PathPrefix("/api/v1/interviews").Subrouter()
	NewInterviewHandler(repo, provider).RegisterRoutes(sub)
	return r
}

func TestCreateInterview(t *testing.T) {
	t.Parallel()

	repo := &fakeInterviewRepo{}
	provider := &stubAIProvider{questions: []ai.GeneratedQuestion{
		{Question: "What is a slice?", Answer: "A view over an array."},
	}}
	router := newInterviewRouter(repo, provider)

	body := `{"job_position": "Backend Engineer", "job_desc": "Go microservices", "job_experience": "3"}`
	req := httptest.NewRequest("POST", "/api/v1/interviews", bytes.NewBufferString(body))
	req = withIdentity(req, identity.Identity{Email: "alice@example.com", Source: identity.SourceManaged})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d interviews, want 1", len(repo.created))
	}

	iv := repo.created[0]
	if iv.CreatedBy != "alice@example.com" {
		t.Errorf("CreatedBy = %q", iv.CreatedBy)
	}
	if iv.MockID == "" {
		t.Error("MockID should be generated")
	}

	var stored []ai.GeneratedQuestion
	if err := json.Unmarshal([]byte(iv.QuestionsJSON), &stored); err != nil {
		t.Fatalf("QuestionsJSON is not valid JSON: %v", err)
	}
	if len(stored) != 1 || stored[0].Question != "What is a slice?" {
		t.Errorf("stored questions = %+v", stored)
	}
}

func TestCreateInterview_Unauthorized(t *testing.T) {
	t.Parallel()

	router := newInterviewRouter(&fakeInterviewRepo{}, &stubAIProvider{})
	req := httptest.NewRequest("POST", "/api/v1/interviews", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateInterview_ValidationFailure(t *testing.T) {
	t.Parallel()

	router := newInterviewRouter(&fakeInterviewRepo{}, &stubAIProvider{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing position", body: `{"job_desc": "Go", "job_experience": "3"}`},
		{name: "missing description", body: `{"job_position": "Engineer", "job_experience": "3"}`},
		{name: "invalid JSON", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest("POST", "/api/v1/interviews", bytes.NewBufferString(tt.body))
			req = withIdentity(req, identity.Identity{Email: "alice@example.com", Source: identity.SourceManaged})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateInterview_GenerationFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeInterviewRepo{}
	router := newInterviewRouter(repo, &stubAIProvider{err: errors.New("upstream down")})

	body := `{"job_position": "Backend Engineer", "job_desc": "Go microservices", "job_experience": "3"}`
	req := httptest.NewRequest("POST", "/api/v1/interviews", bytes.NewBufferString(body))
	req = withIdentity(req, identity.Identity{Email: "alice@example.com", Source: identity.SourceManaged})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if len(repo.created) != 0 {
		t.Error("no interview should be stored when generation fails")
	}
}

func TestListInterviews_OwnerScoping(t *testing.T) {
	t.Parallel()

	repo := &fakeInterviewRepo{listResult: []*models.Interview{{MockID: "m1"}}}
	router := newInterviewRouter(repo, &stubAIProvider{})

	req := httptest.NewRequest("GET", "/api/v1/interviews", nil)
	req = withIdentity(req, identity.Identity{Email: "alice@example.com", Source: identity.SourceManaged})
	req = req.WithContext(request.WithTokenClaims(req.Context(), &models.Claims{Email: "Alice.Share@Example.com"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if repo.lastOwner[0] != "alice@example.com" {
		t.Errorf("managed owner = %q", repo.lastOwner[0])
	}
	if repo.lastOwner[1] != "alice.share@example.com" {
		t.Errorf("token owner = %q, want normalized", repo.lastOwner[1])
	}
}

func TestGetInterview(t *testing.T) {
	t.Parallel()

	repo := &fakeInterviewRepo{byMockID: map[string]*models.Interview{
		"known": {MockID: "known", JobPosition: "SRE"},
	}}
	router := newInterviewRouter(repo, &stubAIProvider{})

	req := httptest.NewRequest("GET", "/api/v1/interviews/known", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/interviews/unknown", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
