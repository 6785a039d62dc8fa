package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kashishkhatter/interviewer-cw/internal/database"
	"github.com/kashishkhatter/interviewer-cw/internal/models"
	"github.com/kashishkhatter/interviewer-cw/internal/request"
	"github.com/kashishkhatter/interviewer-cw/internal/services/ai"
	"github.com/kashishkhatter/interviewer-cw/internal/validation"
)

// InterviewHandler handles mock-interview requests
type InterviewHandler struct {
	interviewRepo database.InterviewRepositoryInterface
	aiProvider    ai.Provider
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviewRepo database.InterviewRepositoryInterface, aiProvider ai.Provider) *InterviewHandler {
	return &InterviewHandler{interviewRepo: interviewRepo, aiProvider: aiProvider}
}

// RegisterRoutes registers interview routes on the given router.
// The router should already have the /interviews prefix.
func (h *InterviewHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListInterviews).Methods("GET")
	r.HandleFunc("", h.CreateInterview).Methods("POST")
	r.HandleFunc("/{mockId}", h.GetInterview).Methods("GET")
}

// CreateInterviewRequest represents a create interview request
type CreateInterviewRequest struct {
	JobPosition   string `json:"job_position" validate:"required,min=2,max=2000"`
	JobDesc       string `json:"job_desc" validate:"required,min=2,max=2000"`
	JobExperience string `json:"job_experience" validate:"required,max=50"`
	QuestionCount int    `json:"question_count" validate:"omitempty,min=1,max=15"`
}

// CreateInterview generates a question set for the role and stores it as a
// new mock interview owned by the request identity
func (h *InterviewHandler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if !id.IsAuthenticated() {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Identity not found in context")
		return
	}

	var req CreateInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.JobPosition = validation.SanitizeText(req.JobPosition)
	req.JobDesc = validation.SanitizeText(req.JobDesc)
	req.JobExperience = validation.SanitizeText(req.JobExperience)

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	ctx := r.Context()
	questions, err := h.aiProvider.GenerateQuestions(ctx, req.JobPosition, req.JobDesc, req.JobExperience, req.QuestionCount)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to generate interview questions")
		return
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to encode questions")
		return
	}

	interview := &models.Interview{
		MockID:        uuid.New().String(),
		QuestionsJSON: string(questionsJSON),
		JobPosition:   req.JobPosition,
		JobDesc:       req.JobDesc,
		JobExperience: req.JobExperience,
		CreatedBy:     id.Email,
		CreatedAt:     time.Now(),
	}

	if err := h.interviewRepo.Create(ctx, interview); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create interview")
		return
	}

	respondJSON(w, http.StatusCreated, interview)
}

// ListInterviews lists interviews owned by either of the request's
// candidate owner emails
func (h *InterviewHandler) ListInterviews(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if !id.IsAuthenticated() {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Identity not found in context")
		return
	}

	managed, tokenEmail := ownerEmails(r)
	interviews, err := h.interviewRepo.ListByOwner(r.Context(), managed, tokenEmail)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve interviews")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"interviews": interviews})
}

// GetInterview retrieves a single interview by its mock ID. Interviews are
// reachable by link, so the lookup is not owner-scoped.
func (h *InterviewHandler) GetInterview(w http.ResponseWriter, r *http.Request) {
	mockID := mux.Vars(r)["mockId"]
	if mockID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing mock ID")
		return
	}

	interview, err := h.interviewRepo.GetByMockID(r.Context(), mockID)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Interview not found")
		return
	}

	respondJSON(w, http.StatusOK, interview)
}
