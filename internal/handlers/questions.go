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

// QuestionSetHandler handles question-bank requests
type QuestionSetHandler struct {
	questionRepo database.QuestionSetRepositoryInterface
	aiProvider   ai.Provider
}

// NewQuestionSetHandler creates a new question-bank handler
func NewQuestionSetHandler(questionRepo database.QuestionSetRepositoryInterface, aiProvider ai.Provider) *QuestionSetHandler {
	return &QuestionSetHandler{questionRepo: questionRepo, aiProvider: aiProvider}
}

// RegisterRoutes registers question-bank routes on the given router.
// The router should already have the /questions prefix.
func (h *QuestionSetHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListQuestionSets).Methods("GET")
	r.HandleFunc("", h.CreateQuestionSet).Methods("POST")
	r.HandleFunc("/{mockId}", h.GetQuestionSet).Methods("GET")
}

// CreateQuestionSetRequest represents a create question-set request
type CreateQuestionSetRequest struct {
	JobPosition   string `json:"job_position" validate:"required,min=2,max=2000"`
	JobDesc       string `json:"job_desc" validate:"required,min=2,max=2000"`
	JobExperience string `json:"job_experience" validate:"required,max=50"`
	TypeQuestion  string `json:"type_question" validate:"required,max=200"`
	Company       string `json:"company" validate:"required,max=200"`
	QuestionCount int    `json:"question_count" validate:"omitempty,min=1,max=15"`
}

// CreateQuestionSet generates a previous-year style question set and stores
// it in the question bank
func (h *QuestionSetHandler) CreateQuestionSet(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if !id.IsAuthenticated() {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Identity not found in context")
		return
	}

	var req CreateQuestionSetRequest
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
	req.TypeQuestion = validation.SanitizeText(req.TypeQuestion)
	req.Company = validation.SanitizeText(req.Company)

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
	description := fmt.Sprintf("%s (%s questions asked at %s)", req.JobDesc, req.TypeQuestion, req.Company)
	questions, err := h.aiProvider.GenerateQuestions(ctx, req.JobPosition, description, req.JobExperience, req.QuestionCount)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to generate questions")
		return
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to encode questions")
		return
	}

	set := &models.QuestionSet{
		MockID:        uuid.New().String(),
		QuestionsJSON: string(questionsJSON),
		JobPosition:   req.JobPosition,
		JobDesc:       req.JobDesc,
		JobExperience: req.JobExperience,
		TypeQuestion:  req.TypeQuestion,
		Company:       req.Company,
		CreatedBy:     id.Email,
		CreatedAt:     time.Now(),
	}

	if err := h.questionRepo.Create(ctx, set); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create question set")
		return
	}

	respondJSON(w, http.StatusCreated, set)
}

// ListQuestionSets lists question sets owned by either of the request's
// candidate owner emails
func (h *QuestionSetHandler) ListQuestionSets(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if !id.IsAuthenticated() {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Identity not found in context")
		return
	}

	managed, tokenEmail := ownerEmails(r)
	sets, err := h.questionRepo.ListByOwner(r.Context(), managed, tokenEmail)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve question sets")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"question_sets": sets})
}

// GetQuestionSet retrieves a single question set by its mock ID
func (h *QuestionSetHandler) GetQuestionSet(w http.ResponseWriter, r *http.Request) {
	mockID := mux.Vars(r)["mockId"]
	if mockID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing mock ID")
		return
	}

	set, err := h.questionRepo.GetByMockID(r.Context(), mockID)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Question set not found")
		return
	}

	respondJSON(w, http.StatusOK, set)
}
