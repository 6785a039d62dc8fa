package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kashishkhatter/interviewer-cw/internal/database"
	"github.com/kashishkhatter/interviewer-cw/internal/models"
	"github.com/kashishkhatter/interviewer-cw/internal/queue"
	"github.com/kashishkhatter/interviewer-cw/internal/request"
	"github.com/kashishkhatter/interviewer-cw/internal/services/ai"
	"github.com/kashishkhatter/interviewer-cw/internal/validation"
)

// AnswerHandler handles recorded-answer requests
type AnswerHandler struct {
	answerRepo database.AnswerRepositoryInterface
	aiProvider ai.Provider
	jobQueue   queue.JobQueue // nil means feedback is generated synchronously
	logger     *zap.Logger
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(answerRepo database.AnswerRepositoryInterface, aiProvider ai.Provider, jobQueue queue.JobQueue, logger *zap.Logger) *AnswerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerHandler{
		answerRepo: answerRepo,
		aiProvider: aiProvider,
		jobQueue:   jobQueue,
		logger:     logger,
	}
}

// RegisterRoutes registers answer routes on the given router.
// The router should already have the /interviews prefix.
func (h *AnswerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{mockId}/answers", h.RecordAnswer).Methods("POST")
	r.HandleFunc("/{mockId}/answers", h.ListAnswers).Methods("GET")
}

// RecordAnswerRequest represents a recorded answer submission
type RecordAnswerRequest struct {
	Question   string `json:"question" validate:"required,min=1,max=10000"`
	CorrectAns string `json:"correct_ans" validate:"max=10000"`
	UserAns    string `json:"user_ans" validate:"required,min=1,max=10000"`
}

// RecordAnswer stores a recorded answer and schedules feedback generation.
// Feedback is produced by the worker when a queue is wired; without one it
// is generated inline before responding.
func (h *AnswerHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if !id.IsAuthenticated() {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Identity not found in context")
		return
	}

	mockID := mux.Vars(r)["mockId"]
	if mockID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing mock ID")
		return
	}

	var req RecordAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Question = validation.SanitizeText(req.Question)
	req.CorrectAns = validation.SanitizeText(req.CorrectAns)
	req.UserAns = validation.SanitizeText(req.UserAns)

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
	answer := &models.UserAnswer{
		MockID:         mockID,
		Question:       req.Question,
		CorrectAns:     req.CorrectAns,
		UserAns:        req.UserAns,
		UserEmail:      id.Email,
		FeedbackStatus: models.FeedbackStatusPending,
	}

	if err := h.answerRepo.Create(ctx, answer); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to record answer")
		return
	}

	if h.jobQueue != nil {
		if err := h.jobQueue.Enqueue(ctx, queue.NewFeedbackJob(answer.ID)); err == nil {
			respondJSON(w, http.StatusAccepted, answer)
			return
		}
		h.logger.Warn("feedback_enqueue_failed_generating_inline",
			zap.Int64("answer_id", answer.ID))
	}

	feedback, err := h.aiProvider.GenerateFeedback(ctx, answer.Question, answer.CorrectAns, answer.UserAns)
	if err != nil {
		// The answer itself is stored; feedback stays pending
		h.logger.Warn("inline_feedback_failed", zap.Int64("answer_id", answer.ID), zap.Error(err))
		respondJSON(w, http.StatusAccepted, answer)
		return
	}

	if err := h.answerRepo.SetFeedback(ctx, answer.ID, feedback.Feedback, feedback.Rating, models.FeedbackStatusCompleted); err != nil {
		h.logger.Warn("inline_feedback_store_failed", zap.Int64("answer_id", answer.ID), zap.Error(err))
		respondJSON(w, http.StatusAccepted, answer)
		return
	}

	answer.Feedback = feedback.Feedback
	answer.Rating = feedback.Rating
	answer.FeedbackStatus = models.FeedbackStatusCompleted
	respondJSON(w, http.StatusCreated, answer)
}

// ListAnswers retrieves the answers recorded for one interview
func (h *AnswerHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	id := request.Identity(r)
	if !id.IsAuthenticated() {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Identity not found in context")
		return
	}

	mockID := mux.Vars(r)["mockId"]
	if mockID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing mock ID")
		return
	}

	answers, err := h.answerRepo.ListByMockID(r.Context(), mockID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve answers")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"answers": answers})
}
