package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kashishkhatter/interviewer-cw/internal/database"
	"github.com/kashishkhatter/interviewer-cw/internal/models"
	"github.com/kashishkhatter/interviewer-cw/internal/queue"
	"github.com/kashishkhatter/interviewer-cw/internal/services/ai"
)

// RetryDelay is the pause before re-enqueueing a rate-limited job
const RetryDelay = 30 * time.Second

// FeedbackGenerator processes answer feedback jobs
type FeedbackGenerator struct {
	aiProvider ai.Provider
	answerRepo database.AnswerRepositoryInterface
	jobQueue   queue.JobQueue // For re-enqueueing jobs with delays
}

// NewFeedbackGenerator creates a new feedback generator
func NewFeedbackGenerator(
	aiProvider ai.Provider,
	answerRepo database.AnswerRepositoryInterface,
	jobQueue queue.JobQueue,
) *FeedbackGenerator {
	return &FeedbackGenerator{
		aiProvider: aiProvider,
		answerRepo: answerRepo,
		jobQueue:   jobQueue,
	}
}

// ProcessFeedbackJob generates and stores feedback for one recorded answer
func (g *FeedbackGenerator) ProcessFeedbackJob(ctx context.Context, job *queue.Job) error {
	if job.AnswerID == 0 {
		return fmt.Errorf("answer_id is required for feedback job")
	}

	answer, err := g.answerRepo.GetByID(ctx, job.AnswerID)
	if err != nil {
		return fmt.Errorf("failed to get answer: %w", err)
	}

	// Already evaluated, nothing to do
	if answer.FeedbackStatus == models.FeedbackStatusCompleted {
		log.Printf("Skipping answer %d (feedback already completed)", answer.ID)
		return nil
	}

	feedback, err := g.aiProvider.GenerateFeedback(ctx, answer.Question, answer.CorrectAns, answer.UserAns)
	if err != nil {
		return g.handleGenerationError(ctx, job, err)
	}

	if err := g.answerRepo.SetFeedback(ctx, answer.ID, feedback.Feedback, feedback.Rating, models.FeedbackStatusCompleted); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	log.Printf("Generated feedback for answer %d: rating=%s", answer.ID, feedback.Rating)
	return nil
}

// ProcessReprocessJob re-enqueues feedback jobs for every answer of one
// interview that is still pending or previously failed
func (g *FeedbackGenerator) ProcessReprocessJob(ctx context.Context, job *queue.Job) error {
	if job.MockID == "" {
		return fmt.Errorf("mock_id is required for reprocess job")
	}

	answers, err := g.answerRepo.ListByMockID(ctx, job.MockID)
	if err != nil {
		return fmt.Errorf("failed to list answers: %w", err)
	}

	enqueued := 0
	for _, answer := range answers {
		if answer.FeedbackStatus == models.FeedbackStatusCompleted {
			continue
		}
		if err := g.jobQueue.Enqueue(ctx, queue.NewFeedbackJob(answer.ID)); err != nil {
			log.Printf("Failed to enqueue feedback job for answer %d: %v", answer.ID, err)
			continue
		}
		enqueued++
	}

	log.Printf("Reprocess for interview %s enqueued %d feedback job(s)", job.MockID, enqueued)
	return nil
}

// ProcessJob dispatches one queue message to the matching job processor
// and settles the message.
func (g *FeedbackGenerator) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	if !job.ShouldProcess() {
		log.Printf("Job %s not ready yet (NotBefore: %v), skipping", job.ID, job.NotBefore)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job for later processing: %v", ackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeAnswerFeedback:
		if err := g.ProcessFeedbackJob(ctx, job); err != nil {
			return g.handleJobError(msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeReprocessInterview:
		if err := g.ProcessReprocessJob(ctx, job); err != nil {
			if nackErr := msg.Nack(false); nackErr != nil { // Don't requeue reprocess jobs
				log.Printf("Failed to nack reprocess job: %v", nackErr)
			}
			return fmt.Errorf("reprocessing failed: %w", err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack reprocess job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError settles a failed feedback job: requeue while retries
// remain, dead-letter once exhausted.
func (g *FeedbackGenerator) handleJobError(msg *queue.Message, job *queue.Job, jobErr error) error {
	if job.CanRetry() {
		job.IncrementRetry()
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job for retry: %v", nackErr)
		}
		return fmt.Errorf("feedback job failed, requeued (retry %d/%d): %w", job.RetryCount, job.MaxRetries, jobErr)
	}

	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack exhausted job: %v", nackErr)
	}
	return fmt.Errorf("feedback job failed permanently: %w", jobErr)
}

// handleGenerationError classifies an AI failure. Quota exhaustion marks the
// answer failed; rate limits re-enqueue with a delay while retries remain.
func (g *FeedbackGenerator) handleGenerationError(ctx context.Context, job *queue.Job, genErr error) error {
	if ai.IsQuotaError(genErr) {
		if err := g.answerRepo.SetFeedback(ctx, job.AnswerID, "", "", models.FeedbackStatusFailed); err != nil {
			log.Printf("Failed to mark answer %d failed: %v", job.AnswerID, err)
		}
		return fmt.Errorf("quota exhausted, marking answer %d failed: %w", job.AnswerID, genErr)
	}

	if ai.IsRateLimitError(genErr) && job.CanRetry() {
		job.IncrementRetry()
		notBefore := time.Now().Add(RetryDelay)
		job.NotBefore = &notBefore
		if err := g.jobQueue.Enqueue(ctx, job); err != nil {
			return fmt.Errorf("failed to re-enqueue rate-limited job: %w", err)
		}
		log.Printf("Rate limited, re-enqueued answer %d (retry %d/%d)", job.AnswerID, job.RetryCount, job.MaxRetries)
		return nil
	}

	return fmt.Errorf("failed to generate feedback: %w", genErr)
}
