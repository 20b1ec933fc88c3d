package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Evaluator turns a frozen diagram into a complete, best-effort evaluation.
// Implemented by evaluation.Orchestrator; injected so tests substitute a
// fake. The only error it returns is for an empty diagram — collaborator
// failures degrade inside.
type Evaluator interface {
	Evaluate(ctx context.Context, problem *models.Problem, diagramData map[string]interface{}) (*models.EvaluationResult, error)
}

// SubmissionService converts a practice session into an immutable scored
// submission.
type SubmissionService struct {
	Submissions SubmissionStore
	Problems    ProblemStore
	Sessions    *SessionService
	Evaluator   Evaluator
}

func NewSubmissionService(submissions SubmissionStore, problems ProblemStore, sessions *SessionService, evaluator Evaluator) *SubmissionService {
	return &SubmissionService{
		Submissions: submissions,
		Problems:    problems,
		Sessions:    sessions,
		Evaluator:   evaluator,
	}
}

// SubmitFromSession runs the full submission flow: freeze checks, the
// evaluation pipeline, submission persistence, and the session's terminal
// transition. A learning-resource fetch failure never fails the call; an
// empty diagram, a missing or foreign session, or a repeat submit does.
func (s *SubmissionService) SubmitFromSession(ctx context.Context, sessionID, userID string) (*models.Submission, error) {
	session, err := s.Sessions.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusSubmitted {
		return nil, ErrAlreadySubmitted
	}
	if session.Status == models.StatusAbandoned {
		return nil, ErrSessionClosed
	}
	if diagram.Summarize(session.Diagram).IsEmpty() {
		return nil, ErrEmptyDiagram
	}

	problem, err := s.Problems.FindByID(ctx, session.ProblemID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load problem: %w", err)
	}

	result, err := s.Evaluator.Evaluate(ctx, problem, session.Diagram)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	submission := &models.Submission{
		UserID:       session.UserID,
		ProblemID:    session.ProblemID,
		SessionID:    session.ID,
		Diagram:      session.Diagram,
		Score:        result.Score,
		MaxScore:     result.MaxScore,
		Breakdown:    result.Breakdown,
		Feedback:     result.Feedback,
		Tips:         result.Tips,
		Resources:    result.Resources,
		ChatMessages: session.ChatMessages,
		TimeSpent:    session.TimeSpent,
		Status:       "completed",
		SubmittedAt:  now,
		UpdatedAt:    now,
	}
	if err := s.Submissions.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	if err := s.Sessions.MarkSubmitted(ctx, sessionID, userID); err != nil {
		// The submission record exists; a failed status flip is logged by
		// the caller and the session stays resumable rather than losing the
		// evaluation.
		return submission, fmt.Errorf("mark session submitted: %w", err)
	}

	return submission, nil
}

func (s *SubmissionService) GetOwned(ctx context.Context, submissionID, userID string) (*models.Submission, error) {
	submission, err := s.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if submission.UserID != userID {
		return nil, ErrForbidden
	}
	return submission, nil
}

func (s *SubmissionService) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.Submission, error) {
	return s.Submissions.FindByUser(ctx, userID, skip, limit)
}

func (s *SubmissionService) GetForProblem(ctx context.Context, userID, problemID string) (*models.Submission, error) {
	submission, err := s.Submissions.FindByUserAndProblem(ctx, userID, problemID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return submission, nil
}

// AppendChat extends a submission's chat log without touching its score or
// feedback.
func (s *SubmissionService) AppendChat(ctx context.Context, submissionID, userID, role, content string) (*models.Submission, error) {
	submission, err := s.GetOwned(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}
	msg := models.ChatMessage{
		Kind:      models.MessageKindChat,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := s.Submissions.AppendChatMessage(ctx, submissionID, msg); err != nil {
		return nil, err
	}
	submission.ChatMessages = append(submission.ChatMessages, msg)
	return submission, nil
}

// Delete removes a submission. Owner-initiated deletion is the only way a
// submission ever disappears.
func (s *SubmissionService) Delete(ctx context.Context, submissionID, userID string) error {
	if _, err := s.GetOwned(ctx, submissionID, userID); err != nil {
		return err
	}
	deleted, err := s.Submissions.Delete(ctx, submissionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
