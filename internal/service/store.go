package service

import (
	"context"
	"time"

	"design-practice-service/internal/models"
)

// SessionStore is the durable storage contract the session lifecycle needs:
// point lookups, a (owner, problem, live-status) query, conditional field
// updates, and atomic appends to the message log. Implemented by
// repository.SessionRepository; tests substitute an in-memory fake.
type SessionStore interface {
	FindByID(ctx context.Context, id string) (*models.PracticeSession, error)
	FindLiveByUserAndProblem(ctx context.Context, userID, problemID string) (*models.PracticeSession, error)
	ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.PracticeSession, error)
	Create(ctx context.Context, session *models.PracticeSession) error
	SaveDiagram(ctx context.Context, id string, diagram map[string]interface{}, hash string, timeSpent int, now time.Time) error
	SaveTime(ctx context.Context, id string, timeSpent int, now time.Time) error
	UpdateStatus(ctx context.Context, id, status string, timeSpent *int, endedAt *time.Time, now time.Time) error
	AppendMessage(ctx context.Context, id string, msg models.ChatMessage) error
	AppendFeedback(ctx context.Context, id string, msg models.ChatMessage) error
	DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubmissionStore persists immutable submission records.
type SubmissionStore interface {
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByUser(ctx context.Context, userID string, skip, limit int64) ([]models.Submission, error)
	FindByUserAndProblem(ctx context.Context, userID, problemID string) (*models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	AppendChatMessage(ctx context.Context, id string, msg models.ChatMessage) error
	Delete(ctx context.Context, id string) (bool, error)
}

// ProblemStore is the read-side problem lookup the evaluation flow needs.
type ProblemStore interface {
	FindByID(ctx context.Context, id string) (*models.Problem, error)
}
