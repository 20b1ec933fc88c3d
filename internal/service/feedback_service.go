package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SolutionChecker is the external collaborator that reviews a diagram
// against the problem requirements. It may fail or time out; the feedback
// service degrades instead of propagating.
type SolutionChecker interface {
	Check(ctx context.Context, problem *models.Problem, summary *diagram.Summary) (*models.Feedback, error)
}

// FeedbackService answers "is there valid cached feedback for the current
// diagram" and invokes the checker on a miss. The cache lives inside the
// session's message log: feedback entries are tagged with the fingerprint
// they were computed against.
type FeedbackService struct {
	Sessions SessionStore
	Problems ProblemStore
	Checker  SolutionChecker
}

func NewFeedbackService(sessions SessionStore, problems ProblemStore, checker SolutionChecker) *FeedbackService {
	return &FeedbackService{Sessions: sessions, Problems: problems, Checker: checker}
}

// CheckResult is the outcome of a feedback check.
type CheckResult struct {
	Feedback    models.Feedback `json:"feedback"`
	Cached      bool            `json:"cached"`
	DiagramHash string          `json:"diagram_hash"`
}

// Check returns cached feedback when the session's current fingerprint
// matches a previously stored entry, otherwise runs the checker and caches
// the result.
//
// The session is read immediately before the hit/miss decision so the most
// recently autosaved diagram is observed. An autosave arriving strictly
// between this read and the cache append is an accepted gap: the stored
// entry is tagged with the fingerprint it was actually computed against, so
// a stale entry can never be mistaken for current feedback — the window
// costs at most one extra checker call, never a wrong answer.
func (s *FeedbackService) Check(ctx context.Context, sessionID, userID string) (*CheckResult, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	hash := diagram.Fingerprint(session.Diagram)

	if cached := session.CachedFeedback(hash); cached != nil && cached.Feedback != nil {
		return &CheckResult{Feedback: *cached.Feedback, Cached: true, DiagramHash: hash}, nil
	}

	problem, err := s.Problems.FindByID(ctx, session.ProblemID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load problem: %w", err)
	}

	summary := diagram.Summarize(session.Diagram)
	feedback, err := s.Checker.Check(ctx, problem, summary)
	if err != nil {
		// Degraded result, and deliberately not cached: the next check
		// should retry the collaborator instead of replaying the failure.
		log.Printf("Solution check degraded for session %s: %v", sessionID, err)
		return &CheckResult{Feedback: degradedFeedback(), Cached: false, DiagramHash: hash}, nil
	}

	// Frozen sessions keep serving cache hits but accept no new entries.
	if !session.IsTerminal() {
		entry := models.ChatMessage{
			Kind:        models.MessageKindFeedback,
			Role:        "assistant",
			Content:     feedback.Summary,
			DiagramHash: hash,
			Feedback:    feedback,
			Timestamp:   time.Now().UTC(),
		}
		if err := s.Sessions.AppendFeedback(ctx, sessionID, entry); err != nil {
			return nil, fmt.Errorf("cache feedback: %w", err)
		}
	}

	return &CheckResult{Feedback: *feedback, Cached: false, DiagramHash: hash}, nil
}

func (s *FeedbackService) ownedSession(ctx context.Context, sessionID, userID string) (*models.PracticeSession, error) {
	session, err := s.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

func degradedFeedback() models.Feedback {
	return models.Feedback{
		Implemented: []string{},
		Missing:     []string{"Solution review is temporarily unavailable"},
		NextSteps:   []string{"Please try again in a moment"},
		Summary:     "The review service could not analyze the diagram right now.",
	}
}
