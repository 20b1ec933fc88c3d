package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionService owns the practice-session lifecycle: start-or-resume
// semantics, autosave debouncing, the active/paused/submitted/abandoned
// state machine, and message-log appends.
type SessionService struct {
	Store SessionStore
}

func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{Store: store}
}

// StartOrResume returns the user's live session for the problem when one
// exists, otherwise creates a fresh one with an empty diagram and the
// fingerprint of the canonical empty form. Repeated calls while a live
// session exists never create duplicates. The second return value reports
// whether an existing session was resumed.
func (s *SessionService) StartOrResume(ctx context.Context, userID, problemID string) (*models.PracticeSession, bool, error) {
	existing, err := s.Store.FindLiveByUserAndProblem(ctx, userID, problemID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("lookup live session: %w", err)
	}

	now := time.Now().UTC()
	session := &models.PracticeSession{
		UserID:       userID,
		ProblemID:    problemID,
		SessionToken: uuid.NewString(),
		Diagram:      map[string]interface{}{},
		DiagramHash:  diagram.EmptyFingerprint(),
		TimeSpent:    0,
		Status:       models.StatusActive,
		ChatMessages: []models.ChatMessage{},
		StartedAt:    now,
		LastSavedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Create(ctx, session); err != nil {
		return nil, false, fmt.Errorf("create session: %w", err)
	}
	return session, false, nil
}

// GetOwned loads a session and verifies the caller owns it.
func (s *SessionService) GetOwned(ctx context.Context, sessionID, userID string) (*models.PracticeSession, error) {
	session, err := s.Store.FindByID(ctx, sessionID)
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

func (s *SessionService) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.PracticeSession, error) {
	return s.Store.ListByUser(ctx, userID, skip, limit)
}

// Autosave recomputes the diagram fingerprint and persists the diagram only
// when it changed. Time tracking is decoupled: time_spent and last_saved_at
// are written on every call because those writes are cheap while diagram
// writes carry the full canvas payload.
func (s *SessionService) Autosave(ctx context.Context, sessionID, userID string, diagramData map[string]interface{}, timeSpent int) (*models.PracticeSession, error) {
	session, err := s.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, ErrSessionClosed
	}

	if diagramData == nil {
		diagramData = map[string]interface{}{}
	}
	now := time.Now().UTC()
	newHash := diagram.Fingerprint(diagramData)

	if newHash != session.DiagramHash {
		if err := s.Store.SaveDiagram(ctx, sessionID, diagramData, newHash, timeSpent, now); err != nil {
			return nil, fmt.Errorf("save diagram: %w", err)
		}
		session.Diagram = diagramData
		session.DiagramHash = newHash
	} else {
		if err := s.Store.SaveTime(ctx, sessionID, timeSpent, now); err != nil {
			return nil, fmt.Errorf("save time: %w", err)
		}
	}

	session.TimeSpent = timeSpent
	session.LastSavedAt = now
	session.UpdatedAt = now
	return session, nil
}

// Pause records the current time spent and parks the session.
func (s *SessionService) Pause(ctx context.Context, sessionID, userID string, timeSpent int) (*models.PracticeSession, error) {
	session, err := s.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, ErrSessionClosed
	}

	now := time.Now().UTC()
	if err := s.Store.UpdateStatus(ctx, sessionID, models.StatusPaused, &timeSpent, nil, now); err != nil {
		return nil, err
	}
	session.Status = models.StatusPaused
	session.TimeSpent = timeSpent
	session.UpdatedAt = now
	return session, nil
}

// Resume brings a paused session back to active.
func (s *SessionService) Resume(ctx context.Context, sessionID, userID string) (*models.PracticeSession, error) {
	session, err := s.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, ErrSessionClosed
	}

	now := time.Now().UTC()
	if err := s.Store.UpdateStatus(ctx, sessionID, models.StatusActive, nil, nil, now); err != nil {
		return nil, err
	}
	session.Status = models.StatusActive
	session.UpdatedAt = now
	return session, nil
}

// AppendMessage appends a chat turn to the session's ordered log. It does
// not otherwise mutate session state.
func (s *SessionService) AppendMessage(ctx context.Context, sessionID, userID, role, content string) (*models.PracticeSession, error) {
	session, err := s.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, ErrSessionClosed
	}

	msg := models.ChatMessage{
		Kind:      models.MessageKindChat,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := s.Store.AppendMessage(ctx, sessionID, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	session.ChatMessages = append(session.ChatMessages, msg)
	return session, nil
}

// MarkSubmitted freezes the session. Terminal: the diagram, fingerprint,
// and message log are immutable afterwards.
func (s *SessionService) MarkSubmitted(ctx context.Context, sessionID, userID string) error {
	session, err := s.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if session.Status == models.StatusSubmitted {
		return ErrAlreadySubmitted
	}
	if session.Status == models.StatusAbandoned {
		return ErrSessionClosed
	}

	now := time.Now().UTC()
	return s.Store.UpdateStatus(ctx, sessionID, models.StatusSubmitted, nil, &now, now)
}

// Abandon marks the session abandoned. Already-terminal sessions are left
// untouched so the call is idempotent.
func (s *SessionService) Abandon(ctx context.Context, sessionID, userID string) (*models.PracticeSession, error) {
	session, err := s.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return session, nil
	}

	now := time.Now().UTC()
	if err := s.Store.UpdateStatus(ctx, sessionID, models.StatusAbandoned, nil, &now, now); err != nil {
		return nil, err
	}
	session.Status = models.StatusAbandoned
	session.EndedAt = &now
	session.UpdatedAt = now
	return session, nil
}

// CleanupAbandoned physically deletes abandoned sessions older than the
// retention window. Called from the background cleanup loop.
func (s *SessionService) CleanupAbandoned(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := s.Store.DeleteAbandonedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("Session cleanup removed %d abandoned sessions older than %s", deleted, retention)
	}
	return deleted, nil
}
