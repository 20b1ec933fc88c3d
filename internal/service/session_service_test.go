package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// fakeSessionStore is an in-memory SessionStore that counts writes so tests
// can assert which persistence path a call took.
type fakeSessionStore struct {
	sessions map[string]*models.PracticeSession
	nextID   int

	saveDiagramCalls int
	saveTimeCalls    int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*models.PracticeSession{}}
}

func (f *fakeSessionStore) FindByID(ctx context.Context, id string) (*models.PracticeSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *s
	copied.ChatMessages = append([]models.ChatMessage{}, s.ChatMessages...)
	return &copied, nil
}

func (f *fakeSessionStore) FindLiveByUserAndProblem(ctx context.Context, userID, problemID string) (*models.PracticeSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.ProblemID == problemID && s.IsLive() {
			copied := *s
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeSessionStore) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.PracticeSession, error) {
	var out []models.PracticeSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) Create(ctx context.Context, session *models.PracticeSession) error {
	f.nextID++
	session.ID = fmt.Sprintf("session-%d", f.nextID)
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) SaveDiagram(ctx context.Context, id string, diagramData map[string]interface{}, hash string, timeSpent int, now time.Time) error {
	f.saveDiagramCalls++
	s, ok := f.sessions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	s.Diagram = diagramData
	s.DiagramHash = hash
	s.TimeSpent = timeSpent
	s.LastSavedAt = now
	s.UpdatedAt = now
	return nil
}

func (f *fakeSessionStore) SaveTime(ctx context.Context, id string, timeSpent int, now time.Time) error {
	f.saveTimeCalls++
	s, ok := f.sessions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	s.TimeSpent = timeSpent
	s.LastSavedAt = now
	s.UpdatedAt = now
	return nil
}

func (f *fakeSessionStore) UpdateStatus(ctx context.Context, id, status string, timeSpent *int, endedAt *time.Time, now time.Time) error {
	s, ok := f.sessions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	s.Status = status
	if timeSpent != nil {
		s.TimeSpent = *timeSpent
	}
	if endedAt != nil {
		s.EndedAt = endedAt
	}
	s.UpdatedAt = now
	return nil
}

func (f *fakeSessionStore) AppendMessage(ctx context.Context, id string, msg models.ChatMessage) error {
	s, ok := f.sessions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	s.ChatMessages = append(s.ChatMessages, msg)
	s.UpdatedAt = msg.Timestamp
	return nil
}

func (f *fakeSessionStore) AppendFeedback(ctx context.Context, id string, msg models.ChatMessage) error {
	s, ok := f.sessions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	s.ChatMessages = append(s.ChatMessages, msg)
	s.DiagramHash = msg.DiagramHash
	s.UpdatedAt = msg.Timestamp
	return nil
}

func (f *fakeSessionStore) DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, s := range f.sessions {
		if s.Status == models.StatusAbandoned && s.UpdatedAt.Before(cutoff) {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func TestStartOrResume(t *testing.T) {
	store := newFakeSessionStore()
	svc := NewSessionService(store)
	ctx := context.Background()

	first, resumed, err := svc.StartOrResume(ctx, "user-1", "problem-1")
	if err != nil {
		t.Fatalf("StartOrResume failed: %v", err)
	}
	if resumed {
		t.Error("first call should create, not resume")
	}
	if first.Status != models.StatusActive {
		t.Errorf("new session status = %q, want %q", first.Status, models.StatusActive)
	}
	if first.SessionToken == "" {
		t.Error("new session should get a session token")
	}
	if first.DiagramHash != diagram.EmptyFingerprint() {
		t.Errorf("new session hash = %q, want empty-diagram fingerprint", first.DiagramHash)
	}

	second, resumed, err := svc.StartOrResume(ctx, "user-1", "problem-1")
	if err != nil {
		t.Fatalf("StartOrResume failed: %v", err)
	}
	if !resumed {
		t.Error("second call should resume the live session")
	}
	if second.ID != first.ID {
		t.Errorf("resumed session ID = %q, want %q", second.ID, first.ID)
	}
	if len(store.sessions) != 1 {
		t.Errorf("store holds %d sessions, want 1", len(store.sessions))
	}

	// A different problem gets its own session.
	other, resumed, err := svc.StartOrResume(ctx, "user-1", "problem-2")
	if err != nil {
		t.Fatalf("StartOrResume failed: %v", err)
	}
	if resumed {
		t.Error("a new problem should not resume an existing session")
	}
	if other.ID == first.ID {
		t.Error("sessions for different problems must be distinct")
	}
}

func TestStartOrResumeAfterTerminal(t *testing.T) {
	store := newFakeSessionStore()
	svc := NewSessionService(store)
	ctx := context.Background()

	first, _, err := svc.StartOrResume(ctx, "user-1", "problem-1")
	if err != nil {
		t.Fatalf("StartOrResume failed: %v", err)
	}
	if _, err := svc.Abandon(ctx, first.ID, "user-1"); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}

	second, resumed, err := svc.StartOrResume(ctx, "user-1", "problem-1")
	if err != nil {
		t.Fatalf("StartOrResume failed: %v", err)
	}
	if resumed {
		t.Error("terminal sessions must not be resumed")
	}
	if second.ID == first.ID {
		t.Error("a fresh session should be created after the old one is terminal")
	}
}

func TestAutosave(t *testing.T) {
	store := newFakeSessionStore()
	svc := NewSessionService(store)
	ctx := context.Background()

	session, _, err := svc.StartOrResume(ctx, "user-1", "problem-1")
	if err != nil {
		t.Fatalf("StartOrResume failed: %v", err)
	}

	drawn := map[string]interface{}{
		"elements": []interface{}{
			map[string]interface{}{"id": "a", "type": "rectangle"},
		},
	}

	if _, err := svc.Autosave(ctx, session.ID, "user-1", drawn, 30); err != nil {
		t.Fatalf("Autosave failed: %v", err)
	}
	if store.saveDiagramCalls != 1 {
		t.Errorf("saveDiagramCalls = %d, want 1", store.saveDiagramCalls)
	}

	// Unchanged diagram: only the time fields are written.
	updated, err := svc.Autosave(ctx, session.ID, "user-1", drawn, 60)
	if err != nil {
		t.Fatalf("Autosave failed: %v", err)
	}
	if store.saveDiagramCalls != 1 {
		t.Errorf("saveDiagramCalls = %d after unchanged save, want 1", store.saveDiagramCalls)
	}
	if store.saveTimeCalls != 1 {
		t.Errorf("saveTimeCalls = %d, want 1", store.saveTimeCalls)
	}
	if updated.TimeSpent != 60 {
		t.Errorf("TimeSpent = %d, want 60", updated.TimeSpent)
	}

	// Changed diagram writes the full payload again.
	drawn["elements"] = append(drawn["elements"].([]interface{}),
		map[string]interface{}{"id": "b", "type": "ellipse"})
	if _, err := svc.Autosave(ctx, session.ID, "user-1", drawn, 90); err != nil {
		t.Fatalf("Autosave failed: %v", err)
	}
	if store.saveDiagramCalls != 2 {
		t.Errorf("saveDiagramCalls = %d after changed save, want 2", store.saveDiagramCalls)
	}
}

func TestAutosaveAuthz(t *testing.T) {
	store := newFakeSessionStore()
	svc := NewSessionService(store)
	ctx := context.Background()

	session, _, err := svc.StartOrResume(ctx, "user-1", "problem-1")
	if err != nil {
		t.Fatalf("StartOrResume failed: %v", err)
	}

	_, err = svc.Autosave(ctx, session.ID, "user-2", map[string]interface{}{"elements": []interface{}{1}}, 10)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign autosave error = %v, want ErrForbidden", err)
	}
	if store.saveDiagramCalls != 0 || store.saveTimeCalls != 0 {
		t.Error("a forbidden autosave must not write anything")
	}

	_, err = svc.Autosave(ctx, "missing", "user-1", nil, 10)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing session error = %v, want ErrNotFound", err)
	}
}

func TestAutosaveOnTerminalSession(t *testing.T) {
	store := newFakeSessionStore()
	svc := NewSessionService(store)
	ctx := context.Background()

	session, _, err := svc.StartOrResume(ctx, "user-1", "problem-1")
	if err != nil {
		t.Fatalf("StartOrResume failed: %v", err)
	}
	if _, err := svc.Abandon(ctx, session.ID, "user-1"); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}

	_, err = svc.Autosave(ctx, session.ID, "user-1", map[string]interface{}{"elements": []interface{}{1}}, 5)
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("terminal autosave error = %v, want ErrSessionClosed", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("pause and resume", func(t *testing.T) {
		store := newFakeSessionStore()
		svc := NewSessionService(store)
		session, _, _ := svc.StartOrResume(ctx, "user-1", "problem-1")

		paused, err := svc.Pause(ctx, session.ID, "user-1", 120)
		if err != nil {
			t.Fatalf("Pause failed: %v", err)
		}
		if paused.Status != models.StatusPaused || paused.TimeSpent != 120 {
			t.Errorf("paused session = (%q, %d), want (paused, 120)", paused.Status, paused.TimeSpent)
		}

		resumed, err := svc.Resume(ctx, session.ID, "user-1")
		if err != nil {
			t.Fatalf("Resume failed: %v", err)
		}
		if resumed.Status != models.StatusActive {
			t.Errorf("resumed status = %q, want active", resumed.Status)
		}
	})

	t.Run("submitted is terminal", func(t *testing.T) {
		store := newFakeSessionStore()
		svc := NewSessionService(store)
		session, _, _ := svc.StartOrResume(ctx, "user-1", "problem-1")

		if err := svc.MarkSubmitted(ctx, session.ID, "user-1"); err != nil {
			t.Fatalf("MarkSubmitted failed: %v", err)
		}
		if store.sessions[session.ID].EndedAt == nil {
			t.Error("submitted session should record ended_at")
		}

		if err := svc.MarkSubmitted(ctx, session.ID, "user-1"); !errors.Is(err, ErrAlreadySubmitted) {
			t.Errorf("repeat submit error = %v, want ErrAlreadySubmitted", err)
		}
		if _, err := svc.Pause(ctx, session.ID, "user-1", 0); !errors.Is(err, ErrSessionClosed) {
			t.Errorf("pause of submitted session error = %v, want ErrSessionClosed", err)
		}
		if _, err := svc.Resume(ctx, session.ID, "user-1"); !errors.Is(err, ErrSessionClosed) {
			t.Errorf("resume of submitted session error = %v, want ErrSessionClosed", err)
		}
	})

	t.Run("abandon is idempotent", func(t *testing.T) {
		store := newFakeSessionStore()
		svc := NewSessionService(store)
		session, _, _ := svc.StartOrResume(ctx, "user-1", "problem-1")

		first, err := svc.Abandon(ctx, session.ID, "user-1")
		if err != nil {
			t.Fatalf("Abandon failed: %v", err)
		}
		if first.Status != models.StatusAbandoned {
			t.Errorf("status = %q, want abandoned", first.Status)
		}

		again, err := svc.Abandon(ctx, session.ID, "user-1")
		if err != nil {
			t.Fatalf("repeat Abandon failed: %v", err)
		}
		if again.Status != models.StatusAbandoned {
			t.Errorf("repeat abandon status = %q, want abandoned", again.Status)
		}
	})

	t.Run("submitted session cannot be abandoned into a different state", func(t *testing.T) {
		store := newFakeSessionStore()
		svc := NewSessionService(store)
		session, _, _ := svc.StartOrResume(ctx, "user-1", "problem-1")

		if err := svc.MarkSubmitted(ctx, session.ID, "user-1"); err != nil {
			t.Fatalf("MarkSubmitted failed: %v", err)
		}
		got, err := svc.Abandon(ctx, session.ID, "user-1")
		if err != nil {
			t.Fatalf("Abandon failed: %v", err)
		}
		if got.Status != models.StatusSubmitted {
			t.Errorf("status = %q, submitted must stay submitted", got.Status)
		}
	})
}

func TestAppendMessage(t *testing.T) {
	store := newFakeSessionStore()
	svc := NewSessionService(store)
	ctx := context.Background()

	session, _, _ := svc.StartOrResume(ctx, "user-1", "problem-1")

	updated, err := svc.AppendMessage(ctx, session.ID, "user-1", "user", "how do I shard this?")
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if len(updated.ChatMessages) != 1 {
		t.Fatalf("message count = %d, want 1", len(updated.ChatMessages))
	}
	msg := updated.ChatMessages[0]
	if msg.Kind != models.MessageKindChat || msg.Role != "user" {
		t.Errorf("message = (%q, %q), want (chat, user)", msg.Kind, msg.Role)
	}

	if _, err := svc.Abandon(ctx, session.ID, "user-1"); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	if _, err := svc.AppendMessage(ctx, session.ID, "user-1", "user", "hello?"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("append to terminal session error = %v, want ErrSessionClosed", err)
	}
}

func TestCleanupAbandoned(t *testing.T) {
	store := newFakeSessionStore()
	svc := NewSessionService(store)
	ctx := context.Background()

	stale := &models.PracticeSession{
		UserID:    "user-1",
		ProblemID: "problem-1",
		Status:    models.StatusAbandoned,
		UpdatedAt: time.Now().UTC().Add(-10 * 24 * time.Hour),
	}
	store.Create(ctx, stale)

	fresh := &models.PracticeSession{
		UserID:    "user-1",
		ProblemID: "problem-2",
		Status:    models.StatusAbandoned,
		UpdatedAt: time.Now().UTC(),
	}
	store.Create(ctx, fresh)

	active := &models.PracticeSession{
		UserID:    "user-2",
		ProblemID: "problem-1",
		Status:    models.StatusActive,
		UpdatedAt: time.Now().UTC().Add(-10 * 24 * time.Hour),
	}
	store.Create(ctx, active)

	deleted, err := svc.CleanupAbandoned(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupAbandoned failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, ok := store.sessions[stale.ID]; ok {
		t.Error("stale abandoned session should be gone")
	}
	if _, ok := store.sessions[fresh.ID]; !ok {
		t.Error("recently abandoned session must survive the retention window")
	}
	if _, ok := store.sessions[active.ID]; !ok {
		t.Error("active sessions must never be cleaned up")
	}
}
