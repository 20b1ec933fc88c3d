package models

import "time"

// Session status values. Transitions are forward-only except active<->paused.
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusSubmitted = "submitted"
	StatusAbandoned = "abandoned"
)

// Message log entry kinds.
const (
	MessageKindChat     = "chat"
	MessageKindFeedback = "feedback"
)

// ChatMessage is one entry in a session's append-only message log.
// Feedback entries carry the diagram hash they were computed against so the
// checker can reuse them while the diagram is unchanged.
type ChatMessage struct {
	Kind        string    `bson:"kind" json:"kind"`
	Role        string    `bson:"role" json:"role"`
	Content     string    `bson:"content" json:"content"`
	DiagramHash string    `bson:"diagram_hash,omitempty" json:"diagram_hash,omitempty"`
	Feedback    *Feedback `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}

// PracticeSession is one in-progress practice attempt on one problem by one
// user. At most one session per (user, problem) may be active or paused.
type PracticeSession struct {
	ID           string                 `bson:"_id,omitempty" json:"id"`
	UserID       string                 `bson:"user_id" json:"user_id"`
	ProblemID    string                 `bson:"problem_id" json:"problem_id"`
	SessionToken string                 `bson:"session_token" json:"session_token"`
	Diagram      map[string]interface{} `bson:"diagram_data" json:"diagram_data"`
	DiagramHash  string                 `bson:"diagram_hash" json:"diagram_hash"`
	TimeSpent    int                    `bson:"time_spent" json:"time_spent"`
	Status       string                 `bson:"status" json:"status"`
	ChatMessages []ChatMessage          `bson:"chat_messages" json:"chat_messages"`
	StartedAt    time.Time              `bson:"started_at" json:"started_at"`
	LastSavedAt  time.Time              `bson:"last_saved_at" json:"last_saved_at"`
	EndedAt      *time.Time             `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	CreatedAt    time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time              `bson:"updated_at" json:"updated_at"`
}

// IsLive reports whether the session can still be worked on.
func (s *PracticeSession) IsLive() bool {
	return s.Status == StatusActive || s.Status == StatusPaused
}

// IsTerminal reports whether the session reached a terminal state.
func (s *PracticeSession) IsTerminal() bool {
	return s.Status == StatusSubmitted || s.Status == StatusAbandoned
}

// CachedFeedback scans the message log from most recent to oldest and returns
// the first feedback entry tagged with the given diagram hash. Most-recent
// wins: older entries with the same hash (revert-then-redo) are ignored.
func (s *PracticeSession) CachedFeedback(diagramHash string) *ChatMessage {
	for i := len(s.ChatMessages) - 1; i >= 0; i-- {
		msg := &s.ChatMessages[i]
		if msg.Kind == MessageKindFeedback && msg.DiagramHash == diagramHash {
			return msg
		}
	}
	return nil
}
