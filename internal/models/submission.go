package models

import "time"

// Feedback is the structured outcome of evaluating a diagram against the
// problem requirements.
type Feedback struct {
	Implemented []string `bson:"implemented" json:"implemented"`
	Missing     []string `bson:"missing" json:"missing"`
	NextSteps   []string `bson:"next_steps" json:"next_steps"`
	Summary     string   `bson:"summary" json:"summary"`
}

// BreakdownItem scores a single problem requirement.
type BreakdownItem struct {
	Requirement string  `bson:"requirement" json:"requirement"`
	Achieved    bool    `bson:"achieved" json:"achieved"`
	Points      float64 `bson:"points" json:"points"`
	Note        string  `bson:"note" json:"note"`
}

// Resource is one recommended learning resource (video or document).
type Resource struct {
	Title   string `bson:"title" json:"title"`
	URL     string `bson:"url" json:"url"`
	Channel string `bson:"channel,omitempty" json:"channel,omitempty"`
	Source  string `bson:"source,omitempty" json:"source,omitempty"`
	Reason  string `bson:"reason" json:"reason"`
}

// Resources groups recommendations by category. Either list may be empty
// when the corresponding fetch failed or returned nothing.
type Resources struct {
	Videos    []Resource `bson:"videos" json:"videos"`
	Documents []Resource `bson:"documents" json:"documents"`
}

// EvaluationResult is the aggregated best-effort output of the submission
// evaluation pipeline.
type EvaluationResult struct {
	Score     float64         `bson:"score" json:"score"`
	MaxScore  float64         `bson:"max_score" json:"max_score"`
	Breakdown []BreakdownItem `bson:"breakdown" json:"breakdown"`
	Feedback  Feedback        `bson:"feedback" json:"feedback"`
	Tips      []string        `bson:"tips" json:"tips"`
	Resources Resources       `bson:"resources" json:"resources"`
}

// Submission is the immutable record of a finalized evaluation. Only the
// chat log may grow after creation; score and feedback never change.
type Submission struct {
	ID           string                 `bson:"_id,omitempty" json:"id"`
	UserID       string                 `bson:"user_id" json:"user_id"`
	ProblemID    string                 `bson:"problem_id" json:"problem_id"`
	SessionID    string                 `bson:"session_id" json:"session_id"`
	Diagram      map[string]interface{} `bson:"diagram_data" json:"diagram_data"`
	Score        float64                `bson:"score" json:"score"`
	MaxScore     float64                `bson:"max_score" json:"max_score"`
	Breakdown    []BreakdownItem        `bson:"breakdown" json:"breakdown"`
	Feedback     Feedback               `bson:"feedback" json:"feedback"`
	Tips         []string               `bson:"tips" json:"tips"`
	Resources    Resources              `bson:"resources" json:"resources"`
	ChatMessages []ChatMessage          `bson:"chat_messages" json:"chat_messages"`
	TimeSpent    int                    `bson:"time_spent" json:"time_spent"`
	Status       string                 `bson:"status" json:"status"`
	SubmittedAt  time.Time              `bson:"submitted_at" json:"submitted_at"`
	UpdatedAt    time.Time              `bson:"updated_at" json:"updated_at"`
}
