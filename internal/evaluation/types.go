package evaluation

import (
	"context"
	"errors"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"
)

// ErrEmptyDiagram is returned when evaluation is requested for a canvas
// with no elements. No other condition makes the pipeline fail.
var ErrEmptyDiagram = errors.New("diagram has no elements")

// ScoringResult is the validated output of the scoring collaborator. Fields
// the collaborator omitted or mangled are filled with defaults before the
// result leaves this package.
type ScoringResult struct {
	Score       float64
	MaxScore    float64
	Implemented []string
	Missing     []string
	Breakdown   []models.BreakdownItem
	Note        string
}

// Scorer evaluates a diagram summary against the problem requirements.
type Scorer interface {
	Score(ctx context.Context, problem *models.Problem, summary *diagram.Summary) (*ScoringResult, error)
}

// TipGenerator produces ordered improvement tips from a scoring result. An
// empty list is a legitimate answer.
type TipGenerator interface {
	Generate(ctx context.Context, problem *models.Problem, scoring *ScoringResult, summary *diagram.Summary) ([]string, error)
}

// ResourceFetcher finds learning resources for the concepts a solution is
// missing. Fetchers are independent and best-effort.
type ResourceFetcher interface {
	Fetch(ctx context.Context, problem *models.Problem, missing []string) ([]models.Resource, error)
}
