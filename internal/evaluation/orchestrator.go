package evaluation

import (
	"context"
	"log"
	"sync"
	"time"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"
)

const defaultFetchTimeout = 15 * time.Second

// Orchestrator runs the submission evaluation pipeline: scoring first, then
// tips derived from the score, then videos and documents fetched
// concurrently. Collaborators are injected so tests substitute fakes.
type Orchestrator struct {
	Scorer Scorer
	Tips   TipGenerator
	Videos ResourceFetcher
	Docs   ResourceFetcher

	// FetchTimeout bounds each resource fetch. Zero means the default.
	FetchTimeout time.Duration
}

func NewOrchestrator(scorer Scorer, tips TipGenerator, videos, docs ResourceFetcher) *Orchestrator {
	return &Orchestrator{
		Scorer: scorer,
		Tips:   tips,
		Videos: videos,
		Docs:   docs,
	}
}

// Evaluate turns a frozen diagram into a complete EvaluationResult. A
// failure in any single phase degrades that phase's contribution; only an
// empty diagram aborts the evaluation.
func (o *Orchestrator) Evaluate(ctx context.Context, problem *models.Problem, diagramData map[string]interface{}) (*models.EvaluationResult, error) {
	summary := diagram.Summarize(diagramData)
	if summary.IsEmpty() {
		return nil, ErrEmptyDiagram
	}

	// Phase 1: scoring. Blocking, because every later phase consumes the
	// missing-concept list.
	scoring, err := o.Scorer.Score(ctx, problem, summary)
	if err != nil {
		log.Printf("Scoring degraded for problem %s: %v", problem.ID, err)
		scoring = fallbackScoring("Evaluation failed: " + err.Error())
	}

	// Phase 2: tips, personalized from the scoring result.
	tips, err := o.Tips.Generate(ctx, problem, scoring, summary)
	if err != nil {
		log.Printf("Tip generation degraded for problem %s: %v", problem.ID, err)
		tips = nil
	}
	if tips == nil {
		tips = []string{}
	}

	// Phase 3: the two resource fetches have no data dependency on each
	// other. Fan out, join, and let each branch fail on its own.
	var wg sync.WaitGroup
	var videos, docs []models.Resource
	wg.Add(2)
	go func() {
		defer wg.Done()
		videos = o.fetchResources(ctx, o.Videos, "videos", problem, scoring.Missing)
	}()
	go func() {
		defer wg.Done()
		docs = o.fetchResources(ctx, o.Docs, "documents", problem, scoring.Missing)
	}()
	wg.Wait()

	nextSteps := tips
	if len(nextSteps) > 3 {
		nextSteps = nextSteps[:3]
	}

	return &models.EvaluationResult{
		Score:     scoring.Score,
		MaxScore:  scoring.MaxScore,
		Breakdown: scoring.Breakdown,
		Feedback: models.Feedback{
			Implemented: scoring.Implemented,
			Missing:     scoring.Missing,
			NextSteps:   nextSteps,
			Summary:     scoring.Note,
		},
		Tips: tips,
		Resources: models.Resources{
			Videos:    videos,
			Documents: docs,
		},
	}, nil
}

func (o *Orchestrator) fetchResources(ctx context.Context, fetcher ResourceFetcher, category string, problem *models.Problem, missing []string) []models.Resource {
	timeout := o.FetchTimeout
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resources, err := fetcher.Fetch(fetchCtx, problem, missing)
	if err != nil {
		log.Printf("Resource fetch (%s) degraded for problem %s: %v", category, problem.ID, err)
		return []models.Resource{}
	}
	if resources == nil {
		resources = []models.Resource{}
	}
	return resources
}

// fallbackScoring is the zero-score, fully-missing result used when the
// scoring collaborator fails outright.
func fallbackScoring(note string) *ScoringResult {
	return &ScoringResult{
		Score:       0,
		MaxScore:    100,
		Implemented: []string{},
		Missing:     []string{"The solution could not be evaluated"},
		Breakdown: []models.BreakdownItem{{
			Requirement: "Solution evaluation",
			Achieved:    false,
			Points:      0,
			Note:        note,
		}},
		Note: note,
	}
}
