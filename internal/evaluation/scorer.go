package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const scoringSystemPrompt = `You are an expert system design evaluator. Score a student's system design diagram against the problem requirements.

Evaluation criteria: component completeness, connections and data flow, scalability, best practices, labeling and clarity.

Return ONLY a valid JSON object with these keys:
- "score": number (0-100, realistic and fair)
- "implemented": array of 3-6 strings describing what's done well
- "missing": array of 2-5 strings describing what's missing or incorrect
- "breakdown": array of objects with {"requirement": string, "achieved": boolean, "points": number, "note": string}

Be encouraging but accurate. Reference actual components from the diagram by name.`

// LLMScorer scores solutions with an OpenAI-compatible chat model. A
// missing API key or a malformed model response never produces an error:
// the result degrades to defaults instead.
type LLMScorer struct {
	client *openai.Client
	model  string
}

func NewLLMScorer(apiKey, baseURL, model string) *LLMScorer {
	if apiKey == "" {
		return &LLMScorer{model: model}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMScorer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (s *LLMScorer) Score(ctx context.Context, problem *models.Problem, summary *diagram.Summary) (*ScoringResult, error) {
	if s.client == nil {
		log.Println("Scoring skipped: no evaluator credentials configured")
		return unscoredResult("Evaluation unavailable: no evaluator credentials configured"), nil
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scoringSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: scoringUserPrompt(problem, summary)},
		},
	})
	if err != nil {
		log.Printf("Scoring request failed: %v", err)
		return unscoredResult("Evaluation unavailable: the scoring service did not respond"), nil
	}
	if len(resp.Choices) == 0 {
		return unscoredResult("Evaluation unavailable: empty scoring response"), nil
	}

	result := parseScoring(resp.Choices[0].Message.Content)
	log.Printf("Scoring complete: %.0f/%.0f", result.Score, result.MaxScore)
	return result, nil
}

func scoringUserPrompt(problem *models.Problem, summary *diagram.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem:\n%s\n\nDescription:\n%s\n\nRequirements:\n", problem.Title, problem.Description)
	for i, req := range problem.Requirements {
		fmt.Fprintf(&b, "%d. %s\n", i+1, req)
	}
	fmt.Fprintf(&b, "\nStudent's Diagram:\n%s\n", summary.Format())
	fmt.Fprintf(&b, "\nDiagram Statistics:\n- Total elements: %d\n- Components: %d\n- Arrows: %d\n- Text labels: %d\n",
		summary.TotalElements, len(summary.Components), len(summary.Connections), len(summary.Labels))
	b.WriteString("\nProvide a comprehensive score and detailed feedback in JSON format.")
	return b.String()
}

type scoringPayload struct {
	Score       *float64 `json:"score"`
	Implemented []string `json:"implemented"`
	Missing     []string `json:"missing"`
	Breakdown   []struct {
		Requirement string  `json:"requirement"`
		Achieved    bool    `json:"achieved"`
		Points      float64 `json:"points"`
		Note        string  `json:"note"`
	} `json:"breakdown"`
}

// parseScoring validates the model's JSON. Unparseable output gives the
// zero-score result; individually missing fields are defaulted so a partial
// response still yields a usable evaluation.
func parseScoring(content string) *ScoringResult {
	var payload scoringPayload
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		log.Printf("Scoring response is not valid JSON: %v", err)
		return unscoredResult("Evaluation failed: the scoring service returned an unreadable response")
	}

	result := &ScoringResult{MaxScore: 100}

	if payload.Score != nil {
		result.Score = clampScore(*payload.Score)
	} else {
		result.Score = 50
	}

	result.Implemented = payload.Implemented
	if result.Implemented == nil {
		result.Implemented = []string{"Diagram structure created"}
	}
	result.Missing = payload.Missing
	if result.Missing == nil {
		result.Missing = []string{"Some requirements may need attention"}
	}

	if len(payload.Breakdown) > 0 {
		result.Breakdown = make([]models.BreakdownItem, 0, len(payload.Breakdown))
		for _, item := range payload.Breakdown {
			result.Breakdown = append(result.Breakdown, models.BreakdownItem{
				Requirement: item.Requirement,
				Achieved:    item.Achieved,
				Points:      item.Points,
				Note:        item.Note,
			})
		}
	} else {
		result.Breakdown = []models.BreakdownItem{{
			Requirement: "Overall Design",
			Achieved:    result.Score >= 60,
			Points:      result.Score,
			Note:        "Evaluated as a whole",
		}}
	}

	return result
}

// unscoredResult is the fixed zero-score shape used when no real evaluation
// happened. The note tells the learner why.
func unscoredResult(note string) *ScoringResult {
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

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// stripCodeFence removes a surrounding markdown code fence, which chat
// models add despite instructions.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
