package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const checkingSystemPrompt = `You are an expert system design reviewer. Compare the student's in-progress diagram against the problem requirements and report concrete, constructive feedback.

Return ONLY a valid JSON object:
- "implemented": array of strings naming requirements the diagram already covers
- "missing": array of strings naming requirements not yet addressed
- "next_steps": array of 2-4 short, actionable suggestions
- "summary": one-sentence overall assessment

Reference actual components from the diagram by name. Give hints, not full solutions.`

// LLMChecker reviews an in-progress diagram for the practice-time feedback
// cache. Unlike the scorer it returns errors: the feedback service decides
// whether to degrade, and a failed check must not be cached.
type LLMChecker struct {
	client *openai.Client
	model  string
}

func NewLLMChecker(apiKey, baseURL, model string) *LLMChecker {
	if apiKey == "" {
		return &LLMChecker{model: model}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMChecker{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *LLMChecker) Check(ctx context.Context, problem *models.Problem, summary *diagram.Summary) (*models.Feedback, error) {
	if c.client == nil {
		return nil, errors.New("checker not configured: missing API key")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: checkingSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: checkingUserPrompt(problem, summary)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("check request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("check request: empty response")
	}

	var payload struct {
		Implemented []string `json:"implemented"`
		Missing     []string `json:"missing"`
		NextSteps   []string `json:"next_steps"`
		Summary     string   `json:"summary"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Choices[0].Message.Content)), &payload); err != nil {
		return nil, fmt.Errorf("check response: %w", err)
	}

	feedback := &models.Feedback{
		Implemented: payload.Implemented,
		Missing:     payload.Missing,
		NextSteps:   payload.NextSteps,
		Summary:     payload.Summary,
	}
	if feedback.Implemented == nil {
		feedback.Implemented = []string{}
	}
	if feedback.Missing == nil {
		feedback.Missing = []string{}
	}
	if feedback.NextSteps == nil {
		feedback.NextSteps = []string{}
	}
	return feedback, nil
}

func checkingUserPrompt(problem *models.Problem, summary *diagram.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== QUESTION ===\nTitle: %s\nDifficulty: %s\n\n", problem.Title, strings.ToUpper(problem.Difficulty))
	if problem.Description != "" {
		fmt.Fprintf(&b, "=== DESCRIPTION ===\n%s\n\n", problem.Description)
	}
	if len(problem.Requirements) > 0 {
		b.WriteString("=== REQUIRED COMPONENTS ===\n")
		for i, req := range problem.Requirements {
			fmt.Fprintf(&b, "%d. %s\n", i+1, req)
		}
		b.WriteString("\n")
	}
	if len(problem.Constraints) > 0 {
		b.WriteString("=== CONSTRAINTS & ASSUMPTIONS ===\n")
		for i, constraint := range problem.Constraints {
			fmt.Fprintf(&b, "%d. %s\n", i+1, constraint)
		}
		b.WriteString("\n")
	}
	b.WriteString(summary.Format())
	return b.String()
}
