package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const tipsSystemPrompt = `You are a supportive system design mentor. Generate 4-6 specific, actionable tips to help the student improve their solution.

Tips should be concrete, reference specific components or patterns, progress from quick wins to deeper architectural improvements, and relate directly to the missing concepts and current score.

Return ONLY a JSON array of tip strings, no markdown or explanatory text.`

const maxTips = 6

// LLMTipGenerator derives improvement tips from a scoring result. It may
// legitimately return an empty list, including when no credentials are
// configured.
type LLMTipGenerator struct {
	client *openai.Client
	model  string
}

func NewLLMTipGenerator(apiKey, baseURL, model string) *LLMTipGenerator {
	if apiKey == "" {
		return &LLMTipGenerator{model: model}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMTipGenerator{client: openai.NewClientWithConfig(cfg), model: model}
}

func (g *LLMTipGenerator) Generate(ctx context.Context, problem *models.Problem, scoring *ScoringResult, summary *diagram.Summary) ([]string, error) {
	if g.client == nil {
		return []string{}, nil
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: tipsSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: tipsUserPrompt(problem, scoring, summary)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tips request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return []string{}, nil
	}

	return parseTips(resp.Choices[0].Message.Content)
}

func tipsUserPrompt(problem *models.Problem, scoring *ScoringResult, summary *diagram.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem: %s\n\nStudent's Score: %.0f/%.0f\n\nWhat they did well:\n", problem.Title, scoring.Score, scoring.MaxScore)
	writeBulleted(&b, scoring.Implemented, "Nothing identified yet")
	b.WriteString("\nWhat's missing or needs improvement:\n")
	writeBulleted(&b, scoring.Missing, "No specific gaps identified")
	summaryText := summary.Format()
	if len(summaryText) > 600 {
		summaryText = summaryText[:600]
	}
	fmt.Fprintf(&b, "\nTheir current diagram summary:\n%s\n", summaryText)
	b.WriteString("\nGenerate 4-6 specific, actionable tips focused on the missing concepts.")
	return b.String()
}

func writeBulleted(b *strings.Builder, items []string, empty string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "- %s\n", empty)
		return
	}
	for i, item := range items {
		if i >= 5 {
			break
		}
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func parseTips(content string) ([]string, error) {
	var tips []string
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &tips); err != nil {
		return nil, fmt.Errorf("tips response is not a JSON array: %w", err)
	}
	cleaned := make([]string, 0, len(tips))
	for _, tip := range tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			cleaned = append(cleaned, tip)
		}
		if len(cleaned) == maxTips {
			break
		}
	}
	return cleaned, nil
}
