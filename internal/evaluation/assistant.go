package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const assistantSystemPrompt = `You are a System Design Expert helping a student learn.

Guidelines:
- Give hints, NOT direct solutions
- Guide step by step
- Reference their actual diagram components
- Be concise (2-4 sentences)
- Be encouraging

You'll receive the problem details, the current diagram structure, and the student's question.`

// LLMAssistant powers the practice-page insights chat.
type LLMAssistant struct {
	client *openai.Client
	model  string
}

func NewLLMAssistant(apiKey, baseURL, model string) *LLMAssistant {
	if apiKey == "" {
		return &LLMAssistant{model: model}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMAssistant{client: openai.NewClientWithConfig(cfg), model: model}
}

func (a *LLMAssistant) Reply(ctx context.Context, problem *models.Problem, summary *diagram.Summary, history []models.ChatMessage, userMessage string) (string, error) {
	if a.client == nil {
		return "", errors.New("assistant not configured: missing API key")
	}

	requirements := problem.Requirements
	if len(requirements) > 7 {
		requirements = requirements[:7]
	}
	problemContext := fmt.Sprintf("Problem: %s\nDescription: %s\nRequirements: %s",
		problem.Title, problem.Description, strings.Join(requirements, ", "))

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "Problem Context:\n" + problemContext},
		{Role: openai.ChatMessageRoleUser, Content: "Current Diagram:\n" + summary.Format()},
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.7,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("assistant request: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
