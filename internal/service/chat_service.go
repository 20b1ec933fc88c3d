package service

import (
	"context"
	"log"

	"design-practice-service/internal/diagram"
	"design-practice-service/internal/models"
)

// Assistant is the insights-chat collaborator. History comes from the
// session's durable message log, not from any in-process map, so replies
// survive restarts and follow the session wherever it is served.
type Assistant interface {
	Reply(ctx context.Context, problem *models.Problem, summary *diagram.Summary, history []models.ChatMessage, userMessage string) (string, error)
}

// chatHistoryLimit caps the prompt context at 20 messages (10 exchanges).
const chatHistoryLimit = 20

type ChatService struct {
	Sessions  *SessionService
	Problems  ProblemStore
	Assistant Assistant
}

func NewChatService(sessions *SessionService, problems ProblemStore, assistant Assistant) *ChatService {
	return &ChatService{Sessions: sessions, Problems: problems, Assistant: assistant}
}

// Send appends the user's message, asks the assistant for a reply with the
// session's recent chat history and current diagram as context, and appends
// the reply. An assistant failure degrades to a fallback message.
func (s *ChatService) Send(ctx context.Context, sessionID, userID, content string) (*models.PracticeSession, string, error) {
	session, err := s.Sessions.AppendMessage(ctx, sessionID, userID, "user", content)
	if err != nil {
		return nil, "", err
	}

	problem, err := s.Problems.FindByID(ctx, session.ProblemID)
	if err != nil {
		problem = &models.Problem{Title: "System Design Problem"}
	}

	history := chatHistory(session.ChatMessages)
	summary := diagram.Summarize(session.Diagram)

	reply, err := s.Assistant.Reply(ctx, problem, summary, history, content)
	if err != nil {
		log.Printf("Assistant reply degraded for session %s: %v", sessionID, err)
		reply = "The assistant is unavailable right now. Keep working on your diagram and try again shortly."
	}

	session, err = s.Sessions.AppendMessage(ctx, sessionID, userID, "assistant", reply)
	if err != nil {
		return nil, "", err
	}
	return session, reply, nil
}

// chatHistory returns the most recent plain chat turns, excluding the just
// appended user message and any feedback entries.
func chatHistory(messages []models.ChatMessage) []models.ChatMessage {
	chat := make([]models.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Kind == models.MessageKindChat {
			chat = append(chat, msg)
		}
	}
	if len(chat) > 0 {
		chat = chat[:len(chat)-1]
	}
	if len(chat) > chatHistoryLimit {
		chat = chat[len(chat)-chatHistoryLimit:]
	}
	return chat
}
