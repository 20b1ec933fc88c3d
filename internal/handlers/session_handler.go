package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"design-practice-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionHandler struct {
	Sessions *service.SessionService
	Feedback *service.FeedbackService
	Chat     *service.ChatService
}

func NewSessionHandler(sessions *service.SessionService, feedback *service.FeedbackService, chat *service.ChatService) *SessionHandler {
	return &SessionHandler{
		Sessions: sessions,
		Feedback: feedback,
		Chat:     chat,
	}
}

// StartOrResume returns the caller's live session for a problem, creating
// one when none exists. Calling it repeatedly never creates duplicates.
func (h *SessionHandler) StartOrResume(c *gin.Context) {
	var req struct {
		ProblemID string `json:"problem_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	userID := c.GetString("userID")
	session, resumed, err := h.Sessions.StartOrResume(c.Request.Context(), userID, req.ProblemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"session": session, "resumed": resumed})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Sessions.GetOwned(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionForProblem returns the caller's live session for a problem, or
// null when none exists. It never creates one.
func (h *SessionHandler) GetSessionForProblem(c *gin.Context) {
	session, err := h.Sessions.Store.FindLiveByUserAndProblem(c.Request.Context(), c.GetString("userID"), c.Param("problemId"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusOK, nil)
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) ListMySessions(c *gin.Context) {
	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 100
	}

	sessions, err := h.Sessions.ListByUser(c.Request.Context(), c.GetString("userID"), skip, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(sessions), "sessions": sessions})
}

// Autosave persists the diagram when its fingerprint changed and the time
// tracking on every call.
func (h *SessionHandler) Autosave(c *gin.Context) {
	var req struct {
		DiagramData map[string]interface{} `json:"diagram_data"`
		TimeSpent   int                    `json:"time_spent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid autosave payload", "details": err.Error()})
		return
	}

	session, err := h.Sessions.Autosave(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.DiagramData, req.TimeSpent)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) PauseSession(c *gin.Context) {
	var req struct {
		TimeSpent int `json:"time_spent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pause payload", "details": err.Error()})
		return
	}

	session, err := h.Sessions.Pause(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.TimeSpent)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) ResumeSession(c *gin.Context) {
	session, err := h.Sessions.Resume(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// AddChatMessage appends a message to the session log. When the role is
// "user" and an assistant is wired, the assistant's reply is appended too.
func (h *SessionHandler) AddChatMessage(c *gin.Context) {
	var req struct {
		Role    string `json:"role" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat payload", "details": err.Error()})
		return
	}

	userID := c.GetString("userID")
	sessionID := c.Param("id")

	if req.Role == "user" && h.Chat != nil {
		session, reply, err := h.Chat.Send(c.Request.Context(), sessionID, userID, req.Content)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": session, "reply": reply})
		return
	}

	session, err := h.Sessions.AppendMessage(c.Request.Context(), sessionID, userID, req.Role, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// CheckSolution returns cached feedback for an unchanged diagram or runs a
// fresh review.
func (h *SessionHandler) CheckSolution(c *gin.Context) {
	result, err := h.Feedback.Check(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AbandonSession marks the session abandoned; it stays queryable until the
// retention cleanup removes it.
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	_, err := h.Sessions.Abandon(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
