package handlers

import (
	"net/http"
	"strconv"

	"design-practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	Submissions *service.SubmissionService
}

func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{Submissions: submissions}
}

// SubmitFromSession converts a practice session into a scored, immutable
// submission. Fails for an empty diagram, a foreign or missing session, or
// a session that was already submitted; never for a resource-fetch failure.
func (h *SubmissionHandler) SubmitFromSession(c *gin.Context) {
	submission, err := h.Submissions.SubmitFromSession(c.Request.Context(), c.Param("sessionId"), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Submission created from session successfully",
		"submission": submission,
	})
}

func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	submission, err := h.Submissions.GetOwned(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 100
	}

	submissions, err := h.Submissions.ListByUser(c.Request.Context(), c.GetString("userID"), skip, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(submissions), "skip": skip, "limit": limit, "submissions": submissions})
}

func (h *SubmissionHandler) GetSubmissionForProblem(c *gin.Context) {
	submission, err := h.Submissions.GetForProblem(c.Request.Context(), c.GetString("userID"), c.Param("problemId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// AddChatMessage extends the submission's chat log; the score and feedback
// are frozen.
func (h *SubmissionHandler) AddChatMessage(c *gin.Context) {
	var req struct {
		Role    string `json:"role" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat payload", "details": err.Error()})
		return
	}

	submission, err := h.Submissions.AppendChat(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Role, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Chat message added successfully",
		"id":            submission.ID,
		"chat_messages": submission.ChatMessages,
	})
}

func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	if err := h.Submissions.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
