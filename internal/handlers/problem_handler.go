package handlers

import (
	"net/http"

	"design-practice-service/internal/models"
	"design-practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ProblemHandler struct {
	Service *service.ProblemService
}

func NewProblemHandler(s *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{Service: s}
}

func (h *ProblemHandler) ListProblems(c *gin.Context) {
	problems, err := h.Service.ListProblems(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, problems)
}

func (h *ProblemHandler) GetProblem(c *gin.Context) {
	problem, err := h.Service.GetProblem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, problem)
}

func (h *ProblemHandler) CreateProblem(c *gin.Context) {
	var problem models.Problem
	if err := c.ShouldBindJSON(&problem); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.CreateProblem(c.Request.Context(), &problem); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, problem)
}

func (h *ProblemHandler) UpdateProblem(c *gin.Context) {
	var update map[string]any
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.UpdateProblem(c.Request.Context(), c.Param("id"), update); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Problem updated successfully"})
}

func (h *ProblemHandler) DeleteProblem(c *gin.Context) {
	if err := h.Service.DeleteProblem(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
