package main

import (
	"context"
	"log"
	"time"

	"design-practice-service/configs"
	"design-practice-service/internal/db"
	"design-practice-service/internal/evaluation"
	"design-practice-service/internal/event"
	"design-practice-service/internal/handlers"
	"design-practice-service/internal/repository"
	"design-practice-service/internal/service"
	"design-practice-service/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configs.LoadConfig()
	cfg := configs.AppConfig

	gin.SetMode(cfg.GinMode)
	db.InitMongo(cfg.MongoURI)
	defer db.Close()

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, lifecycle events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database(cfg.MongoDatabase)

	// Repositories
	sessionRepo := repository.NewSessionRepository(database)
	submissionRepo := repository.NewSubmissionRepository(database)
	problemRepo := repository.NewProblemRepository(database)

	// Evaluation collaborators
	scorer := evaluation.NewLLMScorer(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.ScoringModel)
	tips := evaluation.NewLLMTipGenerator(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.TipsModel)
	videos := evaluation.NewYouTubeFetcher(cfg.YouTubeAPIKey)
	docs := evaluation.NewDocsFetcher(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.DocsModel)
	checker := evaluation.NewLLMChecker(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.ScoringModel)
	assistant := evaluation.NewLLMAssistant(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.ChatModel)
	orchestrator := evaluation.NewOrchestrator(scorer, tips, videos, docs)

	// Services
	sessionService := service.NewSessionService(sessionRepo)
	feedbackService := service.NewFeedbackService(sessionRepo, problemRepo, checker)
	chatService := service.NewChatService(sessionService, problemRepo, assistant)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, sessionService, orchestrator)
	problemService := service.NewProblemService(problemRepo)

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessionService, feedbackService, chatService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	problemHandler := handlers.NewProblemHandler(problemService)

	// Public routes - Problems
	publicProblem := r.Group("/public/design/problem")
	{
		publicProblem.GET("/", problemHandler.ListProblems)
		publicProblem.GET("/:id", problemHandler.GetProblem)
	}

	protectedProblem := r.Group("/protected/design/problem")
	protectedProblem.Use(authMiddleware())
	{
		protectedProblem.POST("/", problemHandler.CreateProblem)
		protectedProblem.PUT("/:id", problemHandler.UpdateProblem)
		protectedProblem.DELETE("/:id", problemHandler.DeleteProblem)
	}

	setupSessionRoutes(r, sessionHandler, publisher)
	setupSubmissionRoutes(r, submissionHandler, publisher)

	// Retention cleanup for abandoned sessions
	go runSessionCleanup(sessionService, cfg)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func setupSessionRoutes(r *gin.Engine, h *handlers.SessionHandler, publisher *event.EventPublisher) {
	protected := r.Group("/protected/design/session")
	protected.Use(authMiddleware())
	{
		protected.POST("/", func(c *gin.Context) {
			h.StartOrResume(c)
			if publisher != nil {
				publisher.Publish("design.session.started", gin.H{"user_id": c.GetString("userID")})
			}
		})
		protected.GET("/:id", h.GetSession)
		protected.GET("/problem/:problemId", h.GetSessionForProblem)
		protected.GET("/user/sessions", h.ListMySessions)
		protected.PUT("/:id/autosave", h.Autosave)
		protected.POST("/:id/pause", func(c *gin.Context) {
			h.PauseSession(c)
			if publisher != nil {
				publisher.Publish("design.session.paused", gin.H{"session_id": c.Param("id"), "user_id": c.GetString("userID")})
			}
		})
		protected.POST("/:id/resume", func(c *gin.Context) {
			h.ResumeSession(c)
			if publisher != nil {
				publisher.Publish("design.session.resumed", gin.H{"session_id": c.Param("id"), "user_id": c.GetString("userID")})
			}
		})
		protected.POST("/:id/chat", h.AddChatMessage)
		protected.POST("/:id/check", func(c *gin.Context) {
			h.CheckSolution(c)
			if publisher != nil {
				publisher.Publish("design.session.checked", gin.H{"session_id": c.Param("id"), "user_id": c.GetString("userID")})
			}
		})
		protected.DELETE("/:id", func(c *gin.Context) {
			h.AbandonSession(c)
			if publisher != nil {
				publisher.Publish("design.session.abandoned", gin.H{"session_id": c.Param("id"), "user_id": c.GetString("userID")})
			}
		})
	}
}

func setupSubmissionRoutes(r *gin.Engine, h *handlers.SubmissionHandler, publisher *event.EventPublisher) {
	protected := r.Group("/protected/design/submission")
	protected.Use(authMiddleware())
	{
		protected.POST("/from-session/:sessionId", func(c *gin.Context) {
			h.SubmitFromSession(c)
			if publisher != nil {
				publisher.Publish("design.submission.created", gin.H{"session_id": c.Param("sessionId"), "user_id": c.GetString("userID")})
			}
		})
		protected.GET("/:id", h.GetSubmission)
		protected.GET("/user/submissions", h.ListMySubmissions)
		protected.GET("/problem/:problemId", h.GetSubmissionForProblem)
		protected.POST("/:id/chat", h.AddChatMessage)
		protected.DELETE("/:id", h.DeleteSubmission)
	}
}

// authMiddleware resolves the caller from the JWT Authorization header or
// the gateway's X-User-ID header and stores it in the request context.
func authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := utils.GetUserIDFromToken(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid token")
			c.Abort()
			return
		}
		if userID == "" {
			utils.UnauthorizedResponse(c, "Authentication required")
			c.Abort()
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func runSessionCleanup(sessions *service.SessionService, cfg *configs.Config) {
	retention := time.Duration(cfg.SessionRetentionDays) * 24 * time.Hour
	interval := time.Duration(cfg.CleanupIntervalHours) * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := sessions.CleanupAbandoned(ctx, retention); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
		cancel()
	}
}
