package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intellimanage/platform/internal/activity"
	"github.com/intellimanage/platform/internal/ai"
	"github.com/intellimanage/platform/internal/auth"
	"github.com/intellimanage/platform/internal/authz"
	"github.com/intellimanage/platform/internal/config"
	"github.com/intellimanage/platform/internal/database"
	"github.com/intellimanage/platform/internal/handlers"
	"github.com/intellimanage/platform/internal/logger"
	"github.com/intellimanage/platform/internal/middleware"
	"github.com/intellimanage/platform/internal/notify"
	"github.com/intellimanage/platform/internal/ratelimit"
	"github.com/intellimanage/platform/internal/services"
	"github.com/intellimanage/platform/internal/storage"
	"github.com/intellimanage/platform/internal/store"
	"github.com/intellimanage/platform/internal/workflow"
)

func main() {
	var cfg config.Config
	if err := config.Load("INTELLIMANAGE_", &cfg); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "http://localhost:5173"
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	logger.Init(cfg.Log)

	db, err := database.NewDB(cfg.DB)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database", "host", cfg.DB.Host, "name", cfg.DB.Name)

	az, err := authz.New()
	if err != nil {
		logger.Error("failed to initialize authorization", "error", err)
		os.Exit(1)
	}

	objects, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}
	if !objects.Enabled() {
		logger.Warn("object storage not configured, attachments disabled")
	}

	// Services
	authService := auth.NewService(db.Pool)
	userService := services.NewUserService(db.Pool)
	projectService := services.NewProjectService(db.Pool)
	sprintService := services.NewSprintService(db.Pool, projectService)

	activityStore := store.NewActivityStore(db.Pool)
	recorder := activity.NewRecorder(activityStore)
	taskService := services.NewTaskService(db.Pool, userService, recorder)
	dashboardService := services.NewDashboardService(projectService, sprintService, taskService)

	mailer := notify.NewMailer(cfg.SMTP)
	invitationStore := store.NewInvitationStore(db.Pool)
	workflowService := workflow.NewService(invitationStore, userService, projectService, mailer)

	attachmentStore := store.NewAttachmentStore(db.Pool)
	commentStore := store.NewCommentStore(db.Pool)
	aiClient := ai.NewClient(cfg.AI.URL, cfg.AI.Key)
	assistantGuard := ratelimit.NewDefaultGuard()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService, userService, az)
	sprintHandler := handlers.NewSprintHandler(sprintService, taskService, projectHandler, az)
	taskHandler := handlers.NewTaskHandler(taskService, userService, projectHandler, recorder, az)
	invitationHandler := handlers.NewInvitationHandler(workflowService, projectHandler, az)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, projectHandler)
	assistantHandler := handlers.NewAssistantHandler(aiClient, az)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentStore, taskService, projectHandler, objects, az)
	commentHandler := handlers.NewCommentHandler(commentStore, taskService, userService, projectHandler, az)

	// Periodically drop expired sessions.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				n, err := authService.CleanupExpiredSessions(cleanupCtx)
				if err != nil {
					logger.Error("session cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Info("cleaned up expired sessions", "count", n)
				}
			}
		}
	}()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigin))
	router.Use(middleware.AuthMiddleware(authService))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.AuthRateLimitMiddleware())
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", authHandler.Me)
		}

		api.GET("/users", userHandler.List)

		api.POST("/projects", projectHandler.Create)
		api.GET("/projects", projectHandler.List)
		api.GET("/projects/:id", projectHandler.Get)
		api.PUT("/projects/:id", projectHandler.Update)
		api.DELETE("/projects/:id", projectHandler.Delete)
		api.GET("/projects/:id/members", projectHandler.Members)
		api.DELETE("/projects/:id/members/:userId", projectHandler.RemoveMember)
		api.GET("/projects/:id/dashboard", dashboardHandler.Get)

		api.POST("/projects/:id/sprints", sprintHandler.Create)
		api.GET("/projects/:id/sprints", sprintHandler.List)
		api.GET("/sprints/:id", sprintHandler.Get)
		api.PUT("/sprints/:id", sprintHandler.Update)
		api.DELETE("/sprints/:id", sprintHandler.Delete)

		api.POST("/projects/:id/tasks", taskHandler.Create)
		api.GET("/projects/:id/tasks", taskHandler.ListByProject)
		api.GET("/projects/:id/tasks/me", taskHandler.ListMine)
		api.GET("/tasks/:id", taskHandler.Get)
		api.PUT("/tasks/:id", taskHandler.Update)
		api.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
		api.DELETE("/tasks/:id", taskHandler.Delete)
		api.GET("/tasks/:id/activities", taskHandler.Activities)

		api.POST("/projects/:id/invitations", invitationHandler.Send)
		api.GET("/projects/:id/invitations", invitationHandler.ListForProject)
		api.GET("/invitations/me", invitationHandler.ListMine)
		api.POST("/invitations/:id/accept", invitationHandler.Accept)
		api.POST("/invitations/:id/reject", invitationHandler.Reject)

		api.POST("/tasks/:id/attachments", attachmentHandler.Upload)
		api.GET("/tasks/:id/attachments", attachmentHandler.List)
		api.GET("/attachments/:id", attachmentHandler.Download)
		api.DELETE("/attachments/:id", attachmentHandler.Delete)

		api.POST("/tasks/:id/comments", commentHandler.Create)
		api.GET("/tasks/:id/comments", commentHandler.List)
		api.DELETE("/comments/:id", commentHandler.Delete)

		api.POST("/ai/generate", middleware.AssistantRateLimitMiddleware(assistantGuard), assistantHandler.Generate)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}
