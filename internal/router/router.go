package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/goodlyheritage/entrex-backend/internal/config"
	"github.com/goodlyheritage/entrex-backend/internal/handler"
	"github.com/goodlyheritage/entrex-backend/internal/middleware"
	"github.com/goodlyheritage/entrex-backend/internal/response"
	"github.com/goodlyheritage/entrex-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	ExamResult *handler.ExamResultHandler
	Question   *handler.QuestionHandler
	Settings   *handler.SettingsHandler
	Admin      *handler.AdminHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/settings", handlers.Settings.GetPublic)
	}

	// Authenticated settings read; payload depends on the caller's role.
	router.GET("/api/v1/settings", middleware.RequireAuth(authService), handlers.Settings.GetForRole)

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Exam Results Group (Student JWT) ───────────────────────────
	results := router.Group("/api/v1/exam-results")
	results.Use(middleware.RequireStudent(authService))
	{
		results.GET("", handlers.ExamResult.ListMine)
		results.POST("/start", handlers.ExamResult.Start)
		results.POST("/reset", handlers.ExamResult.Reset)
		results.GET("/:id", handlers.ExamResult.Get)
		results.POST("/:id/submit", handlers.ExamResult.Submit)
		results.POST("/:id/cancel", handlers.ExamResult.Cancel)
	}

	// ─── 3. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(authService))
	{
		// Student reporting and scheduling
		adminAPI.GET("/students", handlers.Auth.ListStudents)
		adminAPI.POST("/students/recompute-schedule", handlers.Auth.RecomputeSchedule)

		// Admin accounts
		adminAPI.POST("/users", handlers.Auth.CreateAdmin)

		// Exam result reporting
		adminAPI.GET("/exam-results", handlers.ExamResult.ListAll)
		adminAPI.GET("/exam-results/:id", handlers.ExamResult.Get)
		adminAPI.POST("/exam-results/reset/:userId", handlers.ExamResult.AdminReset)

		// Question bank
		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.GET("/questions/by-subject", handlers.Question.ListBySubject)
		adminAPI.GET("/questions/subjects", handlers.Question.Subjects)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.POST("/questions/bulk", handlers.Question.BulkImport)
		adminAPI.GET("/questions/:id", handlers.Question.Get)
		adminAPI.PUT("/questions/:id", handlers.Question.Update)
		adminAPI.DELETE("/questions/:id", handlers.Question.Delete)

		// Configuration
		adminAPI.GET("/settings", handlers.Settings.Get)
		adminAPI.PUT("/settings", handlers.Settings.Update)

		// Year-end archive
		adminAPI.POST("/archive-year", handlers.Admin.ArchiveYear)
	}

	return router
}
