package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	// AuthLimit throttles the unauthenticated /auth routes per client IP.
	AuthLimit middleware.RateLimiterConfig
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(h.log))

	// ---  Middleware ---
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{middleware.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	requireAuth := middleware.AuthMiddleware(h.auth)

	r.GET("/healthz", h.Health)
	r.GET("/chatbot/health", h.ChatbotHealth)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	// --- Routes ---
	authRoutes := r.Group("/auth")
	if cfg.AuthLimit.Rate > 0 {
		authRoutes.Use(middleware.NewRateLimiter(cfg.AuthLimit).RateLimit())
	}
	{
		authRoutes.POST("/signup", h.SignUp)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", requireAuth, h.Logout)
		authRoutes.POST("/password-reset", h.RequestPasswordReset)
		authRoutes.POST("/password-reset/confirm", h.ConfirmPasswordReset)
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(requireAuth) // Protect all /api routes
	{
		apiRoutes.GET("/me", h.GetMe)
		apiRoutes.DELETE("/account", h.DeleteAccount)
		apiRoutes.GET("/dashboard", h.GetDashboard)

		apiRoutes.GET("/users/:id", h.GetUser)
		apiRoutes.PUT("/users/:id", h.UpdateUser)

		apiRoutes.GET("/patients", h.ListPatients)
		apiRoutes.GET("/patients/:id", h.GetPatient)
		apiRoutes.PUT("/patients/:id", h.UpdatePatient)
		apiRoutes.POST("/patients/:id/practitioners", h.AssignPractitioner)
		apiRoutes.GET("/patients/:id/notes", h.GetPatientNotes)
		apiRoutes.POST("/patients/:id/notes", h.CreateNote)

		apiRoutes.GET("/practitioners", h.ListPractitioners)
		apiRoutes.GET("/practitioners/:id", h.GetPractitioner)
		apiRoutes.PUT("/practitioners/:id", h.UpdatePractitioner)
		apiRoutes.GET("/practitioners/:id/patients", h.GetAssignedPatients)

		// Session Routes
		apiRoutes.GET("/sessions", h.GetSessions)
		apiRoutes.POST("/sessions", h.CreateSession)
		apiRoutes.GET("/sessions/upcoming", h.GetUpcomingSessions)
		apiRoutes.GET("/sessions/:id", h.GetSession)
		apiRoutes.PUT("/sessions/:id", h.UpdateSession)
		apiRoutes.DELETE("/sessions/:id", h.CancelSession)
		apiRoutes.GET("/sessions/:id/feedback", h.GetSessionFeedback)

		apiRoutes.GET("/notifications", h.GetNotifications)
		apiRoutes.POST("/notifications", h.CreateNotification)
		apiRoutes.GET("/notifications/stream", h.StreamUnread)
		apiRoutes.PATCH("/notifications/:id/read", h.MarkNotificationRead)

		apiRoutes.GET("/feedback", h.GetMyFeedback)
		apiRoutes.POST("/feedback", h.CreateFeedback)

		apiRoutes.GET("/notes/:id", h.GetNote)
		apiRoutes.PUT("/notes/:id", h.UpdateNote)

		apiRoutes.GET("/progress/:userId", h.GetProgress)
		apiRoutes.PUT("/progress/:userId", h.UpdateProgress)

		apiRoutes.GET("/messages", h.GetConversation)
		apiRoutes.POST("/messages", h.SendMessage)

		apiRoutes.POST("/chatbot/chat", h.HandleChat)

		apiRoutes.GET("/admin/migrations", h.MigrationHistory)
		apiRoutes.POST("/admin/migrations/users", h.MigrateUsers)
	}

	return r
}
