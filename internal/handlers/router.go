package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/apierror"
	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/middleware"
	"github.com/smallsteps/backend/internal/repository"
)

// Handlers groups every route handler the API serves
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Home        *HomeHandler
	Activity    *ActivityHandler
	Progress    *ProgressHandler
	Stats       *StatsHandler
	Kid         *KidHandler
	Preferences *PreferencesHandler
	Insights    *InsightsHandler
}

// RouterConfig carries the middleware dependencies of NewRouter
type RouterConfig struct {
	Logger         logger.Logger
	Verifier       middleware.TokenVerifier
	Idempotency    repository.ReplayRepository
	AuthLimiter    *middleware.RateLimiter // nil disables auth rate limiting
	AllowedOrigins []string
	Production     bool
}

// NewRouter builds the gin engine with the full middleware chain and every
// /api/v1 route
func NewRouter(cfg RouterConfig, h Handlers) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Ctx(c.Request.Context()).Error("panic recovered", logger.Any("panic", recovered))
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
	}))
	router.Use(middleware.SecurityHeaders(cfg.Production))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/health", h.Health.Health)

	auth := middleware.Auth(cfg.Verifier)
	authLimit := func(c *gin.Context) { c.Next() }
	if cfg.AuthLimiter != nil {
		authLimit = cfg.AuthLimiter.Middleware()
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Health)

		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authLimit, h.Auth.Login)
			authGroup.POST("/signup", authLimit, h.Auth.Signup)
			authGroup.POST("/refresh", authLimit, h.Auth.Refresh)
			authGroup.POST("/logout", auth, h.Auth.Logout)
			authGroup.GET("/me", auth, h.Auth.Me)
			authGroup.PATCH("/me", auth, h.Auth.UpdateMe)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(auth)
		protected.Use(middleware.Idempotency(cfg.Idempotency))
		{
			protected.GET("/home", h.Home.GetHome)

			protected.GET("/activities", h.Activity.ListActivities)
			protected.GET("/activities/today", h.Activity.GetTodaysActivity)
			protected.GET("/activities/recommendations", h.Activity.GetRecommendations)
			protected.GET("/activities/history", h.Activity.GetHistory)
			protected.GET("/activities/:id", h.Activity.GetActivity)
			protected.POST("/activities/:id/complete", h.Activity.CompleteActivity)

			protected.GET("/progress/streak", h.Progress.GetStreak)
			protected.GET("/progress/weekly", h.Progress.GetWeekly)
			protected.GET("/progress/today", h.Progress.GetToday)
			protected.GET("/progress/recent", h.Progress.GetRecent)
			protected.GET("/progress/overview", h.Progress.GetOverview)

			protected.GET("/stats/children", h.Stats.GetChildren)
			protected.GET("/stats/parent", h.Stats.GetParent)
			protected.GET("/stats/family", h.Stats.GetFamily)

			protected.GET("/kids", h.Kid.ListKids)
			protected.POST("/kids", h.Kid.CreateKid)
			protected.PATCH("/kids/:id", h.Kid.UpdateKid)
			protected.DELETE("/kids/:id", h.Kid.DeleteKid)

			protected.GET("/preferences", h.Preferences.GetPreferences)
			protected.PATCH("/preferences", h.Preferences.UpdatePreferences)

			protected.GET("/insights", h.Insights.ListInsights)
			protected.GET("/insights/random", h.Insights.GetRandomInsight)
			protected.GET("/insights/bookmarks", h.Insights.ListBookmarks)
			protected.GET("/insights/bookmarks/status", h.Insights.BookmarkStatus)
			protected.POST("/insights/:id/bookmark", h.Insights.AddBookmark)
			protected.DELETE("/insights/:id/bookmark", h.Insights.RemoveBookmark)
		}
	}

	return router, nil
}
