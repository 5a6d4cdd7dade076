package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smallsteps/backend/internal/cache"
	"github.com/smallsteps/backend/internal/config"
	"github.com/smallsteps/backend/internal/handlers"
	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/middleware"
	"github.com/smallsteps/backend/internal/repository"
	"github.com/smallsteps/backend/internal/service"
	"github.com/smallsteps/backend/pkg/supabase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	log := newLogger(cfg.Log)
	log.Info("starting Small Steps API server",
		logger.String("env", cfg.Server.Env),
		logger.String("supabase_url", cfg.Supabase.URL),
		logger.Bool("local_jwt_verification", cfg.Supabase.JWTSecret != ""),
	)

	loc, err := cfg.Progress.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Supabase client
	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	catalogCache := newCatalogCache(ctx, cfg.Cache, log)
	defer catalogCache.Close()

	// Initialize repositories
	activityRepo := repository.NewCachedActivityRepository(
		repository.NewActivityRepository(supabaseClient), catalogCache, cfg.Cache.TTL)
	insightRepo := repository.NewCachedInsightRepository(
		repository.NewInsightRepository(supabaseClient), catalogCache, cfg.Cache.TTL)
	completionRepo := repository.NewCompletionRepository(supabaseClient)
	streakRepo := repository.NewStreakRepository(supabaseClient)
	kidRepo := repository.NewKidRepository(supabaseClient)
	prefsRepo := repository.NewPreferencesRepository(supabaseClient)
	bookmarkRepo := repository.NewBookmarkRepository(supabaseClient)
	replayRepo := repository.NewReplayRepository(supabaseClient, repository.DefaultReplayWindow)

	// Initialize services
	cal := service.NewCalendar(loc)
	activityService := service.NewActivityService(activityRepo, completionRepo, streakRepo, kidRepo, prefsRepo, cal,
		service.Limits{
			Recommendations: cfg.Progress.RecommendationLimit,
			History:         cfg.Progress.HistoryLimit,
		})
	progressService := service.NewProgressService(completionRepo, streakRepo, cal)
	statsService := service.NewStatsService(completionRepo, kidRepo)
	kidService := service.NewKidService(kidRepo)
	preferenceService := service.NewPreferenceService(prefsRepo)
	insightService := service.NewInsightService(insightRepo, bookmarkRepo, kidRepo)
	homeService := service.NewHomeService(activityService, progressService, insightService, kidService)
	authService := service.NewAuthService(supabaseClient)

	var authLimiter *middleware.RateLimiter
	if cfg.RateLimit.AuthPerMinute > 0 {
		authLimiter = middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, time.Minute, "auth")
		go authLimiter.Run(ctx)
	}

	// Set Gin mode based on environment
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := handlers.NewRouter(handlers.RouterConfig{
		Logger:         log,
		Verifier:       middleware.NewTokenVerifier(cfg.Supabase.JWTSecret, supabaseClient),
		Idempotency:    replayRepo,
		AuthLimiter:    authLimiter,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Production:     cfg.Server.IsProduction(),
	}, handlers.Handlers{
		Health:      handlers.NewHealthHandler(cfg.Server.Env),
		Auth:        handlers.NewAuthHandler(authService),
		Home:        handlers.NewHomeHandler(homeService),
		Activity:    handlers.NewActivityHandler(activityService),
		Progress:    handlers.NewProgressHandler(progressService),
		Stats:       handlers.NewStatsHandler(statsService),
		Kid:         handlers.NewKidHandler(kidService),
		Preferences: handlers.NewPreferencesHandler(preferenceService),
		Insights:    handlers.NewInsightsHandler(insightService),
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server", logger.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newCatalogCache connects to Redis when configured. The API keeps serving
// from the store when Redis is absent or unreachable.
func newCatalogCache(ctx context.Context, cfg config.CacheConfig, log logger.Logger) cache.Cache {
	if cfg.RedisURL == "" {
		log.Info("catalog cache disabled")
		return cache.Noop{}
	}

	c, err := cache.NewRedis(ctx, cfg.RedisURL, "smallsteps:")
	if err != nil {
		log.Warn("catalog cache unavailable, continuing without it", logger.Err(err))
		return cache.Noop{}
	}
	log.Info("catalog cache enabled", logger.Duration("ttl", cfg.TTL))
	return c
}
