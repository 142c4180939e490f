package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/refermarket/backend/internal/auth"
	"github.com/refermarket/backend/internal/cache"
	"github.com/refermarket/backend/internal/config"
	"github.com/refermarket/backend/internal/database"
	"github.com/refermarket/backend/internal/handlers"
	"github.com/refermarket/backend/internal/logger"
	"github.com/refermarket/backend/internal/metrics"
	"github.com/refermarket/backend/internal/middleware"
	"github.com/refermarket/backend/internal/referrals"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; system environment still applies
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Log.Info("=== refermarket server starting ===")

	metrics.Initialize()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional: without it, rate limiting degrades to in-process
	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	authService := auth.NewService(db, []byte(cfg.AuthSecret))
	referralService := referrals.NewService(db, referrals.Config{
		MaxActivePerPlatform: cfg.MaxActivePerPlatform,
	}, nil)

	h := handlers.NewHandlers(db, referralService, authService)
	h.SetRedisClient(redisClient)

	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	{
		platforms := api.Group("/platforms")
		{
			platforms.GET("", h.ListPlatforms)
			platforms.GET("/slug/:slug", h.GetPlatform)
			platforms.GET("/:slug/validation", h.GetPlatformValidation)
			platforms.GET("/:slug/related", h.GetRelatedPlatforms)
		}

		refs := api.Group("/referrals")
		{
			// Public reads and click tracking
			refs.GET("/platform/:slug", h.GetPlatformReferrals)
			refs.POST("/:id/track-click", auth.OptionalAuth(authService), h.TrackClick)
			refs.GET("/:id/feedback", h.GetFeedback)

			// Authenticated writes; the submission limiter runs before
			// any auth or database work
			submissionLimit := middleware.RedisRateLimit(redisClient, middleware.SubmissionRateLimitConfig(cfg.SubmissionLimit, cfg.SubmissionWindow))
			refs.POST("", submissionLimit, auth.RequireAuth(authService), h.CreateReferral)
			refs.PUT("/:id", auth.RequireAuth(authService), h.UpdateReferral)
			refs.DELETE("/:id", auth.RequireAuth(authService), h.DeleteReferral)
			refs.GET("/mine", auth.RequireAuth(authService), h.GetMyReferrals)
			refs.GET("/user/:slug", auth.RequireAuth(authService), h.GetMyPlatformReferrals)
			refs.GET("/check/:slug", auth.RequireAuth(authService), h.CheckActiveReferral)
			refs.POST("/:id/feedback", auth.RequireAuth(authService), h.CreateFeedback)
		}

		api.GET("/me", auth.RequireAuth(authService), h.GetMe)

		users := api.Group("/users")
		{
			users.GET("/:identifier", h.GetUser)
			users.POST("", auth.RequireAuth(authService), h.UpsertUser)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("refermarket backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
