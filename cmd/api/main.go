package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openlearn/lms-api/internal/config"
	"github.com/openlearn/lms-api/internal/email"
	"github.com/openlearn/lms-api/internal/handler"
	authHandler "github.com/openlearn/lms-api/internal/handler/auth"
	notificationHandler "github.com/openlearn/lms-api/internal/handler/notification"
	"github.com/openlearn/lms-api/internal/middleware"
	"github.com/openlearn/lms-api/internal/migration"
	"github.com/openlearn/lms-api/internal/repository/postgres"
	"github.com/openlearn/lms-api/internal/router"
	authService "github.com/openlearn/lms-api/internal/service/auth"
	notificationService "github.com/openlearn/lms-api/internal/service/notification"
	"github.com/openlearn/lms-api/pkg/logger"
	"github.com/openlearn/lms-api/pkg/ratelimit"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(cfg.Server.LogLevel)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.Run(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	courseRepo := postgres.NewCourseRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)

	var limiterStore ratelimit.Store
	if cfg.Redis.URL != "" {
		store, err := ratelimit.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		limiterStore = store
	} else {
		limiterStore = ratelimit.NewMemoryStore()
	}
	resetLimiter := ratelimit.NewLimiter(limiterStore, int64(cfg.RateLimit.ResetMaxAttempts), cfg.RateLimit.ResetWindow)

	emailSvc := email.NewSMTPService(cfg.SMTP)

	authSvc := authService.NewService(userRepo, tokenRepo, emailSvc, resetLimiter)
	notificationSvc := notificationService.NewService(notificationRepo, userRepo, courseRepo)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT)

	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc)
	notificationH := notificationHandler.NewHandler(notificationSvc)

	r := router.NewRouter(
		authMiddleware,
		authH,
		notificationH,
		h,
		router.RouterConfig{
			RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORSConfig: middleware.CORSConfig{
				AllowOrigins:     []string{"*"},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
				ExposeHeaders:    []string{"X-Request-ID"},
				AllowCredentials: false,
				MaxAge:           3600,
			},
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			MetricsPrefix: "lms_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
