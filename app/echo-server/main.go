package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"silleShop/app/echo-server/router"
	"silleShop/business/matching"
	"silleShop/business/perfume"
	"silleShop/business/rating"
	"silleShop/business/survey"
	userService "silleShop/business/user"
	"silleShop/internal/middleware"
	"silleShop/internal/repository/notification"
	psqlRepo "silleShop/internal/repository/postgres"
	redisRepo "silleShop/internal/repository/redis"
	"silleShop/internal/rest"
	"silleShop/pkg/config"
	"silleShop/pkg/database"
	redisdb "silleShop/pkg/database/redis"
	"silleShop/pkg/logger"
	"silleShop/pkg/metrics"
	"silleShop/pkg/utils"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting SilleShop", "version", cfg.App.Version)

	metrics.Init()
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Redis is optional: without it match listings are served straight from
	// postgres.
	var matchCache matching.MatchCache
	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, match cache disabled", err)
	} else {
		matchCache = redisRepo.NewMatchCache(redisClient, time.Duration(cfg.Matching.CacheTTLSeconds)*time.Second)
	}

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	perfumeRepo := psqlRepo.NewPerfumeRepository(db)
	surveyRepo := psqlRepo.NewSurveyRepository(db)
	ratingRepo := psqlRepo.NewRatingRepository(db)
	matchRepo := psqlRepo.NewMatchRepository(db)
	triggerRepo := psqlRepo.NewTriggerRepository(db)

	// Match pipeline
	matchCfg := matching.Config{
		Alpha:        cfg.Matching.Alpha,
		SaturationK:  cfg.Matching.SaturationK,
		Workers:      cfg.Matching.Workers,
		MaxAttempts:  cfg.Matching.MaxAttempts,
		RetryBackoff: time.Duration(cfg.Matching.RetryBackoffSeconds) * time.Second,
		PollInterval: time.Duration(cfg.Matching.PollIntervalSeconds) * time.Second,
	}

	vocabulary := matching.NewAccordVocabulary()
	snapshots := matching.NewSnapshotProvider(perfumeRepo, vocabulary)
	matchService := matching.NewMatchService(surveyRepo, matchRepo, matchCache, snapshots, vocabulary, matchCfg)

	coordinator := matching.NewCoordinator(matchService, triggerRepo, matchCfg)
	coordinator.Start(context.Background())

	// Init service
	userSvc := userService.NewUserService(userRepo, validate, mailjetEmail, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)
	surveySvc := survey.NewSurveyService(surveyRepo, coordinator)
	ratingSvc := rating.NewRatingService(ratingRepo, perfumeRepo, coordinator)
	perfumeSvc := perfume.NewPerfumeService(perfumeRepo, coordinator)

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	perfumeHandler := rest.NewPerfumeHandler(perfumeSvc)
	surveyHandler := rest.NewSurveyHandler(surveySvc)
	ratingHandler := rest.NewRatingHandler(ratingSvc)
	matchHandler := rest.NewMatchHandler(matchService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupPerfumeRoutes(api, perfumeHandler, authRequired, adminOnly)
	router.SetupSurveyRoutes(api, surveyHandler)
	router.SetupRatingRoutes(api, ratingHandler)
	router.SetupMatchRoutes(api, matchHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Drain in-flight recompute jobs
	coordinator.Stop()

	if redisClient != nil {
		if err := redisdb.CloseRedisClient(redisClient); err != nil {
			logger.Error("Redis shutdown error", "error", err)
		}
	}

	logger.Info("Server stopped")
}
