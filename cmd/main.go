package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/golfcompete/golfcompete/config"
	"github.com/golfcompete/golfcompete/db"
	"github.com/golfcompete/golfcompete/handlers"
	"github.com/golfcompete/golfcompete/leaderboard"
	"github.com/golfcompete/golfcompete/middleware"
	"github.com/golfcompete/golfcompete/repositories"
	api "github.com/golfcompete/golfcompete/routes"
	"github.com/golfcompete/golfcompete/services"
	"github.com/golfcompete/golfcompete/storage"
)

const schedulerInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Media storage is optional; without it image endpoints report an error.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, image uploads disabled")
	}

	wsHub := leaderboard.NewHub(logger)
	go wsHub.Run()
	logger.Info("leaderboard hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	seriesRepo := repositories.NewPostgresSeriesRepository(dbConn)
	seriesPartRepo := repositories.NewPostgresSeriesParticipantRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	eventPartRepo := repositories.NewPostgresEventParticipantRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	courseRepo := repositories.NewPostgresCourseRepository(dbConn)
	bagRepo := repositories.NewPostgresBagRepository(dbConn)
	noteRepo := repositories.NewPostgresNoteRepository(dbConn)
	logger.Info("repositories initialized")

	txRunner := db.NewRunner(dbConn)
	guard := services.NewGuard(userRepo, seriesPartRepo)
	emailService := services.NewEmailService(cfg, logger)
	handicapService := services.NewHandicapService(roundRepo, bagRepo, logger)

	authService := services.NewAuthService(cfg, userRepo, emailService, logger)
	userService := services.NewUserService(userRepo, guard, uploader, logger)
	seriesService := services.NewSeriesService(txRunner, seriesRepo, seriesPartRepo, eventRepo, userRepo, guard, emailService, logger)
	eventService := services.NewEventService(txRunner, eventRepo, eventPartRepo, seriesRepo, seriesPartRepo, guard, logger)
	roundService := services.NewRoundService(roundRepo, scoreRepo, bagRepo, guard, handicapService, wsHub, logger)
	bagService := services.NewBagService(bagRepo)
	courseService := services.NewCourseService(txRunner, courseRepo, guard, uploader, logger)
	noteService := services.NewNoteService(noteRepo)
	logger.Info("services initialized")

	// Event status scheduler: advances scheduled and stale in-progress
	// events on a fixed interval.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("event status scheduler started", slog.Duration("interval", schedulerInterval))

		if err := eventService.AutoUpdateEventStatusesByDates(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := eventService.AutoUpdateEventStatusesByDates(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	seriesHandler := handlers.NewSeriesHandler(seriesService)
	eventHandler := handlers.NewEventHandler(eventService)
	roundHandler := handlers.NewRoundHandler(roundService)
	bagHandler := handlers.NewBagHandler(bagService)
	courseHandler := handlers.NewCourseHandler(courseService)
	noteHandler := handlers.NewNoteHandler(noteService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	healthHandler := handlers.NewHealthHandler(dbConn)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		userHandler,
		seriesHandler,
		eventHandler,
		roundHandler,
		bagHandler,
		courseHandler,
		noteHandler,
		webSocketHandler,
		healthHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
