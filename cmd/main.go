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

	"github.com/sportsfest/registration-system/config"
	"github.com/sportsfest/registration-system/db"
	"github.com/sportsfest/registration-system/handlers"
	"github.com/sportsfest/registration-system/live"
	"github.com/sportsfest/registration-system/metrics"
	"github.com/sportsfest/registration-system/repositories"
	api "github.com/sportsfest/registration-system/routes"
	"github.com/sportsfest/registration-system/services"
	"github.com/sportsfest/registration-system/storage"
)

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

	metrics.Register()

	// Object storage is optional: without it logo uploads fail and bulk
	// files are not archived, everything else works.
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
		logger.Warn("R2 storage not configured, file uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	communityRepo := repositories.NewPostgresCommunityRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	volunteerRepo := repositories.NewPostgresVolunteerRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)
	formatRepo := repositories.NewPostgresFormatRepository(dbConn)
	calendarRepo := repositories.NewPostgresCalendarRepository(dbConn)
	convenorRepo := repositories.NewPostgresConvenorRepository(dbConn)
	emailRepo := repositories.NewPostgresEmailRepository(dbConn)
	settingsRepo := repositories.NewPostgresSettingsRepository(dbConn)

	emailService := services.NewEmailService(cfg, emailRepo, sportRepo, logger)
	settingsService := services.NewSettingsService(settingsRepo)
	authService := services.NewAuthService(userRepo, sportRepo, communityRepo)
	userService := services.NewUserService(userRepo)
	sportService := services.NewSportService(sportRepo, uploader)
	communityService := services.NewCommunityService(communityRepo, uploader)
	participantService := services.NewParticipantService(
		dbConn,
		participantRepo,
		communityRepo,
		userRepo,
		sportService,
		emailService,
		settingsService,
		cfg.AllowRejectedReopen,
		logger,
	)
	bulkUploadService := services.NewBulkUploadService(
		participantRepo,
		communityRepo,
		sportService,
		uploader,
		logger,
	)
	exportService := services.NewExportService(participantService, sportService, communityService)
	volunteerService := services.NewVolunteerService(volunteerRepo, sportRepo)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, communityRepo, sportRepo, wsHub)
	formatService := services.NewFormatService(formatRepo, sportRepo)
	calendarService := services.NewCalendarService(calendarRepo, sportRepo, wsHub)
	convenorService := services.NewConvenorService(convenorRepo, sportRepo)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	sportHandler := handlers.NewSportHandler(sportService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	participantHandler := handlers.NewParticipantHandler(
		participantService, bulkUploadService, exportService, emailService, logger)
	volunteerHandler := handlers.NewVolunteerHandler(volunteerService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	formatHandler := handlers.NewFormatHandler(formatService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	convenorHandler := handlers.NewConvenorHandler(convenorService)
	emailHandler := handlers.NewEmailHandler(emailService, participantService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		userHandler,
		sportHandler,
		communityHandler,
		participantHandler,
		volunteerHandler,
		leaderboardHandler,
		formatHandler,
		calendarHandler,
		convenorHandler,
		emailHandler,
		settingsHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
}
