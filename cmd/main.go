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

	"github.com/Dosada05/debate-system/config"
	"github.com/Dosada05/debate-system/db"
	"github.com/Dosada05/debate-system/draws"
	"github.com/Dosada05/debate-system/handlers"
	"github.com/Dosada05/debate-system/repositories"
	api "github.com/Dosada05/debate-system/routes"
	"github.com/Dosada05/debate-system/services"
	"github.com/Dosada05/debate-system/storage"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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

	// Инициализация WebSocket Hub
	wsHub := draws.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewSQLTxRunner(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	phaseRepo := repositories.NewPostgresPhaseRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	debateRepo := repositories.NewPostgresDebateRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	attendeeRepo := repositories.NewPostgresAttendeeRepository(dbConn)
	motionRepo := repositories.NewPostgresMotionRepository(dbConn)
	locationRepo := repositories.NewPostgresLocationRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	roleRepo := repositories.NewPostgresRoleRepository(dbConn)
	affiliationRepo := repositories.NewPostgresAffiliationRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(tournamentRepo, cloudflareUploader, logger)
	teamService := services.NewTeamService(teamRepo, attendeeRepo, cloudflareUploader, logger)
	motionService := services.NewMotionService(motionRepo)
	locationService := services.NewLocationService(locationRepo)
	roleService := services.NewRoleService(roleRepo, teamRepo, affiliationRepo)
	structureService := services.NewStructureService(
		txRunner,
		tournamentRepo,
		phaseRepo,
		roundRepo,
		debateRepo,
		motionRepo,
		locationRepo,
		wsHub,
		logger,
	)
	drawService := services.NewDrawService(
		txRunner,
		phaseRepo,
		roundRepo,
		debateRepo,
		teamRepo,
		locationRepo,
		motionRepo,
		roleRepo,
		affiliationRepo,
		wsHub,
		logger,
	)
	scoringService := services.NewScoringService(
		txRunner,
		phaseRepo,
		roundRepo,
		debateRepo,
		attendeeRepo,
		resultRepo,
		wsHub,
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	structureHandler := handlers.NewStructureHandler(structureService)
	drawHandler := handlers.NewDrawHandler(drawService, structureService, roleService)
	scoringHandler := handlers.NewScoringHandler(scoringService, drawService, structureService, roleService)
	teamHandler := handlers.NewTeamHandler(teamService)
	motionHandler := handlers.NewMotionHandler(motionService)
	locationHandler := handlers.NewLocationHandler(locationService)
	roleHandler := handlers.NewRoleHandler(roleService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := api.SetupRoutes(
		[]byte(cfg.JWTSecretKey),
		tournamentHandler,
		structureHandler,
		drawHandler,
		scoringHandler,
		teamHandler,
		motionHandler,
		locationHandler,
		roleHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
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

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shut down gracefully")
	}
}
