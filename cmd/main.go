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
	"golang.org/x/sync/errgroup"

	"github.com/mkrawczyk/volleypanel/config"
	"github.com/mkrawczyk/volleypanel/db"
	"github.com/mkrawczyk/volleypanel/handlers"
	"github.com/mkrawczyk/volleypanel/realtime"
	"github.com/mkrawczyk/volleypanel/repositories"
	api "github.com/mkrawczyk/volleypanel/routes"
	"github.com/mkrawczyk/volleypanel/services"
	"github.com/mkrawczyk/volleypanel/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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

	if err := db.EnsureSchema(context.Background(), dbConn); err != nil {
		logger.Error("failed to ensure database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Logo uploads are optional; without R2 credentials the sponsor API still
	// works, only uploads are rejected.
	var uploader storage.FileUploader
	r2cfg := storage.CloudflareR2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2cfg.Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(r2cfg)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, sponsor logo uploads disabled")
	}

	wsHub := realtime.NewHub(logger)
	go wsHub.Run()

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)

	authService := services.NewAuthService(tournamentRepo, []byte(cfg.JWTSecretKey), cfg.TokenTTL)
	stateService := services.NewStateService(tournamentRepo, authService, services.DefaultMaxRetries, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, authService)
	teamService := services.NewTeamService(stateService)
	matchService := services.NewMatchService(stateService)
	playoffService := services.NewPlayoffService(stateService)
	sceneService := services.NewSceneService(stateService)
	sponsorService := services.NewSponsorService(stateService, uploader)
	viewService := services.NewViewService(stateService)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		handlers.NewTournamentHandler(tournamentService, stateService, logger),
		handlers.NewAuthHandler(authService, logger),
		handlers.NewTeamHandler(teamService, logger),
		handlers.NewMatchHandler(matchService, logger),
		handlers.NewPlayoffHandler(playoffService, viewService, logger),
		handlers.NewSceneHandler(sceneService, logger),
		handlers.NewSponsorHandler(sponsorService, logger),
		handlers.NewWebsocketHandler(wsHub, stateService, logger),
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	feed := realtime.NewStateFeed(cfg.DatabaseURL, tournamentRepo, wsHub, logger)
	group.Go(func() error {
		if err := feed.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("state feed stopped: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return server.Close()
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("exiting with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
