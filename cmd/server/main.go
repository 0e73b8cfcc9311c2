package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/routine-builder/internal/api"
	"alcyxob/routine-builder/internal/calendar"
	"alcyxob/routine-builder/internal/config"
	"alcyxob/routine-builder/internal/observability"
	"alcyxob/routine-builder/internal/persist"
	"alcyxob/routine-builder/internal/repository/backend"
	"alcyxob/routine-builder/internal/service"
	"alcyxob/routine-builder/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title Routine Builder API
// @version 1.0
// @description API for building exercise routines, scheduling them on a calendar and playing them back.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Optional when jwt.secret is empty.
func main() {
	// A .env file is optional, real env vars win.
	_ = godotenv.Load()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	observability.SetupLogging(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("backend", cfg.Store.Backend).Dur("debounce", cfg.Sync.Debounce).Msg("configuration loaded")

	// --- Store Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := backend.Open(ctx, &cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("could not open store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	// --- Initialize Storage ---
	var objects storage.ObjectStore
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	s3Store, err := storage.NewS3Store(ctx, cfg.S3)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize S3 storage")
	}
	if s3Store != nil {
		objects = s3Store
	}

	// --- Initialize Services ---
	workspaces := service.NewWorkspaceService(store, []persist.Option{
		persist.WithDelay(cfg.Sync.Debounce),
		persist.WithWriteTimeout(cfg.Sync.WriteTimeout),
	})
	svc := api.Services{
		Auth:       service.NewAuthService(cfg.JWT.Secret, cfg.JWT.Expiration),
		Workspaces: workspaces,
		Playback:   service.NewPlaybackService(workspaces),
		Exports: service.NewExportService(workspaces, objects, service.ExportOptions{
			Calendar:   calendar.Options{StartTime: cfg.Calendar.StartTime, ProdID: cfg.Calendar.ProdID},
			LinkExpiry: cfg.S3.LinkExpiry,
		}),
	}
	if !svc.Auth.Enabled() {
		log.Warn().Str("owner", cfg.Server.DefaultOwner).Msg("jwt.secret is empty, every request uses the default owner")
	}

	// --- Initialize Gin Engine ---
	if !cfg.Log.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api.SetupRoutes(router, api.RouterConfig{
		DefaultOwner: cfg.Server.DefaultOwner,
		CORSOrigins:  cfg.Server.CORSOrigins,
	}, svc)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info().Str("addr", cfg.Server.Address).Msg("server starting")

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Pending edits are written before the store goes away.
	ctxFlush, cancelFlush := context.WithTimeout(context.Background(), cfg.Sync.WriteTimeout+5*time.Second)
	defer cancelFlush()
	if err := workspaces.Shutdown(ctxFlush); err != nil {
		log.Error().Err(err).Msg("final save failed")
	}

	log.Info().Msg("server exiting")
}
