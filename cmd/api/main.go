package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fee-desk/internal/api"
	"fee-desk/internal/config"
	"fee-desk/internal/logger"
	"fee-desk/internal/queue"
	"fee-desk/internal/roster"
	"fee-desk/internal/storage"
	"fee-desk/internal/submit"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting fee desk")

	for _, warning := range cfg.Validate() {
		log.Warn().Msg(warning)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load roster
	students, err := loadRoster(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Roster.Path).Msg("Failed to load roster")
	}
	log.Info().Int("students", students.Len()).Str("path", cfg.Roster.Path).Msg("Roster loaded")

	// Submission queue and dispatcher
	submissions := queue.New(queue.WithMaxPending(cfg.Queue.MaxPending))
	dispatcherOpts := []queue.DispatcherOption{queue.WithTimeout(cfg.Submission.Timeout)}

	if cfg.Redis.Enabled {
		redisClient, err := queue.NewRedisClient(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, outcome publishing disabled")
		} else {
			defer redisClient.Close()
			dispatcherOpts = append(dispatcherOpts, queue.WithNotifier(queue.NewOutcomePublisher(redisClient, cfg)))
		}
	}

	dispatcher := queue.NewDispatcher(submissions, submit.NewClient(cfg), dispatcherOpts...)
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()

	// Initialize API handler
	handler := api.NewHandler(students, submissions, dispatcher, cfg)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	// Setup routes
	api.SetupRoutes(router, handler, api.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Queued items are memory-only; anything still pending is lost here.
	stats := submissions.Stats()
	cancel()
	<-dispatcherDone

	log.Info().
		Int("pending", stats.Pending).
		Int("succeeded", stats.Success).
		Int("failed", stats.Error).
		Msg("Server exited")
}

func loadRoster(ctx context.Context, cfg *config.Config) (*roster.Roster, error) {
	bucket, key, ok := storage.ParseS3URI(cfg.Roster.Path)
	if !ok {
		return roster.LoadFile(cfg.Roster.Path)
	}

	store, err := storage.NewS3StorageForBucket(cfg, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
	}
	return roster.LoadFromStorage(ctx, store, key)
}
