package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fastenhq/javacg/internal/analyzer"
	"github.com/fastenhq/javacg/internal/api"
	"github.com/fastenhq/javacg/internal/config"
	"github.com/fastenhq/javacg/internal/maven"
	javacgnats "github.com/fastenhq/javacg/internal/nats"
	"github.com/fastenhq/javacg/internal/pipeline"
	"github.com/fastenhq/javacg/internal/store"
	"github.com/fastenhq/javacg/internal/worker"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database (optional)
	var outcomes *store.Store
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to database, outcomes will not be recorded")
		} else {
			defer db.Close()
			outcomes = store.NewStore(db)
			if err := outcomes.Migrate(ctx); err != nil {
				log.Fatal().Err(err).Msg("failed to migrate database schema")
			}
		}
	}

	// Connect to NATS
	natsClient, err := javacgnats.NewClient(cfg.NATSURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer natsClient.Close()

	// Assemble the generation pipeline
	an := analyzer.NewCommandAnalyzer(cfg.Analyzer.Command, cfg.Analyzer.Args...)
	builder := pipeline.NewBuilder(maven.NewResolver(), an)

	concurrency, _ := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY"))
	pool, err := worker.NewPool(worker.PoolConfig{
		Concurrency: concurrency,
		NATS:        natsClient,
		Builder:     builder,
		Store:       outcomes,
		Repos:       cfg.MavenRepos,
		OutputDir:   cfg.OutputDir,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create worker pool")
	}

	// Start the status API
	srv, err := api.NewServer(api.ServerConfig{NATS: natsClient, Store: outcomes})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create API server")
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("starting status API")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("could not listen on port")
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("worker is shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("could not gracefully shutdown the status API")
		}

		cancel()
	}()

	log.Info().Msg("starting worker pool")
	if err := pool.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("worker pool error")
	}

	log.Info().Msg("worker stopped")
}
