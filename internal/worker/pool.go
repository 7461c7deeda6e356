package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	javacgnats "github.com/fastenhq/javacg/internal/nats"
	"github.com/fastenhq/javacg/internal/pipeline"
	"github.com/fastenhq/javacg/internal/store"
)

// Pool manages a set of concurrent revision workers sharing one consumer
type Pool struct {
	workers []*Worker
	nats    *javacgnats.Client
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	Concurrency int
	NATS        *javacgnats.Client
	Builder     *pipeline.Builder
	Store       *store.Store // nil disables outcome recording
	Repos       []string
	OutputDir   string
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Builder == nil {
		return nil, fmt.Errorf("pool requires a builder")
	}

	p := &Pool{nats: cfg.NATS}
	for i := 0; i < cfg.Concurrency; i++ {
		p.workers = append(p.workers, New(Config{
			NATS:      cfg.NATS,
			Builder:   cfg.Builder,
			Store:     cfg.Store,
			Repos:     cfg.Repos,
			OutputDir: cfg.OutputDir,
		}))
	}

	return p, nil
}

// Workers returns the pool's workers
func (p *Pool) Workers() []*Worker {
	return p.workers
}

// Run starts all workers and blocks until context is cancelled
func (p *Pool) Run(ctx context.Context) error {
	if len(p.workers) == 0 {
		return fmt.Errorf("no workers configured")
	}

	// Set up NATS streams if connected
	if p.nats != nil && p.nats.IsConnected() {
		if err := p.nats.SetupStreams(ctx); err != nil {
			return fmt.Errorf("failed to setup NATS streams: %w", err)
		}
		log.Info().Msg("NATS streams configured")
	}

	errCh := make(chan error, len(p.workers))

	// Start all workers
	for _, w := range p.workers {
		go func(worker *Worker) {
			log.Info().Str("worker", worker.Name()).Msg("starting worker")
			if err := worker.Run(ctx); err != nil {
				errCh <- fmt.Errorf("worker %s failed: %w", worker.Name(), err)
			}
		}(w)
	}

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		log.Info().Msg("context cancelled, stopping workers")
		return nil
	case err := <-errCh:
		return err
	}
}
